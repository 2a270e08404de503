package interfaces

import "e2e_automation/domain/entities"

// SecurityLayer decides which values may leave the process in logs or CLI output
type SecurityLayer interface {
	// IsSensitiveField reports whether a key names a secret
	IsSensitiveField(key string) bool

	// RedactValue masks value when key is sensitive
	RedactValue(key, value string) string

	// RedactCookies returns copies of cookies with their values masked
	RedactCookies(cookies []entities.Cookie) []entities.Cookie
}
