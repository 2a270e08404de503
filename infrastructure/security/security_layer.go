package security

import (
	"strings"

	"github.com/sirupsen/logrus"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/interfaces"
)

// Redacted replaces every masked value
const Redacted = "[REDACTED]"

var sensitiveKeywords = []string{
	"password",
	"passwd",
	"secret",
	"token",
	"apikey",
	"cookie",
	"session",
	"auth",
}

type SecurityLayer struct {
	extra []string
}

// NewSecurityLayer - creates a redaction layer; extra keys are treated as sensitive too
func NewSecurityLayer(extra ...string) *SecurityLayer {
	normalized := make([]string, 0, len(extra))
	for _, key := range extra {
		if k := normalizeKey(key); k != "" {
			normalized = append(normalized, k)
		}
	}
	return &SecurityLayer{extra: normalized}
}

func normalizeKey(key string) string {
	normalized := strings.ToLower(strings.TrimSpace(key))
	normalized = strings.ReplaceAll(normalized, "-", "")
	normalized = strings.ReplaceAll(normalized, "_", "")
	return normalized
}

// IsSensitiveField - reports whether key likely names a secret
func (s *SecurityLayer) IsSensitiveField(key string) bool {
	normalized := normalizeKey(key)
	if normalized == "" {
		return false
	}
	for _, keyword := range sensitiveKeywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	for _, keyword := range s.extra {
		if normalized == keyword {
			return true
		}
	}
	return false
}

// RedactValue - masks value when key is sensitive
func (s *SecurityLayer) RedactValue(key, value string) string {
	if value == "" || !s.IsSensitiveField(key) {
		return value
	}
	return Redacted
}

// RedactCookies - returns copies of cookies with every value masked.
// Any cookie may carry a session, so names are not consulted.
func (s *SecurityLayer) RedactCookies(cookies []entities.Cookie) []entities.Cookie {
	out := make([]entities.Cookie, len(cookies))
	for i, c := range cookies {
		if c.Value != "" {
			c.Value = Redacted
		}
		out[i] = c
	}
	return out
}

// Hook - returns a logrus hook masking sensitive fields of every entry
func (s *SecurityLayer) Hook() logrus.Hook {
	return &redactHook{layer: s}
}

type redactHook struct {
	layer *SecurityLayer
}

func (h *redactHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *redactHook) Fire(entry *logrus.Entry) error {
	for key, value := range entry.Data {
		if !h.layer.IsSensitiveField(key) {
			continue
		}
		if str, ok := value.(string); ok && str == "" {
			continue
		}
		entry.Data[key] = Redacted
	}
	return nil
}

// Ensure SecurityLayer implements SecurityLayer interface
var _ interfaces.SecurityLayer = (*SecurityLayer)(nil)
