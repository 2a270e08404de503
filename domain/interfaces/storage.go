package interfaces

import "e2e_automation/domain/entities"

// SessionStore persists session cookies between runs
type SessionStore interface {
	// Load returns the persisted cookies. A missing or unreadable store is an error.
	Load() (entities.Session, error)

	// Save overwrites the persisted cookies wholesale
	Save(session entities.Session) error

	// Clear removes the persisted cookies; clearing an empty store is not an error
	Clear() error
}
