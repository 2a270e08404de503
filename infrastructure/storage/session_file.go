package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"e2e_automation/domain/entities"
	"e2e_automation/domain/interfaces"
)

const DefaultSessionFile = "session.json"

type sessionFile struct {
	path string
}

// NewSessionFile - creates a session store backed by a JSON file at path
func NewSessionFile(path string) interfaces.SessionStore {
	if path == "" {
		path = DefaultSessionFile
	}
	return &sessionFile{path: path}
}

// Path - returns the backing file path
func (s *sessionFile) Path() string {
	return s.path
}

// Load - reads the persisted cookies from file
func (s *sessionFile) Load() (entities.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session entities.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session file %s: %w", s.path, err)
	}

	return session, nil
}

// Save - overwrites the session file with the given cookies
func (s *sessionFile) Save(session entities.Session) error {
	data, err := EncodeSession(session)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set session file mode: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	return nil
}

// Clear - removes the session file
func (s *sessionFile) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

// EncodeSession - renders cookies in the on-disk session format
func EncodeSession(session entities.Session) ([]byte, error) {
	if session == nil {
		session = entities.Session{}
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode session: %w", err)
	}
	return append(data, '\n'), nil
}
