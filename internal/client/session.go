package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrNoSession is returned by LoadSession when no session file exists.
var ErrNoSession = errors.New("no saved session, run login first")

// Session is the login state persisted between CLI invocations.
type Session struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// LoadSession reads the session file at path.
func LoadSession(path string) (Session, error) {
	var s Session
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, ErrNoSession
	}
	if err != nil {
		return s, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse session: %w", err)
	}
	if s.Token == "" {
		return s, ErrNoSession
	}
	return s, nil
}

// Save writes the session to path, readable by the owner only.
func (s Session) Save(path string) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(path, 0o600)
}
