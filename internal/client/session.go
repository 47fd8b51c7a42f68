package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"taskboard/internal/domain"
)

// Session is the locally cached bearer token plus the public user
// snapshot it belongs to. It is constructed once and passed explicitly;
// nothing in this package keeps global auth state.
type Session struct {
	Token string            `json:"token"`
	User  domain.PublicUser `json:"user"`

	path string
}

// LoadSession reads a previously saved session from path. A missing
// file yields an empty, unauthenticated session bound to the same path.
func LoadSession(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse session: %w", err)
	}
	return s, nil
}

func (s *Session) Authenticated() bool {
	return s.Token != ""
}

// Save persists the session. The file is user-readable only, since the
// token is a bearer credential.
func (s *Session) Save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear wipes the cached token both in memory and on disk. Called on
// logout and whenever the server answers 401.
func (s *Session) Clear() error {
	s.Token = ""
	s.User = domain.PublicUser{}

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
