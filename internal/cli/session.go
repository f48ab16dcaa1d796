package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"

	"github.com/literaryvoice/literary-voice/internal/insight"
)

// Session is the locally persisted login state plus optional AI settings.
type Session struct {
	APIKey string         `json:"api_key,omitempty"`
	Email  string         `json:"email,omitempty"`
	AI     insight.Config `json:"ai,omitempty"`
}

// LoggedIn reports whether a saved API key is present.
func (s *Session) LoggedIn() bool {
	return s.APIKey != ""
}

// SessionPath returns the session file location under the XDG config dir.
func SessionPath() string {
	return filepath.Join(xdg.ConfigHome, "literaryvoice", "session.json")
}

// LoadSession reads the saved session. A missing file is an empty session,
// not an error.
func LoadSession(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the session to disk, creating the config dir if needed.
// The file holds the API key, so it is not group or world readable.
func (s *Session) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Clear removes the login state but keeps AI settings on disk so a
// re-login does not force reconfiguring the provider.
func (s *Session) Clear(path string) error {
	s.APIKey = ""
	s.Email = ""
	if s.AI.Configured() {
		return s.Save(path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
