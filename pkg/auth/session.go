package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// Session holds the stored credentials for one X account: the two cookies an
// authenticated API call needs.
type Session struct {
	Name         string    `json:"name"`
	AuthToken    string    `json:"auth_token"`
	CSRFToken    string    `json:"csrf_token"`
	LastModified time.Time `json:"last_modified"`
}

// SessionStore is the interface for storing and retrieving sessions
type SessionStore interface {
	// Store saves a session
	Store(session *Session) error

	// Retrieve gets the session for a specific account name
	Retrieve(name string) (*Session, error)

	// List returns all stored sessions
	List() ([]*Session, error)

	// Delete removes the session for a specific account name
	Delete(name string) error

	// Exists checks if a session exists for an account name
	Exists(name string) bool
}

// Manager handles session storage with fallback mechanisms
type Manager struct {
	stores []SessionStore
}

// NewManager creates a session manager with the available storage backends:
// system keyring first, encrypted file as fallback, environment variables as
// a read-only last resort.
func NewManager() (*Manager, error) {
	var stores []SessionStore

	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "sessions.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// Store saves a session using the first available store
func (m *Manager) Store(session *Session) error {
	if session.Name == "" {
		return errors.New("account name is required")
	}
	if session.AuthToken == "" {
		return errors.New("auth token is required")
	}
	if session.CSRFToken == "" {
		return errors.New("csrf token is required")
	}

	session.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(session); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store session: %w", lastErr)
	}
	return errors.New("no available session stores")
}

// Retrieve gets a session from the first store that has it
func (m *Manager) Retrieve(name string) (*Session, error) {
	for _, store := range m.stores {
		if session, err := store.Retrieve(name); err == nil && session != nil {
			return session, nil
		}
	}
	return nil, fmt.Errorf("session not found for account: %s", name)
}

// List returns all stored sessions from all stores
func (m *Manager) List() ([]*Session, error) {
	sessionMap := make(map[string]*Session)

	for _, store := range m.stores {
		sessions, err := store.List()
		if err != nil {
			continue
		}
		for _, session := range sessions {
			// Keep the most recently modified version
			if existing, ok := sessionMap[session.Name]; !ok || session.LastModified.After(existing.LastModified) {
				sessionMap[session.Name] = session
			}
		}
	}

	var result []*Session
	for _, session := range sessionMap {
		result = append(result, session)
	}

	return result, nil
}

// Delete removes a session from all stores
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete session: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("session not found for account: %s", name)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "xlikes")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "xlikes")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "xlikes")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "xlikes")
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeSession creates a copy of the session with sensitive data masked
func SanitizeSession(session *Session) *Session {
	if session == nil {
		return nil
	}

	return &Session{
		Name:         session.Name,
		AuthToken:    maskString(session.AuthToken),
		CSRFToken:    maskString(session.CSRFToken),
		LastModified: session.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSession   = errors.New("invalid session")
	ErrStoreUnavailable = errors.New("session store unavailable")
)
