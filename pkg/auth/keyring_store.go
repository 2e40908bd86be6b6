package auth

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "xlikes"
	keyringPrefix  = "session-"
	keyringIndex   = "session-index"
)

// KeyringStore stores sessions in the system keyring
type KeyringStore struct{}

// NewKeyringStore creates a keyring store, probing the backend first so the
// manager can fall back when no keyring daemon is running.
func NewKeyringStore() (*KeyringStore, error) {
	probe := keyringPrefix + "__probe__"
	if err := keyring.Set(keyringService, probe, "ok"); err != nil {
		return nil, fmt.Errorf("keyring unavailable: %w", err)
	}
	_ = keyring.Delete(keyringService, probe)
	return &KeyringStore{}, nil
}

// Store saves a session to the keyring
func (k *KeyringStore) Store(session *Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := keyring.Set(keyringService, keyringPrefix+session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return k.addToIndex(session.Name)
}

// Retrieve gets a session from the keyring
func (k *KeyringStore) Retrieve(name string) (*Session, error) {
	data, err := keyring.Get(keyringService, keyringPrefix+name)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &session, nil
}

// List returns all sessions stored in the keyring
func (k *KeyringStore) List() ([]*Session, error) {
	names, err := k.readIndex()
	if err != nil {
		return nil, err
	}

	var sessions []*Session
	for _, name := range names {
		session, err := k.Retrieve(name)
		if err != nil {
			continue
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

// Delete removes a session from the keyring
func (k *KeyringStore) Delete(name string) error {
	if err := keyring.Delete(keyringService, keyringPrefix+name); err != nil {
		if err == keyring.ErrNotFound {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return k.removeFromIndex(name)
}

// Exists checks if a session exists in the keyring
func (k *KeyringStore) Exists(name string) bool {
	_, err := keyring.Get(keyringService, keyringPrefix+name)
	return err == nil
}

// The keyring has no enumeration API, so account names are tracked in a
// separate newline-joined index entry.
func (k *KeyringStore) readIndex() ([]string, error) {
	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session index: %w", err)
	}

	var names []string
	for _, name := range strings.Split(data, "\n") {
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (k *KeyringStore) addToIndex(name string) error {
	names, err := k.readIndex()
	if err != nil {
		return err
	}

	for _, n := range names {
		if n == name {
			return nil
		}
	}
	names = append(names, name)

	return keyring.Set(keyringService, keyringIndex, strings.Join(names, "\n"))
}

func (k *KeyringStore) removeFromIndex(name string) error {
	names, err := k.readIndex()
	if err != nil {
		return err
	}

	filtered := names[:0]
	for _, n := range names {
		if n != name {
			filtered = append(filtered, n)
		}
	}

	return keyring.Set(keyringService, keyringIndex, strings.Join(filtered, "\n"))
}
