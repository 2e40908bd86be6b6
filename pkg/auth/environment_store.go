package auth

import (
	"os"
)

const envAccountName = "default"

// EnvironmentStore reads a session from environment variables. It is
// read-only and exposes at most one session, named "default".
type EnvironmentStore struct{}

// NewEnvironmentStore creates an environment variable store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (s *EnvironmentStore) Store(session *Session) error {
	return ErrStoreUnavailable
}

// Retrieve gets the session from environment variables
func (s *EnvironmentStore) Retrieve(name string) (*Session, error) {
	if name != envAccountName {
		return nil, ErrSessionNotFound
	}

	authToken := os.Getenv("XLIKES_AUTH_TOKEN")
	csrfToken := os.Getenv("XLIKES_CSRF_TOKEN")
	if authToken == "" || csrfToken == "" {
		return nil, ErrSessionNotFound
	}

	return &Session{
		Name:      envAccountName,
		AuthToken: authToken,
		CSRFToken: csrfToken,
	}, nil
}

// List returns the environment session if one is configured
func (s *EnvironmentStore) List() ([]*Session, error) {
	session, err := s.Retrieve(envAccountName)
	if err != nil {
		return nil, nil
	}
	return []*Session{session}, nil
}

// Delete is not supported for environment variables
func (s *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials are configured
func (s *EnvironmentStore) Exists(name string) bool {
	_, err := s.Retrieve(name)
	return err == nil
}
