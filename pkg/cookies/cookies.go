// Package cookies loads browser-exported session cookies and exposes the
// tokens the X API needs for an authenticated call.
package cookies

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/norandom/x-likes-scraper/pkg/errors"
)

// csrfCookie and authCookie are the two cookies the engine refuses to start
// without.
const (
	csrfCookie = "ct0"
	authCookie = "auth_token"
)

// cookieEntry matches one object in a cookies.json export. Browsers add more
// fields (domain, path, expiry); only name and value matter here.
type cookieEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Jar holds the session cookies for one X account.
type Jar struct {
	values map[string]string
}

// LoadFile reads a cookies.json file exported from a browser.
func LoadFile(path string) (*Jar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}

	var entries []cookieEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse cookies file: %w", err)
	}

	values := make(map[string]string, len(entries))
	for _, e := range entries {
		values[e.Name] = e.Value
	}

	return &Jar{values: values}, nil
}

// FromTokens builds a Jar from already-extracted tokens, e.g. a stored
// session.
func FromTokens(authToken, csrfToken string) *Jar {
	return &Jar{values: map[string]string{
		authCookie: authToken,
		csrfCookie: csrfToken,
	}}
}

// Get returns the value of a named cookie, empty if absent.
func (j *Jar) Get(name string) string {
	return j.values[name]
}

// CSRFToken returns the ct0 token sent in the x-csrf-token header.
func (j *Jar) CSRFToken() string {
	return j.values[csrfCookie]
}

// AuthToken returns the session auth token.
func (j *Jar) AuthToken() string {
	return j.values[authCookie]
}

// Header renders all cookies as a Cookie header value.
func (j *Jar) Header() string {
	pairs := make([]string, 0, len(j.values))
	for name, value := range j.values {
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, value))
	}
	return strings.Join(pairs, "; ")
}

// Validate checks that the cookies required for authenticated API calls are
// present.
func (j *Jar) Validate() error {
	var missing []string
	for _, required := range []string{csrfCookie, authCookie} {
		if j.values[required] == "" {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return errors.NewInvalidCredentials(
			fmt.Sprintf("missing required cookies: %s", strings.Join(missing, ", ")))
	}
	return nil
}
