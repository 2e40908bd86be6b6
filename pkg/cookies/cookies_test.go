package cookies

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCookiesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cookies.json")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write cookies file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCookiesFile(t, `[
		{"name": "auth_token", "value": "tok123", "domain": ".x.com", "path": "/"},
		{"name": "ct0", "value": "csrf456"},
		{"name": "guest_id", "value": "g789"}
	]`)

	jar, err := LoadFile(path)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if jar.AuthToken() != "tok123" {
		t.Errorf("expected auth token tok123, got %s", jar.AuthToken())
	}
	if jar.CSRFToken() != "csrf456" {
		t.Errorf("expected csrf token csrf456, got %s", jar.CSRFToken())
	}
	if jar.Get("guest_id") != "g789" {
		t.Errorf("expected guest_id g789, got %s", jar.Get("guest_id"))
	}
	if err := jar.Validate(); err != nil {
		t.Errorf("expected valid jar: %v", err)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := writeCookiesFile(t, `{"not": "an array"}`)

	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed cookies file")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidateMissingCookies(t *testing.T) {
	jar := FromTokens("", "")

	err := jar.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "ct0") || !strings.Contains(err.Error(), "auth_token") {
		t.Errorf("error should name the missing cookies: %v", err)
	}
}

func TestHeader(t *testing.T) {
	jar := FromTokens("tok", "csrf")

	header := jar.Header()
	if !strings.Contains(header, "auth_token=tok") {
		t.Errorf("header missing auth_token: %s", header)
	}
	if !strings.Contains(header, "ct0=csrf") {
		t.Errorf("header missing ct0: %s", header)
	}
	if !strings.Contains(header, "; ") && strings.Count(header, "=") > 1 {
		t.Errorf("cookies must be joined with '; ': %s", header)
	}
}
