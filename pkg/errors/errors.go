package errors

import (
	"fmt"
	"net/http"
)

// Type classifies errors raised while talking to the X API or touching
// local state.
type Type string

const (
	TypeNetwork             Type = "network"
	TypeHTTP                Type = "http"
	TypeRateLimit           Type = "rate_limit"
	TypeAuthExtraction      Type = "auth_extraction"
	TypeInvalidCredentials  Type = "invalid_credentials"
	TypeParse               Type = "parse"
	TypeCheckpointCorrupted Type = "checkpoint_corrupted"
	TypeUnknown             Type = "unknown"
)

// Error is a typed API error with an optional HTTP status code.
type Error struct {
	Type    Type
	Message string
	Status  int
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.Status, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// NewNetwork reports a transport-level failure.
func NewNetwork(msg string) *Error {
	return &Error{Type: TypeNetwork, Message: msg}
}

// NewHTTP maps an unexpected response status to an error. Rate limiting and
// bad credentials get dedicated messages since they are the two failures a
// user can actually act on.
func NewHTTP(status int) *Error {
	switch status {
	case http.StatusTooManyRequests:
		return &Error{
			Type:    TypeRateLimit,
			Message: "rate limit exceeded, wait before retrying",
			Status:  status,
		}
	case http.StatusUnauthorized:
		return &Error{
			Type:    TypeInvalidCredentials,
			Message: "authentication failed, check your cookies",
			Status:  status,
		}
	default:
		return &Error{
			Type:    TypeHTTP,
			Message: fmt.Sprintf("unexpected status code %d", status),
			Status:  status,
		}
	}
}

// NewAuthExtraction reports a failed bearer token or query id scrape. Fatal
// for the current fetch attempt; the engine never retries these itself.
func NewAuthExtraction(msg string) *Error {
	return &Error{Type: TypeAuthExtraction, Message: msg}
}

// NewInvalidCredentials reports an unusable cookie set.
func NewInvalidCredentials(msg string) *Error {
	return &Error{Type: TypeInvalidCredentials, Message: msg}
}

// NewParse reports a malformed payload entry. Per-record parse failures are
// logged and skipped, never fatal to a page.
func NewParse(msg string) *Error {
	return &Error{Type: TypeParse, Message: msg}
}

// NewCheckpointCorrupted reports an unreadable checkpoint. Callers treat the
// checkpoint as absent.
func NewCheckpointCorrupted(err error) *Error {
	return &Error{Type: TypeCheckpointCorrupted, Message: fmt.Sprintf("checkpoint unreadable: %v", err)}
}

// IsRetryable reports whether an error of the given type is worth retrying
// from an external retry loop.
func IsRetryable(t Type) bool {
	switch t {
	case TypeNetwork, TypeRateLimit, TypeHTTP:
		return true
	default:
		return false
	}
}

// IsRetryableStatusCode reports whether an HTTP status code indicates a
// transient failure.
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // network error
		return true
	case 429:
		return true
	case 401, 403, 404:
		return false
	default:
		return statusCode >= 500
	}
}
