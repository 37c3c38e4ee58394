package backend

import "fmt"

// AuthError means the backend rejected the caller's credentials or token.
// The UI responds by redirecting to login.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return "authentication required"
	}
	return e.Message
}

// ValidationError carries a backend-provided message for a rejected request.
// Form state is preserved and the message shown as a transient notification.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("request rejected (%d): %s", e.Status, e.Message)
}

// NetworkError wraps a transport-level failure. Callers keep their
// last-known-good state rather than clearing it.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("backend unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
