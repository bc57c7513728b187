package auth

import "errors"

var (
	// ErrInvalidCredentials means the backend (or allow-list) rejected the
	// email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrIncompleteCredentials means login succeeded remotely but the
	// response lacked a user or one of the tokens. Whatever was present has
	// still been stored.
	ErrIncompleteCredentials = errors.New("login response missing user or tokens")

	// ErrSuperseded means a newer login or a logout started while this login
	// was in flight; its response was discarded.
	ErrSuperseded = errors.New("login superseded by a newer request")

	// ErrMalformedResponse means a 2xx response could not be read as the
	// expected envelope.
	ErrMalformedResponse = errors.New("malformed auth response")

	// ErrPasswordMismatch means the new and confirmation passwords differ.
	ErrPasswordMismatch = errors.New("passwords do not match")
)

// ValidationError is a client-side input failure. Requests that fail
// validation are never sent.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }
