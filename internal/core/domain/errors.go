package domain

import "errors"

var (
	ErrForbidden          = errors.New("access forbidden")
	ErrNoCredential       = errors.New("no stored credential")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
)

// AuthReason classifies why a credential exchange or session restore failed.
type AuthReason string

const (
	AuthReasonRejected        AuthReason = "rejected"
	AuthReasonNoCredential    AuthReason = "no_credential"
	AuthReasonTransport       AuthReason = "transport"
	AuthReasonInvalidResponse AuthReason = "invalid_response"
	AuthReasonExpired         AuthReason = "expired"
	AuthReasonStorage         AuthReason = "storage"
	AuthReasonBusy            AuthReason = "busy"
	AuthReasonSuperseded      AuthReason = "superseded"
)

// AuthError is the single error surfaced by login and session restore.
// Error returns the human-readable message only.
type AuthError struct {
	Reason  AuthReason
	Status  int
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "authentication failed"
}

func (e *AuthError) Unwrap() error { return e.Err }

// DirectoryError reports a failed directory operation with the best
// human-readable message that could be extracted from the response.
type DirectoryError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *DirectoryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "directory " + e.Op + " failed"
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// IsForbidden reports whether err is a 403-class rejection.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}
