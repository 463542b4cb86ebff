package errors

import (
	"errors"
	"fmt"
)

// Common error types for the auth client
var (
	// Credential errors
	ErrNoRefreshToken     = errors.New("no refresh token stored")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMalformedUserInfo  = errors.New("malformed user info")

	// Exchange errors
	ErrRefreshFailed     = errors.New("token refresh failed")
	ErrLoginFailed       = errors.New("login failed")
	ErrUnexpectedStatus  = errors.New("unexpected status")
	ErrIncompleteTokens  = errors.New("token response missing access or refresh token")
	ErrUnsupportedStore  = errors.New("unsupported credential store")
	ErrStoreUnavailable  = errors.New("credential store unavailable")
	ErrInvalidBaseURL    = errors.New("invalid base URL")
	ErrSessionNavigation = errors.New("navigated away from page")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// StatusError reports a non-success HTTP status from the auth service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	return ErrUnexpectedStatus
}
