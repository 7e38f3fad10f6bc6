package errors

import (
	"errors"
	"fmt"
)

// Common error types for the CMP authorization and tool gateway
var (
	// Authorization flow errors
	ErrMalformedRequest    = errors.New("malformed authorization request")
	ErrInvalidGrantContext = errors.New("invalid grant context")
	ErrLoginRequired       = errors.New("login required")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	// Tool dispatch errors
	ErrInvalidArguments   = errors.New("invalid arguments")
	ErrUpstreamFailure    = errors.New("upstream failure")
	ErrMissingCredentials = errors.New("missing API credentials")
	ErrNoSession          = errors.New("no MCP session")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Client errors
	ErrInvalidClient      = errors.New("invalid client")
	ErrInvalidRedirectURI = errors.New("invalid redirect URI")

	// Grant errors
	ErrInvalidGrant         = errors.New("invalid grant")
	ErrInvalidCodeChallenge = errors.New("invalid code challenge")
	ErrUnsupportedGrantType = errors.New("unsupported grant type")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrInternal = errors.New("internal error")
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

// New creates a plain error. It exists so callers importing this package
// under the name errors can still build ad-hoc messages.
func New(text string) error {
	return errors.New(text)
}
