package services

import "errors"

var (
	// ErrInvalidInput wraps every rejected request payload.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCredentials is returned for a wrong admin password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized is returned for a missing, malformed or expired token.
	ErrUnauthorized = errors.New("unauthorized")
)
