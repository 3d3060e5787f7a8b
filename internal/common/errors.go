// Package common defines shared constants and sentinel errors used across
// the todolist server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal = errors.New("internal error")

	// Signup errors. ErrEmailTaken is a conflict, not a field-validation
	// failure: the form was well-formed, the address is just already in use.
	ErrEmailTaken = errors.New("email already registered")

	// Login errors. A single sentinel covers both unknown email and wrong
	// password so the response cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Request authentication errors (missing or unusable session).
	ErrUnauthenticated = errors.New("unauthenticated")

	// Ownership errors (acting identity is not the resource owner).
	ErrForbidden = errors.New("forbidden")

	// Session token lifecycle errors.
	ErrTokenMalformed        = errors.New("session token malformed")
	ErrTokenSignatureInvalid = errors.New("session token signature invalid")
	ErrTokenExpired          = errors.New("session token expired")
)
