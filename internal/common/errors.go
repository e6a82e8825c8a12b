// Package common defines the sentinel errors shared by every layer of the
// identity service. Callers should use errors.Is to match these values;
// the HTTP layer maps each of them to a status code.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Validation errors (missing or malformed input).
	ErrValidation = errors.New("validation error")

	// Authentication errors. "No such account" cases are deliberately folded
	// into these so a response never reveals whether an email is registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Authorization errors (authenticated, wrong role).
	ErrForbidden = errors.New("forbidden")

	// Conflict errors.
	ErrEmailTaken = errors.New("email already registered")

	// Internal errors (store, codec or collaborator failure).
	ErrInternal = errors.New("internal error")
)
