// Package common defines shared constants and sentinel errors used across
// client and server layers of gophjournal. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Remote collaborator errors. ErrUnavailable means the caller may be
	// looking at stale data.
	ErrUnavailable  = errors.New("remote store unavailable")
	ErrUnauthorized = errors.New("unauthorized")

	// Local cache errors. ErrStorageTimeout is a soft failure; ErrCompression
	// is hard and aborts a snapshot write before anything is persisted.
	ErrStorageTimeout = errors.New("storage timeout")
	ErrCompression    = errors.New("compression failed")

	// ErrCancelled marks a fetch superseded by a newer sync for the same user.
	// It is not a user-visible failure.
	ErrCancelled = errors.New("sync cancelled")

	// Validation errors are returned before any mutation happens.
	ErrValidation   = errors.New("validation error")
	ErrNotConfirmed = errors.New("destructive operation not confirmed")

	// Token errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
