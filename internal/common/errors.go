// Package common defines shared constants and sentinel errors used across
// Minbar components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Cache / lookup errors.
	ErrNotFound = errors.New("not found")

	// Auth errors. ErrNotAuthenticated is returned by any mutation
	// attempted without a current session.
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrInvalidToken     = errors.New("invalid token")
	ErrSessionExpired   = errors.New("session expired")

	// Gateway errors.
	ErrRemoteUnavailable = errors.New("backend unavailable")
	ErrRemoteRejected    = errors.New("backend rejected request")

	// Import errors.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrEmptyImport       = errors.New("file is empty or not in the correct format")
)
