// Package common defines shared constants and sentinel errors used across
// client and server layers of letterdesk. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Account and session errors.
	ErrDuplicateAccount      = errors.New("user with this email already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrInvalidCredentials    = errors.New("invalid password")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired password reset token")
	ErrAccountNotFound       = errors.New("user associated with token not found")
	ErrNotAuthenticated      = errors.New("user not authenticated")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrTooManyRequests       = errors.New("too many requests")

	// Letter errors.
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrValidation        = errors.New("validation error")

	// Generation service errors.
	ErrGenerationService = errors.New("failed to generate letter draft")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
