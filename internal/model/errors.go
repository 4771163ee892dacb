package model

import "errors"

var (
	// User related errors
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Token related errors. Both map to a generic 401 at the boundary so
	// the client cannot tell a missing record from a failed hash check.
	ErrTokenInvalid  = errors.New("refresh token invalid")
	ErrTokenMismatch = errors.New("refresh token mismatch")

	// Content related errors
	ErrEntityNotSupported = errors.New("entity not supported")
	ErrItemNotFound       = errors.New("content item not found")
	ErrItemConflict       = errors.New("content item conflict")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Upload related errors
	ErrUploadTooLarge   = errors.New("upload too large")
	ErrUploadNotAllowed = errors.New("upload type not allowed")
	ErrUploadNotFound   = errors.New("upload not found")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
