package services

import "errors"

// Validation outcomes are returned as typed sentinels so the HTTP boundary
// can map them to status codes. Anything else is a storage failure: logged
// with its operation context and passed through untranslated.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)
