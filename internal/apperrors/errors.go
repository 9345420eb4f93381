// Package apperrors defines the error kinds shared across packages.
package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrParse             = errors.New("parse error")
	ErrIO                = errors.New("io error")
	ErrQueryUnavailable  = errors.New("query unavailable")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrLocked            = errors.New("another instance is running")
)
