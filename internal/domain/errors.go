package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidArgument indicates the caller passed an unusable value.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict indicates the request clashes with the current state.
	ErrConflict = errors.New("conflict")
)
