package repository

import "errors"

var (
	// ErrNotFound is returned when no row or document matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)
