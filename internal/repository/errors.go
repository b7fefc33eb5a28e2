package repository

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrEmailTaken = errors.New("email already exists")
	// ErrForbidden is returned by guarded task writes the caller may not make.
	ErrForbidden = errors.New("forbidden")
)
