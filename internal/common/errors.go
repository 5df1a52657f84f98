package common

import "errors"

var (
	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidToken is returned when a bearer credential cannot be parsed
	// or carries no usable identity.
	ErrInvalidToken = errors.New("invalid token")
)
