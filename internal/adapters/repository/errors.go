package repository

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrNotFound  = errors.New("member not found")
	ErrInvalidID = errors.New("invalid member id")
)
