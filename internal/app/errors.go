package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted = errors.New("roster service not started")
)
