package http

import "errors"

var (
	// ErrUnauthorized is returned when the bearer token is missing or wrong.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidBody is returned when a request body cannot be decoded.
	ErrInvalidBody = errors.New("invalid request body")
	// ErrNotSaved is returned when a change was applied but saving it failed.
	ErrNotSaved = errors.New("change applied but not saved")
)
