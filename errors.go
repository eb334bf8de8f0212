package dbmanager

import "errors"

var (
	// ErrNotFound is returned when a driver or connection is not registered
	ErrNotFound = errors.New("not found")
	// ErrInternal is returned when an internal error occurs
	ErrInternal = errors.New("internal error")
	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")
	// ErrAlreadyExists is returned when a connection name is already registered
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnsupportedProtocol is returned when no driver is registered for a DSN protocol
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	// ErrUnknownDriver is returned when a driver name is not known to database/sql
	ErrUnknownDriver = errors.New("unknown driver")
	// ErrSchemaMismatch is returned when an existing table does not match its definition
	ErrSchemaMismatch = errors.New("schema mismatch")
)
