package apperr

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrLocked   = errors.New("data directory is locked by another run")
	ErrInvalid  = errors.New("invalid argument")
)
