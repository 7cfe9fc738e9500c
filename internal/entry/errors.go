package entry

import "errors"

// Sentinel errors shared by the store and the handlers.
var (
	ErrNotFound      = errors.New("entry not found")
	ErrAlreadyExists = errors.New("entry already exists")
	ErrValidation    = errors.New("validation error")
)
