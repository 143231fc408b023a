package types

import "errors"

// Registry and asset manager errors.
var (
	ErrAlreadyExists        = errors.New("asset type already exists")
	ErrTypeNotFound         = errors.New("asset type not found")
	ErrSuperTypeNotFound    = errors.New("super type not found")
	ErrConflict             = errors.New("asset type changed concurrently")
	ErrConstraintViolation  = errors.New("catalog uniqueness constraint broken")
	ErrMissingID            = errors.New("missing identifier")
	ErrMissingRequiredField = errors.New("missing required field")
	ErrColumnCountChanged   = errors.New("changing the number of columns is not supported")
	ErrInvalidArgument      = errors.New("invalid argument")
)

// Store errors.
var (
	ErrTableNotFound = errors.New("table does not exist")
	ErrTableExists   = errors.New("table already exists")
	ErrInvalidIdent  = errors.New("invalid identifier")
)
