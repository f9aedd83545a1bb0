package domain

import "errors"

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("Internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("Your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("Your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("Given Param is not valid")
	// ErrForbidden will throw if the caller may not act on the item
	ErrForbidden = errors.New("forbidden")
	// ErrRepositoryUnavailable marks infrastructure failures of a backing store.
	// Callers may retry.
	ErrRepositoryUnavailable = errors.New("repository unavailable")

	ErrNotImplemented = errors.New("not implemented")
)

// RepositoryError wraps a driver error. It matches ErrRepositoryUnavailable
// with errors.Is and unwraps to the driver error.
type RepositoryError struct {
	Op  string
	Err error
}

func NewRepositoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &RepositoryError{Op: op, Err: err}
}

func (e *RepositoryError) Error() string {
	return e.Op + ": " + ErrRepositoryUnavailable.Error() + ": " + e.Err.Error()
}

func (e *RepositoryError) Unwrap() error {
	return e.Err
}

func (e *RepositoryError) Is(target error) bool {
	return target == ErrRepositoryUnavailable
}
