package service

import "errors"

// ErrNotFound is wrapped by every "x not found" error of this package
var ErrNotFound = errors.New("not found")

type notFoundError struct {
	what string
}

func (e *notFoundError) Error() string { return e.what + " not found" }

func (e *notFoundError) Unwrap() error { return ErrNotFound }

func errorNotFound(what string) error {
	return &notFoundError{what: what}
}
