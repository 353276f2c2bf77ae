package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Validation errors; wrapped with the offending field list.
	ErrorValidation = errors.New("validation error")

	// Flow control.
	ErrorBusy = errors.New("another operation is in progress")
)
