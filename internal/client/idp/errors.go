package idp

import (
	"errors"
	"fmt"
)

var (
	ErrUserExists       = errors.New("user already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserNotConfirmed = errors.New("user not confirmed")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrCodeMismatch     = errors.New("code mismatch")
	ErrExpiredCode      = errors.New("code expired")
	ErrLimitExceeded    = errors.New("limit exceeded")
	ErrInvalidPassword  = errors.New("invalid password")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnavailable      = errors.New("identity provider unavailable")
)

// GenericMessage is shown when a failure carries no provider wording.
const GenericMessage = "An error occurred"

// Error is a provider failure: one of the sentinels above plus the message
// the provider returned for the user.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

// NewError builds an *Error of the given kind.
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches the sentinel kind, so errors.Is(err, ErrCodeMismatch) works.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Message returns the single user-facing string for err: the provider
// message when one is attached, GenericMessage otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return GenericMessage
}
