package models

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrDonationNotFound   = errors.New("donation not found")
	ErrChatNotFound       = errors.New("chat not found")
	ErrUserNotParticipant = errors.New("user is not a participant")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrNotOwner           = errors.New("donation belongs to another restaurant")
	ErrNotRequester       = errors.New("donation was requested by another NGO")
	ErrAlreadyRated       = errors.New("donation has already been rated")
	ErrEmptyMessage       = errors.New("message cannot be empty")
	ErrInvariantViolated  = errors.New("donation timestamps violate lifecycle ordering")
)

// InvalidStateError reports a lifecycle transition attempted from the
// wrong state. The stored row is left untouched when it is returned.
type InvalidStateError struct {
	Op       string
	Required string
	Actual   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot %s donation: requires status %q, current status is %q", e.Op, e.Required, e.Actual)
}

func NewInvalidStateError(op, required, actual string) *InvalidStateError {
	return &InvalidStateError{Op: op, Required: required, Actual: actual}
}
