package ledger

import (
	"errors"
	"fmt"
)

const (
	CodeConflict  = "Conflict"
	CodeExpired   = "Expired"
	CodeNotFound  = "NotFound"
	CodeForbidden = "Forbidden"
)

// BookingError is a terminal outcome of a single booking attempt. It is
// surfaced verbatim to the caller and never retried internally; a blind
// retry could break slot exclusivity.
type BookingError struct {
	Code    string
	Message string
}

func (e *BookingError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewConflict(msg string) error {
	return &BookingError{Code: CodeConflict, Message: msg}
}

func NewExpired(msg string) error {
	return &BookingError{Code: CodeExpired, Message: msg}
}

func NewNotFound(msg string) error {
	return &BookingError{Code: CodeNotFound, Message: msg}
}

func NewForbidden(msg string) error {
	return &BookingError{Code: CodeForbidden, Message: msg}
}

// IsCode reports whether err is a BookingError carrying the given code.
func IsCode(err error, code string) bool {
	var be *BookingError
	return errors.As(err, &be) && be.Code == code
}
