package router

import (
	"errors"
	"fmt"
)

const CodeAmbiguousIntent = "AmbiguousIntent"

// RouterError is a typed routing failure.
type RouterError struct {
	Code    string
	Message string
}

func (e *RouterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAmbiguousIntent signals that no classifier rule matched and no
// fallback is configured. A user-visible "try again with more detail"
// outcome, not a system failure.
func NewAmbiguousIntent(msg string) error {
	return &RouterError{Code: CodeAmbiguousIntent, Message: msg}
}

// IsAmbiguous reports whether err is an AmbiguousIntent error.
func IsAmbiguous(err error) bool {
	var re *RouterError
	return errors.As(err, &re) && re.Code == CodeAmbiguousIntent
}
