package datasets

import (
	"errors"
	"fmt"
)

const (
	CodeDatasetUnavailable = "DatasetUnavailable"
	CodeSchemaMismatch     = "SchemaMismatch"
)

// GatewayError is a typed data-layer failure. Callers degrade the
// affected dataset rather than aborting the whole request.
type GatewayError struct {
	Code    string
	Kind    DatasetKind
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Code, e.Kind, e.Message)
}

func NewDatasetUnavailable(kind DatasetKind, msg string) error {
	return &GatewayError{Code: CodeDatasetUnavailable, Kind: kind, Message: msg}
}

func NewSchemaMismatch(kind DatasetKind, msg string) error {
	return &GatewayError{Code: CodeSchemaMismatch, Kind: kind, Message: msg}
}

// IsCode reports whether err is a GatewayError carrying the given code.
func IsCode(err error, code string) bool {
	var ge *GatewayError
	return errors.As(err, &ge) && ge.Code == code
}
