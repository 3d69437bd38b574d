package compare

import "fmt"

// CompareError is a typed comparison failure.
type CompareError struct {
	Code    string
	Message string
}

func (e *CompareError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

const CodeNoCandidates = "NoCandidates"

// NewNoCandidates signals that the filtered candidate set is empty.
// This is a "try again with more detail" outcome, not a system failure.
func NewNoCandidates(msg string) error {
	return &CompareError{Code: CodeNoCandidates, Message: msg}
}
