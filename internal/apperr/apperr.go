package apperr

import (
	"errors"
	"fmt"
)

const (
	CodeValidation        = "VALIDATION"
	CodeUnknownTab        = "UNKNOWN_TAB"
	CodeFetchTransport    = "FETCH_TRANSPORT"
	CodeFetchStatus       = "FETCH_STATUS"
	CodeSessionNotFound   = "SESSION_NOT_FOUND"
	CodeDocumentNotFound  = "DOCUMENT_NOT_FOUND"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeInternal          = "INTERNAL"
)

// CodedError is a typed error used for stable API mapping.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// New builds a *CodedError.
func New(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}

// Code returns the code of the first CodedError in err's chain, or "".
func Code(err error) string {
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded.Code
	}
	return ""
}

// Reason returns the user-facing message of a CodedError including its cause,
// or err.Error() for any other error.
func Reason(err error) string {
	var coded *CodedError
	if !errors.As(err, &coded) {
		return err.Error()
	}
	if coded.Cause == nil {
		return coded.Message
	}
	return coded.Message + ": " + coded.Cause.Error()
}
