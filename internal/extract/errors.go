package extract

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation   = errors.New("invalid upload")
	ErrExtraction   = errors.New("text extraction failed")
	ErrNoCandidates = errors.New("no candidate products found")
)

// Error is returned by the pipeline for every expected failure. Message is
// safe to show to the uploader; Cause carries the internal detail.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

func validationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func extractionError(message string, cause error) error {
	return &Error{Kind: ErrExtraction, Message: message, Cause: cause}
}

func noCandidatesError(message string) error {
	return &Error{Kind: ErrNoCandidates, Message: message}
}

// UserMessage returns the uploader-facing message carried by err, if any.
func UserMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Message, true
	}
	return "", false
}
