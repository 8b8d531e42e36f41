package service

import (
	"errors"
	"fmt"
	"strings"

	"tink/internal/model"
)

var (
	ErrNoResolutions       = errors.New("select actions for all applications")
	ErrSubmitInProgress    = errors.New("a submission is already in progress")
	ErrSessionSubmitted    = errors.New("session has already been submitted")
	ErrSessionNotFound     = errors.New("conflict session not found")
	ErrApplicationNotFound = errors.New("application not found")
)

// ValidationError reports an operator input that cannot be applied
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// SubmitError lists the resolutions the Applications API refused. The
// session stays editable and can be submitted again.
type SubmitError struct {
	Applied  int
	Failures []model.SubmitFailure
}

func (e *SubmitError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("application %d: %s", f.ApplicationID, f.Message))
	}
	return fmt.Sprintf("%d of %d resolutions failed: %s",
		len(e.Failures), len(e.Failures)+e.Applied, strings.Join(parts, "; "))
}
