package ux

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\nSuggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError adds a recovery suggestion to err when one is known. Coded
// errors already carry their suggestions and are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var coded *errors.CheckError
	if stderrors.As(err, &coded) && len(coded.Suggestions) > 0 {
		return err
	}

	errMsg := err.Error()

	switch {
	case errors.HasCode(err, errors.ErrCodeCheckerNotFound),
		strings.Contains(errMsg, "executable file not found"):
		return NewErrorWithSuggestion(err,
			"Install UPPAAL and pass the verifyta path with --checker or set RTCHECK_CHECKER")

	case strings.Contains(errMsg, "no such file or directory"):
		if strings.Contains(errMsg, "config.yaml") {
			return NewErrorWithSuggestion(err, "Create a configuration with 'rtcheck config init'")
		}
		return NewErrorWithSuggestion(err, "Check the model path; 'rtcheck queries <model>' lists what a model declares")

	case strings.Contains(errMsg, "permission denied"):
		return NewErrorWithSuggestion(err,
			"Check file permissions of the model, the output directory and the scratch directory")

	case strings.Contains(errMsg, "unknown format"):
		return NewErrorWithSuggestion(err, "Use --format text, json or yaml")
	}

	return err
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
