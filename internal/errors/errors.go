package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Model errors (MODEL-001 to MODEL-099)
	ErrCodeModelNotFound      ErrorCode = "MODEL-001"
	ErrCodeModelInvalid       ErrorCode = "MODEL-002"
	ErrCodeModelUnmarshal     ErrorCode = "MODEL-003"
	ErrCodeModelMarshal       ErrorCode = "MODEL-004"
	ErrCodeModelUnknownTask   ErrorCode = "MODEL-005"
	ErrCodeModelDuplicateName ErrorCode = "MODEL-006"

	// Duration errors (DUR-001 to DUR-099)
	ErrCodeDurationType   ErrorCode = "DUR-001"
	ErrCodeDurationFormat ErrorCode = "DUR-002"
	ErrCodeDurationRange  ErrorCode = "DUR-003"

	// Automaton document errors (NTA-001 to NTA-099)
	ErrCodeNTADuplicate    ErrorCode = "NTA-001"
	ErrCodeNTADangling     ErrorCode = "NTA-002"
	ErrCodeNTAUnpairedSync ErrorCode = "NTA-003"
	ErrCodeNTAMarshal      ErrorCode = "NTA-004"

	// Checker errors (CHECK-001 to CHECK-099)
	ErrCodeCheckerNotFound ErrorCode = "CHECK-001"
	ErrCodeCheckerFailed   ErrorCode = "CHECK-002"
	ErrCodeCheckerTimeout  ErrorCode = "CHECK-003"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
	ErrCodeDirectoryFailed ErrorCode = "IO-004"
)

// CheckError is an error with a code, recovery suggestions and an optional cause
type CheckError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *CheckError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *CheckError) Unwrap() error {
	return e.Cause
}

// New creates a new CheckError
func New(code ErrorCode, message string) *CheckError {
	return &CheckError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new CheckError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *CheckError {
	return &CheckError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *CheckError) WithSuggestion(suggestion string) *CheckError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *CheckError) WithSuggestions(suggestions ...string) *CheckError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// HasCode reports whether err is a CheckError (at any depth) carrying code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if ce, ok := err.(*CheckError); ok && ce.Code == code {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Common error constructors for frequently used errors

// NewModelNotFoundError creates a model file not found error
func NewModelNotFoundError(path string) *CheckError {
	return New(ErrCodeModelNotFound, fmt.Sprintf("task model file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Export the model from the DSL front end as YAML or JSON")
}

// NewModelInvalidError creates a model validation error
func NewModelInvalidError(details string) *CheckError {
	return New(ErrCodeModelInvalid, fmt.Sprintf("invalid task model: %s", details)).
		WithSuggestion("Run 'rtcheck queries <model>' to inspect how properties are interpreted")
}

// NewModelUnmarshalError creates a model parse error
func NewModelUnmarshalError(path string, cause error) *CheckError {
	return Wrap(ErrCodeModelUnmarshal, fmt.Sprintf("failed to parse task model: %s", path), cause).
		WithSuggestion("Check the file syntax (YAML or JSON)").
		WithSuggestion("Durations must be integers (ms), floats (seconds), \"<n>ms\" or \"H:M:S\"")
}

// NewCheckerNotFoundError creates an error for a checker binary that cannot be located
func NewCheckerNotFoundError(binary string, cause error) *CheckError {
	return Wrap(ErrCodeCheckerNotFound, fmt.Sprintf("model checker not found: %s", binary), cause).
		WithSuggestion("Install UPPAAL and put verifyta on PATH").
		WithSuggestion("Point to the binary with --checker or RTCHECK_CHECKER")
}

// NewFileWriteError creates a file write error
func NewFileWriteError(path string, cause error) *CheckError {
	return Wrap(ErrCodeFileWriteFailed, fmt.Sprintf("failed to write file: %s", path), cause).
		WithSuggestion("Verify the output directory exists and is writable")
}
