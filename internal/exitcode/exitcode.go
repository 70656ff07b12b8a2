package exitcode

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution (all checked properties satisfied)
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// PropertyViolated indicates at least one property was reported violated
	PropertyViolated = 3

	// CheckUnavailable indicates no property was violated but at least one
	// could not be checked
	CheckUnavailable = 4

	// ModelInvalid indicates the task model could not be loaded or translated
	ModelInvalid = 5

	// Interrupted indicates the run was cancelled by a signal
	Interrupted = 130
)

// StatusError carries an explicit exit code from a command that completed
// but whose outcome is not a success.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return e.Message
}

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode analyzes an error and returns the appropriate exit code
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	var statusErr *StatusError
	if stderrors.As(err, &statusErr) {
		return statusErr.Code
	}

	for _, code := range []errors.ErrorCode{
		errors.ErrCodeModelNotFound,
		errors.ErrCodeModelInvalid,
		errors.ErrCodeModelUnmarshal,
		errors.ErrCodeModelUnknownTask,
		errors.ErrCodeModelDuplicateName,
		errors.ErrCodeDurationType,
		errors.ErrCodeDurationFormat,
		errors.ErrCodeDurationRange,
		errors.ErrCodeNTADuplicate,
		errors.ErrCodeNTADangling,
		errors.ErrCodeNTAUnpairedSync,
	} {
		if errors.HasCode(err, code) {
			return ModelInvalid
		}
	}
	if errors.HasCode(err, errors.ErrCodeCheckerNotFound) {
		return CheckUnavailable
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case PropertyViolated:
		return "Property violated"
	case CheckUnavailable:
		return "Check unavailable"
	case ModelInvalid:
		return "Invalid task model"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
