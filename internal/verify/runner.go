package verify

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// ErrCheckerNotFound is wrapped by runners when the checker binary cannot be
// located.
var ErrCheckerNotFound = stderrors.New("checker binary not found")

// DefaultChecker is the checker binary used when none is configured.
const DefaultChecker = "verifyta"

// outputWaitDelay bounds how long Run waits for the output pipes to close
// after the checker exits or is killed. Children of the checker that keep
// the pipes open would otherwise block Run past its timeout.
const outputWaitDelay = 2 * time.Second

// RunRequest describes one checker invocation.
type RunRequest struct {
	Binary    string
	ModelPath string
	QueryPath string
	// Timeout bounds the invocation; zero means no limit beyond ctx.
	Timeout time.Duration
}

// Command returns the argument vector of the invocation.
func (r RunRequest) Command() []string {
	return []string{r.Binary, r.ModelPath, r.QueryPath}
}

// RunResult is the raw outcome of a checker invocation.
type RunResult struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// Runner invokes a model checker.
type Runner interface {
	Run(ctx context.Context, req RunRequest) (*RunResult, error)
}

// ProcessRunner runs the checker as a local process and captures stdout and
// stderr together.
type ProcessRunner struct{}

// Run executes `<binary> <model> <query>`. A non-zero exit is not an error;
// the verdict is read from the output.
func (ProcessRunner) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	path, err := exec.LookPath(req.Binary)
	if err != nil {
		return nil, errors.NewCheckerNotFoundError(req.Binary, fmt.Errorf("%w: %v", ErrCheckerNotFound, err))
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	cmd := exec.CommandContext(ctx, path, req.ModelPath, req.QueryPath)
	cmd.WaitDelay = outputWaitDelay

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	err = cmd.Run()

	exitCode := 0
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			if stderrors.Is(ctxErr, context.DeadlineExceeded) {
				return nil, errors.Wrap(errors.ErrCodeCheckerTimeout,
					fmt.Sprintf("checker exceeded %s", req.Timeout), ctxErr)
			}
			return nil, errors.Wrap(errors.ErrCodeCheckerFailed, "checker interrupted", ctxErr)
		}
		var exitErr *exec.ExitError
		if !stderrors.As(err, &exitErr) {
			return nil, errors.Wrap(errors.ErrCodeCheckerFailed, "failed to start checker", err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &RunResult{
		ExitCode: exitCode,
		Output:   output.String(),
		Duration: time.Since(startTime),
	}, nil
}

// ValidateChecker reports whether the checker binary can be located.
func ValidateChecker(binary string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return errors.NewCheckerNotFoundError(binary, fmt.Errorf("%w: %v", ErrCheckerNotFound, err))
	}
	return nil
}
