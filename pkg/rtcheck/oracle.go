// Package rtcheck exposes schedulability and latency checking of task models
// as a feasibility oracle for design-space exploration.
//
// Usage:
//
//	o := rtcheck.New(rtcheck.WithChecker("/opt/uppaal/bin/verifyta"))
//	verdict, err := o.Feasible(ctx, m, "e2e", "deadline_misses==0")
//
// An Unknown verdict means at least one property could not be checked. It
// must never be read as Infeasible.
package rtcheck

import (
	"context"
	"io"
	"time"

	"github.com/felixgeelhaar/rtcheck/internal/log"
	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/translate"
	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// Re-exported model and result types.
type (
	Model      = model.Model
	Task       = model.Task
	Connection = model.Connection
	Property   = model.Property
	Properties = model.Properties
	Status     = verify.Status
	Runner     = verify.Runner
	RunRequest = verify.RunRequest
	RunResult  = verify.RunResult
)

const (
	Satisfied   = verify.Satisfied
	Violated    = verify.Violated
	Unavailable = verify.Unavailable
)

// DeadlineProperty names the synthesized "no deadline miss" property.
const DeadlineProperty = "deadline_misses==0"

// Verdict summarizes a set of property results.
type Verdict int

const (
	// Unknown means nothing was violated but something could not be checked.
	Unknown Verdict = iota
	// Feasible means every requested property is satisfied.
	Feasible
	// Infeasible means at least one property is violated.
	Infeasible
)

func (v Verdict) String() string {
	switch v {
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// VerdictOf folds property statuses into a verdict. Violations dominate;
// otherwise any unavailable result makes the verdict Unknown.
func VerdictOf(statuses map[string]Status) Verdict {
	unavailable := false
	for _, s := range statuses {
		switch s {
		case Violated:
			return Infeasible
		case Unavailable:
			unavailable = true
		}
	}
	if unavailable {
		return Unknown
	}
	return Feasible
}

// Oracle translates and checks models. It is safe for concurrent use; every
// call works in its own temporary directory.
type Oracle struct {
	checker    string
	runner     Runner
	scratchDir string
	jobs       int
	timeout    time.Duration
	logger     *log.Logger
}

// Option configures an Oracle.
type Option func(*Oracle)

// WithChecker sets the checker binary (default "verifyta").
func WithChecker(path string) Option {
	return func(o *Oracle) { o.checker = path }
}

// WithRunner replaces the local process runner.
func WithRunner(r Runner) Option {
	return func(o *Oracle) { o.runner = r }
}

// WithScratchDir sets where query files are written.
func WithScratchDir(dir string) Option {
	return func(o *Oracle) { o.scratchDir = dir }
}

// WithJobs bounds concurrent checker invocations per call.
func WithJobs(n int) Option {
	return func(o *Oracle) { o.jobs = n }
}

// WithTimeout bounds each checker invocation.
func WithTimeout(d time.Duration) Option {
	return func(o *Oracle) { o.timeout = d }
}

// WithLogOutput enables logging at level ("debug", "info", "warn", "error").
func WithLogOutput(w io.Writer, level string) Option {
	return func(o *Oracle) {
		o.logger = log.New(log.Config{
			Level:       log.ParseLevel(level),
			Format:      log.FormatText,
			Output:      log.NewOutput(w),
			ServiceName: "rtcheck",
		})
	}
}

// New creates an oracle. Without options it runs "verifyta" from PATH and
// logs nothing.
func New(opts ...Option) *Oracle {
	o := &Oracle{
		checker: verify.DefaultChecker,
		runner:  verify.ProcessRunner{},
		jobs:    1,
		logger:  log.Discard(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Check translates m and checks props; with no props every declared and
// synthesized property is checked. Invalid models are an error, checker
// problems are not: they surface as Unavailable results.
func (o *Oracle) Check(ctx context.Context, m *Model, props ...string) (map[string]Status, error) {
	bundle, err := translate.NewBuilder(o.logger, "").Build(m)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := bundle.Remove(); err != nil {
			o.logger.Warn("failed to remove translation artifacts", "error", err)
		}
	}()

	v := &verify.Verifier{
		Runner:     o.runner,
		Checker:    o.checker,
		ScratchDir: o.scratchDir,
		Jobs:       o.jobs,
		Timeout:    o.timeout,
		Logger:     o.logger,
	}
	report, err := v.Verify(ctx, bundle, m.Properties, props)
	if err != nil {
		return nil, err
	}
	return report.Statuses(), nil
}

// Feasible checks props and folds the results into a verdict.
func (o *Oracle) Feasible(ctx context.Context, m *Model, props ...string) (Verdict, error) {
	statuses, err := o.Check(ctx, m, props...)
	if err != nil {
		return Unknown, err
	}
	return VerdictOf(statuses), nil
}

// LoadModel reads a task model file.
func LoadModel(path string) (*Model, error) {
	return model.LoadModel(path)
}

// ParseModel parses a task model document.
func ParseModel(data []byte) (*Model, error) {
	return model.Parse(data)
}
