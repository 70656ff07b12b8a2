package verify

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/rtcheck/internal/errors"
	"github.com/felixgeelhaar/rtcheck/internal/log"
	"github.com/felixgeelhaar/rtcheck/internal/metrics"
	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/property"
	"github.com/felixgeelhaar/rtcheck/internal/translate"
)

// Verifier checks properties of a persisted translation one checker
// invocation at a time. Properties are independent; Jobs only bounds how
// many invocations run concurrently.
type Verifier struct {
	Runner      Runner
	Checker     string
	ScratchDir  string
	Jobs        int
	Timeout     time.Duration
	ManifestDir string
	Logger      *log.Logger
	Metrics     *metrics.Metrics
	// OnResult is called once per finished property, never concurrently.
	OnResult func(Result)
}

// NewVerifier creates a verifier running checker as a local process.
func NewVerifier(checker string, logger *log.Logger) *Verifier {
	return &Verifier{Runner: ProcessRunner{}, Checker: checker, Jobs: 1, Logger: logger}
}

// Verify checks names against bundle. With no names every property of the
// bundle is checked, declared ones first. A name without a resolved query
// falls back to the declared raw text under an always-quantifier; a name
// that is neither resolved nor declared is Unavailable.
func (v *Verifier) Verify(ctx context.Context, bundle *translate.Bundle, declared []model.Property, names []string) (*Report, error) {
	if len(names) == 0 {
		names = bundle.Order
	}

	report := &Report{RunID: uuid.NewString(), Results: make([]Result, len(names))}
	logger := log.OrDefault(v.Logger).With("run", report.RunID)

	scratch := v.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	} else if err := os.MkdirAll(scratch, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeDirectoryFailed, fmt.Sprintf("failed to create %s", scratch), err)
	}

	run := &check{
		v:        v,
		runID:    report.RunID,
		bundle:   bundle,
		declared: model.Properties(declared),
		scratch:  scratch,
		logger:   logger,
	}

	jobs := v.Jobs
	if jobs < 1 {
		jobs = 1
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(jobs)
	for i, name := range names {
		g.Go(func() error {
			res := run.property(ctx, name)
			report.Results[i] = res
			if v.OnResult != nil {
				mu.Lock()
				v.OnResult(res)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	counts := report.Counts()
	logger.Info("verification finished",
		"properties", len(names),
		"satisfied", counts[Satisfied],
		"violated", counts[Violated],
		"unavailable", counts[Unavailable])

	return report, ctx.Err()
}

// check holds the state shared by the invocations of one run.
type check struct {
	v        *Verifier
	runID    string
	bundle   *translate.Bundle
	declared model.Properties
	scratch  string
	logger   *log.Logger
}

func (c *check) resolve(name string) (string, bool) {
	if q, ok := c.bundle.Query(name); ok {
		return q, true
	}
	if p, ok := c.declared.Get(name); ok {
		return property.EnsureQuantified(p.Text), true
	}
	return "", false
}

func (c *check) property(ctx context.Context, name string) Result {
	res := Result{Property: name}
	logger := c.logger.With("property", name)

	query, ok := c.resolve(name)
	if !ok {
		res.Detail = "unknown property"
		logger.Warn("property is neither resolved nor declared")
		return res
	}
	res.Query = query

	checkID := uuid.NewString()
	queryPath := filepath.Join(c.scratch, "rtcheck-"+checkID+".q")
	if err := os.WriteFile(queryPath, []byte(query+"\n"), 0600); err != nil {
		res.Detail = errors.NewFileWriteError(queryPath, err).Error()
		logger.Warn("failed to write query file", "error", err)
		return res
	}
	defer func() {
		if err := os.Remove(queryPath); err != nil && !os.IsNotExist(err) {
			logger.Warn("failed to remove query file", "path", queryPath, "error", err)
		}
	}()

	runner := c.v.Runner
	if runner == nil {
		runner = ProcessRunner{}
	}
	binary := c.v.Checker
	if binary == "" {
		binary = DefaultChecker
	}
	req := RunRequest{Binary: binary, ModelPath: c.bundle.ModelPath, QueryPath: queryPath, Timeout: c.v.Timeout}

	startTime := time.Now()
	out, err := runner.Run(ctx, req)
	res.Duration = time.Since(startTime)

	switch {
	case err != nil && (stderrors.Is(err, ErrCheckerNotFound) || errors.HasCode(err, errors.ErrCodeCheckerNotFound)):
		res.Detail = fmt.Sprintf("checker %q not found", binary)
		logger.Warn("checker not found", "checker", binary)
	case err != nil:
		res.Detail = err.Error()
		logger.Warn("checker failed", "error", err)
	default:
		res.Status = Classify(out.Output)
		res.Output = out.Output
		if out.Duration > 0 {
			res.Duration = out.Duration
		}
		logger.Info("property checked", "status", res.Status, "duration", res.Duration)
	}

	if m := c.v.Metrics; m != nil {
		m.RecordCheckerRun(res.Status.String(), res.Duration.Seconds())
		var coded *errors.CheckError
		if stderrors.As(err, &coded) {
			m.RecordError(string(coded.Code), "verify")
		}
	}
	if c.v.ManifestDir != "" {
		c.saveManifest(checkID, req, out, res)
	}
	return res
}

func (c *check) saveManifest(checkID string, req RunRequest, out *RunResult, res Result) {
	m := CreateManifest(c.runID, checkID, req, out, res)
	for name, path := range map[string]string{"model": req.ModelPath, "query": req.QueryPath} {
		if err := m.AddInputHash(name, path); err != nil {
			c.logger.Debug("input not hashed", "input", name, "error", err)
		}
	}
	if _, err := SaveManifest(m, c.v.ManifestDir); err != nil {
		c.logger.Warn("failed to save manifest", "error", err)
	}
}
