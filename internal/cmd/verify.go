package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rtcheck/internal/exitcode"
	"github.com/felixgeelhaar/rtcheck/internal/log"
	"github.com/felixgeelhaar/rtcheck/internal/metrics"
	"github.com/felixgeelhaar/rtcheck/internal/translate"
	"github.com/felixgeelhaar/rtcheck/internal/tui"
	"github.com/felixgeelhaar/rtcheck/internal/ux"
	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// Summary counts results per status.
type Summary struct {
	Satisfied   int `json:"satisfied" yaml:"satisfied"`
	Violated    int `json:"violated" yaml:"violated"`
	Unavailable int `json:"unavailable" yaml:"unavailable"`
}

// VerifyOutput is the result of "rtcheck verify".
type VerifyOutput struct {
	Model     string          `json:"model" yaml:"model"`
	RunID     string          `json:"run_id" yaml:"run_id"`
	Artifacts string          `json:"artifacts,omitempty" yaml:"artifacts,omitempty"`
	Results   []verify.Result `json:"results" yaml:"results"`
	Summary   Summary         `json:"summary" yaml:"summary"`
}

// RenderText implements ux.TextRenderer.
func (o *VerifyOutput) RenderText(w io.Writer, styles ux.Styles) error {
	table := &ux.Table{Headers: []string{"PROPERTY", "STATUS", "DETAIL"}}
	for _, r := range o.Results {
		table.AddRow(r.Property, styles.Status(r.Status), styles.Muted.Render(r.Detail))
	}
	fmt.Fprint(w, table.Render(styles))
	fmt.Fprintf(w, "\n%d satisfied, %d violated, %d unavailable\n",
		o.Summary.Satisfied, o.Summary.Violated, o.Summary.Unavailable)
	if o.Artifacts != "" {
		fmt.Fprintf(w, "%s %s\n", styles.Muted.Render("Artifacts kept in"), o.Artifacts)
	}
	return nil
}

func newVerifyCommand() *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify [model]",
		Short: "Check deadline and latency properties of a task model",
		Long: `Translate a task model and check its properties with an external model
checker, one invocation per property.

Without --property every declared property is checked, followed by the
synthesized "deadline_misses==0" property. A property is satisfied,
violated, or unavailable when the checker could not decide it.

Exit codes:
  0  all checked properties satisfied
  3  at least one property violated
  4  none violated, but at least one unavailable

Examples:
  # Check everything with verifyta from PATH
  rtcheck verify scenario.yaml

  # Check two properties with four parallel checker runs
  rtcheck verify scenario.yaml -p e2e -p deadline_misses==0 --jobs 4

  # Choose properties interactively and watch progress
  rtcheck verify scenario.yaml --pick --tui`,
		Args: cobra.MaximumNArgs(1),
		RunE: runVerify,
	}

	flags := verifyCmd.Flags()
	flags.StringArrayP("property", "p", nil, "property to check (repeatable; default all)")
	flags.String("checker", "", "model checker binary (default checker.path or verifyta)")
	flags.Int("jobs", 0, "concurrent checker invocations (default checker.jobs)")
	flags.Duration("timeout", 0, "per-property checker timeout (default checker.timeout)")
	flags.Bool("keep", false, "keep the generated automata and queries")
	flags.StringP("out", "o", "", "directory for kept artifacts (implies --keep)")
	flags.String("scratch-dir", "", "directory for per-property query files")
	flags.String("manifest-dir", "", "write one run manifest per property into this directory")
	flags.String("metrics-file", "", "write Prometheus metrics of the run to this file")
	flags.Bool("pick", false, "choose properties interactively")
	flags.Bool("tui", false, "show live progress")
	return verifyCmd
}

// verifyOptions are the verify flags resolved against configuration.
type verifyOptions struct {
	properties  []string
	checker     string
	jobs        int
	timeout     time.Duration
	keep        bool
	out         string
	scratchDir  string
	manifestDir string
	metricsFile string
	pick        bool
	tui         bool
}

func resolveVerifyOptions(cmd *cobra.Command, config *Config) (*verifyOptions, error) {
	flags := cmd.Flags()
	opts := &verifyOptions{}
	opts.properties, _ = flags.GetStringArray("property")
	opts.checker, _ = flags.GetString("checker")
	opts.jobs, _ = flags.GetInt("jobs")
	opts.timeout, _ = flags.GetDuration("timeout")
	opts.keep, _ = flags.GetBool("keep")
	opts.out, _ = flags.GetString("out")
	opts.scratchDir, _ = flags.GetString("scratch-dir")
	opts.manifestDir, _ = flags.GetString("manifest-dir")
	opts.metricsFile, _ = flags.GetString("metrics-file")
	opts.pick, _ = flags.GetBool("pick")
	opts.tui, _ = flags.GetBool("tui")

	if opts.checker == "" {
		opts.checker = config.Checker.Path
	}
	if opts.jobs <= 0 {
		opts.jobs = config.Checker.Jobs
	}
	if opts.timeout == 0 {
		d, err := config.Checker.TimeoutDuration()
		if err != nil {
			return nil, err
		}
		opts.timeout = d
	}
	if opts.scratchDir == "" {
		opts.scratchDir = config.Checker.ScratchDir
	}
	if opts.manifestDir == "" {
		opts.manifestDir = config.Output.ManifestDir
	}
	if opts.out != "" || config.Output.Keep {
		opts.keep = true
	}
	return opts, nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}
	opts, err := resolveVerifyOptions(cmd, cmdCtx.Config)
	if err != nil {
		return err
	}

	path, m, err := cmdCtx.LoadModel(args)
	if err != nil {
		return ux.EnhanceError(err)
	}

	out := ""
	if opts.keep {
		out = opts.out
		if out == "" {
			out = cmdCtx.artifactDir()
		}
	}
	registry, meters := metrics.NewRegistry()
	bundle, err := translate.NewBuilder(cmdCtx.Logger, out).Build(m)
	if err != nil {
		meters.RecordTranslation(false, 0, 0)
		return ux.EnhanceError(err)
	}
	meters.RecordTranslation(true, bundle.Templates, len(bundle.Unresolved))
	if !opts.keep {
		defer func() {
			if err := bundle.Remove(); err != nil {
				cmdCtx.Logger.Warn("failed to remove artifacts", "error", err)
			}
		}()
	}

	names := opts.properties
	if len(names) == 0 {
		names = bundle.Order
		if opts.pick && tui.ShouldPrompt() {
			if names, err = tui.PickProperties(bundle.Order); err != nil {
				return err
			}
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	verifier := verify.NewVerifier(opts.checker, cmdCtx.Logger)
	verifier.Jobs = opts.jobs
	verifier.Timeout = opts.timeout
	verifier.ScratchDir = opts.scratchDir
	verifier.ManifestDir = opts.manifestDir
	verifier.Metrics = meters

	var progress *tui.Adapter
	if opts.tui && tui.IsInteractive() {
		progress = tui.NewAdapter(path, names, cmd.ErrOrStderr(), cancel)
		verifier.Logger = log.Discard()
		verifier.OnResult = progress.OnResult
		progress.Start()
	}

	report, verr := verifier.Verify(ctx, bundle, m.Properties, names)
	if progress != nil {
		aborted, err := progress.Finish()
		if err != nil {
			cmdCtx.Logger.Warn("progress view failed", "error", err)
		}
		if aborted {
			return &exitcode.StatusError{Code: exitcode.Interrupted, Message: "verification aborted"}
		}
	}
	if verr != nil {
		return verr
	}
	if opts.metricsFile != "" {
		if err := metrics.WriteTextfile(opts.metricsFile, registry); err != nil {
			cmdCtx.Logger.Warn("metrics not written", "error", err)
		}
	}

	output := &VerifyOutput{Model: path, RunID: report.RunID, Results: report.Results}
	if opts.keep {
		output.Artifacts = out
	}
	counts := report.Counts()
	output.Summary = Summary{
		Satisfied:   counts[verify.Satisfied],
		Violated:    counts[verify.Violated],
		Unavailable: counts[verify.Unavailable],
	}
	if err := cmdCtx.Print(output); err != nil {
		return err
	}

	switch {
	case report.AnyViolated():
		return &exitcode.StatusError{
			Code:    exitcode.PropertyViolated,
			Message: fmt.Sprintf("%d of %d properties violated", output.Summary.Violated, len(report.Results)),
		}
	case report.AnyUnavailable():
		return &exitcode.StatusError{
			Code:    exitcode.CheckUnavailable,
			Message: fmt.Sprintf("%d of %d properties could not be checked", output.Summary.Unavailable, len(report.Results)),
		}
	}
	return nil
}
