package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rtcheck/internal/health"
	"github.com/felixgeelhaar/rtcheck/internal/ux"
)

// DoctorCheck is one named health result.
type DoctorCheck struct {
	Name    string                 `json:"name" yaml:"name"`
	Status  health.Status          `json:"status" yaml:"status"`
	Message string                 `json:"message" yaml:"message"`
	Details map[string]interface{} `json:"details,omitempty" yaml:"details,omitempty"`
}

// DoctorOutput is the result of "rtcheck doctor".
type DoctorOutput struct {
	Status health.Status `json:"status" yaml:"status"`
	Checks []DoctorCheck `json:"checks" yaml:"checks"`
}

// RenderText implements ux.TextRenderer.
func (o *DoctorOutput) RenderText(w io.Writer, styles ux.Styles) error {
	table := &ux.Table{Headers: []string{"CHECK", "STATUS", "MESSAGE"}}
	for _, c := range o.Checks {
		status := c.Status.String()
		switch c.Status {
		case health.StatusHealthy:
			status = styles.Satisfied.Render(status)
		case health.StatusUnhealthy:
			status = styles.Violated.Render(status)
		default:
			status = styles.Unavailable.Render(status)
		}
		msg := c.Message
		if s, ok := c.Details["suggestion"].(string); ok {
			msg += styles.Muted.Render(" (" + s + ")")
		}
		table.AddRow(c.Name, status, msg)
	}
	_, err := fmt.Fprint(w, table.Render(styles))
	return err
}

func newDoctorCommand() *cobra.Command {
	doctorCmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that verification can run in this environment",
		Long: `Check that the configured model checker can be started and that the
scratch, manifest and artifact directories accept files.

Exits with status 1 when any check is unhealthy.`,
		Args: cobra.NoArgs,
		RunE: runDoctor,
	}
	doctorCmd.Flags().String("checker", "", "model checker binary (default checker.path or verifyta)")
	return doctorCmd
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	checker, _ := cmd.Flags().GetString("checker")
	if checker == "" {
		checker = cmdCtx.Config.Checker.Path
	}
	scratch := cmdCtx.Config.Checker.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}

	manager := health.NewManager()
	manager.AddChecker(health.NewBinaryChecker(checker))
	manager.AddChecker(health.NewDirectoryChecker("scratch-dir", scratch))
	if dir := cmdCtx.Config.Output.ManifestDir; dir != "" {
		manager.AddChecker(health.NewDirectoryChecker("manifest-dir", dir))
	}
	if cmdCtx.Config.Output.Keep {
		manager.AddChecker(health.NewDirectoryChecker("artifact-dir", cmdCtx.artifactDir()))
	}

	results := manager.Check(cmd.Context())
	output := &DoctorOutput{Status: health.OverallStatus(results)}
	for _, name := range manager.CheckNames() {
		r := results[name]
		output.Checks = append(output.Checks, DoctorCheck{Name: name, Status: r.Status, Message: r.Message, Details: r.Details})
		cmdCtx.Logger.Debug("health check", "check", name, "status", r.Status, "latency", r.Latency)
	}

	if err := cmdCtx.Print(output); err != nil {
		return err
	}
	if output.Status == health.StatusUnhealthy {
		return fmt.Errorf("environment is unhealthy")
	}
	return nil
}
