package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rtcheck/internal/translate"
	"github.com/felixgeelhaar/rtcheck/internal/ux"
)

// BuildOutput is the result of "rtcheck build".
type BuildOutput struct {
	Model       string     `json:"model" yaml:"model"`
	Hash        string     `json:"hash" yaml:"hash"`
	ModelPath   string     `json:"model_path" yaml:"model_path"`
	QueriesPath string     `json:"queries_path" yaml:"queries_path"`
	Properties  []QueryRow `json:"properties" yaml:"properties"`
}

// RenderText implements ux.TextRenderer.
func (o *BuildOutput) RenderText(w io.Writer, styles ux.Styles) error {
	fmt.Fprintf(w, "%s %s\n", styles.Header.Render("Automata:"), o.ModelPath)
	fmt.Fprintf(w, "%s  %s\n\n", styles.Header.Render("Queries:"), o.QueriesPath)
	_, err := fmt.Fprint(w, queryTable(o.Properties, styles))
	return err
}

func newBuildCommand() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build [model]",
		Short: "Translate a task model into timed automata",
		Long: `Translate a task model into a UPPAAL timed-automata network and write
two artifacts named after the model's content hash:

  <hash>.xml           the automata network
  <hash>.queries.yaml  property name to query, in verification order

Examples:
  # Translate into ~/.rtcheck/artifacts
  rtcheck build scenario.yaml

  # Translate into a chosen directory
  rtcheck build scenario.yaml --out build/`,
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
	buildCmd.Flags().StringP("out", "o", "", "artifact directory (default output.dir or ~/.rtcheck/artifacts)")
	return buildCmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = cmdCtx.artifactDir()
	}

	path, m, err := cmdCtx.LoadModel(args)
	if err != nil {
		return ux.EnhanceError(err)
	}

	bundle, err := translate.NewBuilder(cmdCtx.Logger, out).Build(m)
	if err != nil {
		return ux.EnhanceError(err)
	}

	return cmdCtx.Print(&BuildOutput{
		Model:       path,
		Hash:        bundle.Hash,
		ModelPath:   bundle.ModelPath,
		QueriesPath: bundle.QueriesPath,
		Properties:  queryRows(bundle.Order, bundle.Queries, bundle.Classified),
	})
}

// artifactDir is where kept translations go when no directory is given.
func (c *CommandContext) artifactDir() string {
	if c.Config.Output.Dir != "" {
		return c.Config.Output.Dir
	}
	return ux.NewPathDefaults().ArtifactDir()
}
