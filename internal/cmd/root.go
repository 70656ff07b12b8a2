// Package cmd implements the rtcheck command line.
package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree. Each call returns an independent
// tree so tests do not share flag state.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rtcheck",
		Short: "Timing verification of real-time task models",
		Long: `rtcheck translates a real-time task model (periodic and event-driven tasks,
connections with latency budgets, fixed-priority scheduling groups) into a
network of timed automata and checks deadline and end-to-end latency
properties with an external model checker such as UPPAAL's verifyta.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is $HOME/.rtcheck/config.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("format", "", "output format: text, json or yaml")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("verbose", "v", false, "log progress (same as --log-level info)")

	root.AddCommand(
		newBuildCommand(),
		newQueriesCommand(),
		newVerifyCommand(),
		newDoctorCommand(),
		newConfigCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with a cancellable context.
func ExecuteContext(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}
