package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rtcheck/internal/log"
	"github.com/felixgeelhaar/rtcheck/internal/model"
	"github.com/felixgeelhaar/rtcheck/internal/ux"
)

// CommandContext holds the resolved global flags and configuration of one
// command invocation, so commands carry no package-level state.
type CommandContext struct {
	// Output control
	Verbose bool
	Format  string
	NoColor bool

	// Configuration
	ConfigPath string
	Config     *Config

	Logger *log.Logger
	Out    io.Writer
}

// NewCommandContext extracts global flags, loads configuration and builds
// the logger. Precedence is flag, then environment, then config file.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	flags := cmd.Flags()

	verbose, err := flags.GetBool("verbose")
	if err != nil {
		return nil, err
	}
	format, err := flags.GetString("format")
	if err != nil {
		return nil, err
	}
	noColor, err := flags.GetBool("no-color")
	if err != nil {
		return nil, err
	}
	configPath, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	logLevel, err := flags.GetString("log-level")
	if err != nil {
		return nil, err
	}
	logFormat, err := flags.GetString("log-format")
	if err != nil {
		return nil, err
	}

	if configPath == "" {
		if configPath, err = ux.DiscoverConfigFile(); err != nil {
			return nil, err
		}
	}
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	config.applyEnv()

	if format == "" {
		format = config.Output.Format
	}
	if logLevel == "" {
		logLevel = config.Logging.Level
		if verbose && logLevel == "" {
			logLevel = "info"
		}
	}
	if logFormat == "" {
		logFormat = config.Logging.Format
	}

	logConfig := log.DefaultConfig()
	if logLevel != "" {
		logConfig.Level = log.ParseLevel(logLevel)
	}
	if logFormat != "" {
		logConfig.Format = log.ParseFormat(logFormat)
	}
	logConfig.Output = log.NewOutput(cmd.ErrOrStderr())
	logger := log.New(logConfig)
	log.SetDefaultLogger(logger)

	return &CommandContext{
		Verbose:    verbose,
		Format:     format,
		NoColor:    noColor || os.Getenv("NO_COLOR") != "",
		ConfigPath: configPath,
		Config:     config,
		Logger:     logger,
		Out:        cmd.OutOrStdout(),
	}, nil
}

// Formatter returns the output formatter selected by --format.
func (c *CommandContext) Formatter() (ux.Formatter, error) {
	return ux.NewFormatter(c.Format, &ux.FormatterOptions{Writer: c.Out, NoColor: c.NoColor})
}

// Print renders result in the selected format.
func (c *CommandContext) Print(result interface{}) error {
	f, err := c.Formatter()
	if err != nil {
		return ux.EnhanceError(err)
	}
	return f.Format(result)
}

// LoadModel resolves the model argument (or discovers a model file in the
// working directory) and loads it.
func (c *CommandContext) LoadModel(args []string) (string, *model.Model, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return "", nil, err
		}
		if path, err = ux.DiscoverModelFile(cwd); err != nil {
			return "", nil, err
		}
		c.Logger.Info("using discovered model", "path", path)
	}

	m, err := model.NewFileRepository().Load(path)
	if err != nil {
		return path, nil, err
	}
	c.Logger.Debug("model loaded",
		"path", path,
		"tasks", len(m.Tasks),
		"connections", len(m.Connections),
		"properties", len(m.Properties))
	return path, m, nil
}
