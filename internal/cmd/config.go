package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rtcheck/internal/tui"
	"github.com/felixgeelhaar/rtcheck/internal/ux"
	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// Config is the rtcheck configuration file.
type Config struct {
	Checker CheckerConfig `yaml:"checker" json:"checker"`
	Output  OutputConfig  `yaml:"output" json:"output"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// CheckerConfig controls model checker invocations.
type CheckerConfig struct {
	Path       string `yaml:"path" json:"path"`
	Jobs       int    `yaml:"jobs" json:"jobs"`
	Timeout    string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	ScratchDir string `yaml:"scratch_dir,omitempty" json:"scratch_dir,omitempty"`
}

// OutputConfig controls where artifacts and manifests go.
type OutputConfig struct {
	Dir         string `yaml:"dir,omitempty" json:"dir,omitempty"`
	Keep        bool   `yaml:"keep" json:"keep"`
	ManifestDir string `yaml:"manifest_dir,omitempty" json:"manifest_dir,omitempty"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`
	Format string `yaml:"format,omitempty" json:"format,omitempty"`
}

// TimeoutDuration parses checker.timeout; empty means no timeout.
func (c CheckerConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid checker.timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

func defaultConfig() *Config {
	return &Config{
		Checker: CheckerConfig{Path: verify.DefaultChecker, Jobs: 1},
		Output:  OutputConfig{Format: "text"},
		Logging: LoggingConfig{Format: "text"},
	}
}

// loadConfig reads path over the defaults. A missing file yields the
// defaults.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if config.Checker.Jobs < 1 {
		config.Checker.Jobs = 1
	}
	return config, nil
}

// saveConfig saves the configuration to the file
func saveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnv overlays RTCHECK_CHECKER and RTCHECK_LOG_LEVEL.
func (c *Config) applyEnv() {
	if v := os.Getenv("RTCHECK_CHECKER"); v != "" {
		c.Checker.Path = v
	}
	if v := os.Getenv("RTCHECK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or edit rtcheck configuration",
		Long: `Manage rtcheck configuration stored at ~/.rtcheck/config.yaml, or at
.rtcheck/config.yaml in the enclosing project.

Examples:
  # View current configuration
  rtcheck config view

  # Write a default configuration
  rtcheck config init

  # Get or set a specific value
  rtcheck config get checker.path
  rtcheck config set checker.jobs 4
`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		RunE:  runConfigInit,
	}
	initCmd.Flags().Bool("force", false, "overwrite an existing configuration")

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "view",
			Short: "Display current configuration",
			RunE:  runConfigView,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show configuration file path",
			RunE:  runConfigPath,
		},
		initCmd,
		&cobra.Command{
			Use:   "get <key>",
			Short: "Get a specific configuration value",
			Long:  `Retrieve the value of a configuration key using dot notation (e.g., checker.path).`,
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigGet,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a specific configuration value",
			Long:  `Set the value of a configuration key using dot notation (e.g., checker.jobs 4).`,
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
	)
	return configCmd
}

func runConfigView(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	if cmdCtx.Format == "json" || cmdCtx.Format == "yaml" {
		return cmdCtx.Print(cmdCtx.Config)
	}

	data, err := yaml.Marshal(cmdCtx.Config)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmdCtx.Out, "Configuration file: %s\n\n%s", cmdCtx.ConfigPath, data)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}
	fmt.Fprintln(cmdCtx.Out, cmdCtx.ConfigPath)
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(cmdCtx.ConfigPath); err == nil && !force {
		if !tui.ShouldPrompt() {
			return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", cmdCtx.ConfigPath)
		}
		ok, err := tui.PromptForConfirmation(fmt.Sprintf("Overwrite %s?", cmdCtx.ConfigPath), false)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmdCtx.Out, "Configuration unchanged")
			return nil
		}
	}

	if err := saveConfig(defaultConfig(), cmdCtx.ConfigPath); err != nil {
		return ux.FormatError(err, "saving configuration")
	}
	fmt.Fprintf(cmdCtx.Out, "✓ Wrote %s\n", cmdCtx.ConfigPath)
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}

	value, err := getNestedValue(cmdCtx.Config, args[0])
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}
	fmt.Fprintln(cmdCtx.Out, value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return fmt.Errorf("failed to create command context: %w", err)
	}
	key, value := args[0], args[1]

	// Reload without env overrides so they are not persisted.
	config, err := loadConfig(cmdCtx.ConfigPath)
	if err != nil {
		return ux.FormatError(err, "loading configuration")
	}
	if err := setNestedValue(config, key, value); err != nil {
		return fmt.Errorf("failed to set value: %w", err)
	}
	if err := saveConfig(config, cmdCtx.ConfigPath); err != nil {
		return ux.FormatError(err, "saving configuration")
	}

	fmt.Fprintf(cmdCtx.Out, "✓ Set %s = %s\n", key, value)
	return nil
}

// getNestedValue retrieves a value from the config using dot notation
func getNestedValue(config *Config, key string) (string, error) {
	switch key {
	case "checker.path":
		return config.Checker.Path, nil
	case "checker.jobs":
		return strconv.Itoa(config.Checker.Jobs), nil
	case "checker.timeout":
		return config.Checker.Timeout, nil
	case "checker.scratch_dir":
		return config.Checker.ScratchDir, nil
	case "output.dir":
		return config.Output.Dir, nil
	case "output.keep":
		return strconv.FormatBool(config.Output.Keep), nil
	case "output.manifest_dir":
		return config.Output.ManifestDir, nil
	case "output.format":
		return config.Output.Format, nil
	case "logging.level":
		return config.Logging.Level, nil
	case "logging.format":
		return config.Logging.Format, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// setNestedValue sets a value in the config using dot notation
func setNestedValue(config *Config, key, value string) error {
	switch key {
	case "checker.path":
		config.Checker.Path = value
	case "checker.jobs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return err
		}
		if n < 1 {
			return fmt.Errorf("checker.jobs must be at least 1, got %d", n)
		}
		config.Checker.Jobs = n
	case "checker.timeout":
		if _, err := (CheckerConfig{Timeout: value}).TimeoutDuration(); err != nil {
			return err
		}
		config.Checker.Timeout = value
	case "checker.scratch_dir":
		config.Checker.ScratchDir = value
	case "output.dir":
		config.Output.Dir = value
	case "output.keep":
		config.Output.Keep = parseBool(value)
	case "output.manifest_dir":
		config.Output.ManifestDir = value
	case "output.format":
		config.Output.Format = value
	case "logging.level":
		config.Logging.Level = value
	case "logging.format":
		config.Logging.Format = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func parseBool(s string) bool {
	s = strings.ToLower(s)
	return s == "true" || s == "yes" || s == "1"
}
