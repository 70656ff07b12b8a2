package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirName is the per-user and per-project rtcheck directory.
const DirName = ".rtcheck"

// PathDefaults provides defaults for the files rtcheck keeps between runs.
type PathDefaults struct {
	Dir string
}

// NewPathDefaults roots defaults in ~/.rtcheck, or ./.rtcheck when the home
// directory is unknown.
func NewPathDefaults() *PathDefaults {
	if home, err := os.UserHomeDir(); err == nil {
		return &PathDefaults{Dir: filepath.Join(home, DirName)}
	}
	return &PathDefaults{Dir: DirName}
}

// ConfigFile returns the default path to config.yaml
func (pd *PathDefaults) ConfigFile() string {
	return filepath.Join(pd.Dir, "config.yaml")
}

// ManifestDir returns the default run manifest directory
func (pd *PathDefaults) ManifestDir() string {
	return filepath.Join(pd.Dir, "runs")
}

// ArtifactDir returns the default directory for kept translations
func (pd *PathDefaults) ArtifactDir() string {
	return filepath.Join(pd.Dir, "artifacts")
}

// ValidateRequiredFile checks if a required file exists and provides helpful error
func ValidateRequiredFile(path string, fileType string, hint string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found at: %s\n\n%s", fileType, path, hint)
	} else if err != nil {
		return fmt.Errorf("error accessing %s: %w", path, err)
	}
	return nil
}
