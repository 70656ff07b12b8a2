package ux

import (
	"fmt"
	"os"
	"path/filepath"
)

// ModelFileNames are the file names looked for when no model is given.
var ModelFileNames = []string{"rtcheck.yaml", "rtcheck.yml", "model.yaml", "model.json"}

// DiscoverModelFile searches start and its parents, up to the enclosing git
// root, for one of ModelFileNames.
func DiscoverModelFile(start string) (string, error) {
	var found string
	err := walkUp(start, func(dir string) bool {
		for _, name := range ModelFileNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				found = path
				return true
			}
		}
		return false
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no task model found in %s or its parents (looked for %v)", start, ModelFileNames)
	}
	return found, nil
}

// DiscoverConfigFile returns the first .rtcheck/config.yaml found from the
// working directory up to the git root, else the per-user location whether
// or not it exists.
func DiscoverConfigFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	var found string
	err = walkUp(cwd, func(dir string) bool {
		path := filepath.Join(dir, DirName, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			found = path
			return true
		}
		return false
	})
	if err != nil {
		return "", err
	}
	if found != "" {
		return found, nil
	}
	return NewPathDefaults().ConfigFile(), nil
}

// walkUp calls visit on start and each parent until visit returns true, a
// directory containing .git has been visited, or the filesystem root is
// reached.
func walkUp(start string, visit func(dir string) bool) error {
	dir, err := filepath.Abs(start)
	if err != nil {
		return err
	}
	for {
		if visit(dir) {
			return nil
		}
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil
		}
		dir = parent
	}
}
