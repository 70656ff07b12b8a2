package health

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// BinaryChecker checks that the model checker can be found and started.
type BinaryChecker struct {
	binary string
}

// NewBinaryChecker creates a checker for binary, a name on PATH or a path.
func NewBinaryChecker(binary string) *BinaryChecker {
	return &BinaryChecker{binary: binary}
}

// Name returns the name of this health check.
func (c *BinaryChecker) Name() string {
	return "model-checker"
}

// Check locates the binary and asks it for its version with -v. A binary
// that cannot be located is unhealthy; one that runs but prints no version
// is degraded.
func (c *BinaryChecker) Check(ctx context.Context) *Result {
	if err := verify.ValidateChecker(c.binary); err != nil {
		return Unhealthy("model checker not found").
			WithDetail("checker", c.binary).
			WithDetail("suggestion", "Install UPPAAL and pass verifyta with --checker or RTCHECK_CHECKER")
	}
	path, _ := exec.LookPath(c.binary)

	output, err := exec.CommandContext(ctx, path, "-v").CombinedOutput()
	version := firstLine(string(output))
	if err != nil || version == "" {
		result := Degraded("model checker found but version unknown").WithDetail("path", path)
		if err != nil {
			result.WithDetail("error", err.Error())
		}
		return result
	}

	return Healthy("model checker available").
		WithDetail("path", path).
		WithDetail("version", version)
}

// DirectoryChecker checks that files can be created in a directory,
// creating the directory if needed.
type DirectoryChecker struct {
	name string
	dir  string
}

// NewDirectoryChecker creates a checker named name for dir.
func NewDirectoryChecker(name, dir string) *DirectoryChecker {
	return &DirectoryChecker{name: name, dir: dir}
}

// Name returns the name of this health check.
func (c *DirectoryChecker) Name() string {
	return c.name
}

// Check creates and removes a probe file in the directory.
func (c *DirectoryChecker) Check(ctx context.Context) *Result {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return Unhealthy("directory cannot be created").
			WithDetail("dir", c.dir).
			WithDetail("error", err.Error())
	}
	f, err := os.CreateTemp(c.dir, ".rtcheck-probe-*")
	if err != nil {
		return Unhealthy("directory is not writable").
			WithDetail("dir", c.dir).
			WithDetail("error", err.Error())
	}
	name := f.Name()
	f.Close()
	if err := os.Remove(name); err != nil {
		return Degraded("probe file could not be removed").
			WithDetail("dir", c.dir).
			WithDetail("error", err.Error())
	}
	return Healthy("writable").WithDetail("dir", c.dir)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
