package verify

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Manifest is the audit record of one checker invocation.
type Manifest struct {
	Timestamp   time.Time         `json:"timestamp"`
	RunID       string            `json:"run_id"`
	CheckID     string            `json:"check_id"`
	Property    string            `json:"property"`
	Query       string            `json:"query"`
	Command     []string          `json:"command"`
	ExitCode    int               `json:"exit_code"`
	Duration    string            `json:"duration"`
	Status      Status            `json:"status"`
	Detail      string            `json:"detail,omitempty"`
	InputHashes map[string]string `json:"input_hashes"`
}

// CreateManifest records a finished check.
func CreateManifest(runID, checkID string, req RunRequest, run *RunResult, res Result) *Manifest {
	m := &Manifest{
		Timestamp:   time.Now(),
		RunID:       runID,
		CheckID:     checkID,
		Property:    res.Property,
		Query:       res.Query,
		Command:     req.Command(),
		ExitCode:    -1,
		Duration:    res.Duration.String(),
		Status:      res.Status,
		Detail:      res.Detail,
		InputHashes: make(map[string]string),
	}
	if run != nil {
		m.ExitCode = run.ExitCode
	}
	return m
}

// SaveManifest writes the manifest as <timestamp>_<check id>.json into dir.
func SaveManifest(m *Manifest, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("create manifest directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.json", m.Timestamp.Format("20060102_150405"), m.CheckID)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("write manifest: %w", err)
	}
	return path, nil
}

// HashFile computes the blake3 hash of a file.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	hasher := blake3.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

// AddInputHash records the hash of an input file under name.
func (m *Manifest) AddInputHash(name, path string) error {
	hash, err := HashFile(path)
	if err != nil {
		return err
	}
	m.InputHashes[name] = hash
	return nil
}
