package model

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rtcheck/internal/duration"
	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// Repository defines the interface for loading and saving task models.
type Repository interface {
	// Load reads a Model from a file
	Load(path string) (*Model, error)

	// Save writes a Model to a file
	Save(m *Model, path string) error
}

// FileRepository implements Repository for YAML and JSON files.
// JSON is a subset of YAML, so one decoder serves both.
type FileRepository struct{}

// NewFileRepository creates a new file-based model repository
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// Load reads and validates a Model.
func (r *FileRepository) Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewModelNotFoundError(path)
		}
		return nil, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read model %s", path), err)
	}

	m, err := Parse(data)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeModelInvalid) || errors.HasCode(err, errors.ErrCodeModelDuplicateName) {
			return nil, err
		}
		return nil, errors.NewModelUnmarshalError(path, err)
	}
	return m, nil
}

// Save writes a Model in canonical form.
func (r *FileRepository) Save(m *Model, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeDirectoryFailed, "failed to create model directory", err)
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return errors.Wrap(errors.ErrCodeModelMarshal, "failed to marshal model", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewFileWriteError(path, err)
	}
	return nil
}

// Parse decodes a model document and validates it.
func Parse(data []byte) (*Model, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	m, err := doc.toModel()
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

var defaultRepository = NewFileRepository()

// LoadModel reads a Model using the default repository.
func LoadModel(path string) (*Model, error) {
	return defaultRepository.Load(path)
}

var _ Repository = (*FileRepository)(nil)

// document is the on-disk shape, including the spellings written by older
// front ends.
type document struct {
	System      string                `yaml:"system"`
	Components  []rawTask             `yaml:"components"`
	Connections []rawConnection       `yaml:"connections"`
	Properties  Properties            `yaml:"properties"`
	Vehicles    map[string]rawVehicle `yaml:"vehicles"`
}

type rawVehicle struct {
	Components []string `yaml:"components"`
}

type rawTask struct {
	Name     string           `yaml:"name"`
	Period   *duration.Millis `yaml:"period"`
	Deadline *duration.Millis `yaml:"deadline"`
	WCET     *duration.Millis `yaml:"wcet"`
	Priority *int             `yaml:"priority"`
	Vehicle  string           `yaml:"vehicle"`

	PeriodMS   *duration.Millis `yaml:"period_ms"`
	DeadlineMS *duration.Millis `yaml:"deadline_ms"`
	WCETMS     *duration.Millis `yaml:"wcet_ms"`
}

type rawConnection struct {
	Name string `yaml:"name"`
	Src  string `yaml:"src"`
	Dst  string `yaml:"dst"`

	LatencyBudgetMS      *duration.Millis `yaml:"latency_budget_ms"`
	LatencyBudget        *duration.Millis `yaml:"latency_budget"`
	LatencyBudgetMSCamel *duration.Millis `yaml:"latencyBudgetMs"`
	LatencyBudgetCamel   *duration.Millis `yaml:"latencyBudget"`
	Attributes           struct {
		LatencyBudget *duration.Millis `yaml:"latency_budget"`
	} `yaml:"attributes"`
}

// toModel applies the vehicles section. A component may be listed under at
// most one vehicle, and that vehicle must agree with its own vehicle field.
func (d *document) toModel() (*Model, error) {
	vehicles := make([]string, 0, len(d.Vehicles))
	for vehicle := range d.Vehicles {
		vehicles = append(vehicles, vehicle)
	}
	sort.Strings(vehicles)

	owner := make(map[string]string)
	for _, vehicle := range vehicles {
		for _, comp := range d.Vehicles[vehicle].Components {
			if prev, ok := owner[comp]; ok && prev != vehicle {
				return nil, errors.NewModelInvalidError(
					fmt.Sprintf("component %q is listed under vehicles %q and %q", comp, prev, vehicle))
			}
			owner[comp] = vehicle
		}
	}

	m := &Model{
		System:     d.System,
		Tasks:      make([]Task, 0, len(d.Components)),
		Properties: d.Properties,
	}
	for _, rt := range d.Components {
		t := migrateTask(rt)
		if listed, ok := owner[t.Name]; ok {
			if t.Vehicle != "" && t.Vehicle != listed {
				return nil, errors.NewModelInvalidError(
					fmt.Sprintf("component %q declares vehicle %q but is listed under vehicle %q", t.Name, t.Vehicle, listed))
			}
			t.Vehicle = listed
		}
		m.Tasks = append(m.Tasks, t)
	}
	for _, rc := range d.Connections {
		m.Connections = append(m.Connections, migrateConnection(rc))
	}
	return m, nil
}

func migrateTask(rt rawTask) Task {
	return Task{
		Name:     rt.Name,
		Period:   firstDuration(rt.Period, rt.PeriodMS),
		Deadline: firstDuration(rt.Deadline, rt.DeadlineMS),
		WCET:     firstDuration(rt.WCET, rt.WCETMS),
		Priority: rt.Priority,
		Vehicle:  rt.Vehicle,
	}
}

// migrateConnection folds the legacy latency spellings into LatencyBudget.
// The first one present wins.
func migrateConnection(rc rawConnection) Connection {
	return Connection{
		Name: rc.Name,
		Src:  rc.Src,
		Dst:  rc.Dst,
		LatencyBudget: firstDuration(
			rc.LatencyBudgetMS,
			rc.LatencyBudget,
			rc.LatencyBudgetMSCamel,
			rc.LatencyBudgetCamel,
			rc.Attributes.LatencyBudget,
		),
	}
}

func firstDuration(candidates ...*duration.Millis) *duration.Millis {
	for _, c := range candidates {
		if c != nil {
			return c
		}
	}
	return nil
}
