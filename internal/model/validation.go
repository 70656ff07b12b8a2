package model

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/rtcheck/internal/domain"
	"github.com/felixgeelhaar/rtcheck/internal/duration"
	"github.com/felixgeelhaar/rtcheck/internal/errors"
)

// Validate checks the model against the rules every generator relies on.
// A model that fails here must not be translated.
func (m *Model) Validate() error {
	if m == nil {
		return errors.NewModelInvalidError("model is nil")
	}

	seen := make(map[string]int, len(m.Tasks))
	for i, t := range m.Tasks {
		if err := t.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeModelInvalid, fmt.Sprintf("component at index %d is invalid", i), err)
		}
		if prev, dup := seen[t.Name]; dup {
			return errors.New(errors.ErrCodeModelDuplicateName,
				fmt.Sprintf("component %q declared twice (index %d and %d)", t.Name, prev, i))
		}
		seen[t.Name] = i
	}

	prefixes := make(map[string]string)
	for _, t := range m.Tasks {
		prefix := domain.GroupPrefix(t.Vehicle)
		if label, ok := prefixes[prefix]; ok && label != t.Vehicle {
			return errors.NewModelInvalidError(
				fmt.Sprintf("vehicles %q and %q map to the same scheduling group %q", label, t.Vehicle, prefix))
		}
		prefixes[prefix] = t.Vehicle
	}

	for i, c := range m.Connections {
		if err := c.Validate(); err != nil {
			return errors.Wrap(errors.ErrCodeModelInvalid, fmt.Sprintf("connection at index %d is invalid", i), err)
		}
	}

	names := make(map[string]bool, len(m.Properties))
	for i, p := range m.Properties {
		if strings.TrimSpace(p.Name) == "" {
			return errors.NewModelInvalidError(fmt.Sprintf("property at index %d has no name", i))
		}
		if names[p.Name] {
			return errors.New(errors.ErrCodeModelDuplicateName, fmt.Sprintf("property %q declared twice", p.Name))
		}
		names[p.Name] = true
	}

	return nil
}

// Validate checks a single task.
func (t *Task) Validate() error {
	if _, err := domain.NewIdentifier(t.Name); err != nil {
		return fmt.Errorf("invalid component name: %w", err)
	}
	if t.Period != nil && *t.Period <= 0 {
		return fmt.Errorf("component %s: period must be positive, got %s", t.Name, t.Period)
	}
	if err := nonNegative(t.Name, "deadline", t.Deadline); err != nil {
		return err
	}
	return nonNegative(t.Name, "wcet", t.WCET)
}

// Validate checks a single connection.
func (c *Connection) Validate() error {
	if strings.TrimSpace(c.Src) == "" {
		return fmt.Errorf("connection %q: src cannot be empty", c.Name)
	}
	if strings.TrimSpace(c.Dst) == "" {
		return fmt.Errorf("connection %q: dst cannot be empty", c.Name)
	}
	return nonNegative(c.Name, "latency budget", c.LatencyBudget)
}

func nonNegative(owner, field string, v *duration.Millis) error {
	if v != nil && *v < 0 {
		return fmt.Errorf("%s: %s cannot be negative, got %s", owner, field, v)
	}
	return nil
}
