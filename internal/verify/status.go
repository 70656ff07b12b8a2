// Package verify runs an external model checker over translated models and
// classifies its verdicts.
package verify

import (
	"fmt"
	"strings"
	"time"
)

// Status is the outcome of checking one property.
type Status int

const (
	// Unavailable means the property could not be checked at all.
	Unavailable Status = iota
	// Satisfied means the checker reported the formula as satisfied.
	Satisfied
	// Violated means the checker ran and did not report satisfaction.
	Violated
)

func (s Status) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case Violated:
		return "violated"
	default:
		return "unavailable"
	}
}

// ParseStatus parses a status name.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "satisfied":
		return Satisfied, nil
	case "violated":
		return Violated, nil
	case "unavailable":
		return Unavailable, nil
	}
	return Unavailable, fmt.Errorf("unknown status %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

var satisfiedMarkers = []string{"formula is satisfied", "pass"}

// Classify maps checker output to a verdict. Any output without a
// satisfaction marker counts as a violation.
func Classify(output string) Status {
	lower := strings.ToLower(output)
	for _, marker := range satisfiedMarkers {
		if strings.Contains(lower, marker) {
			return Satisfied
		}
	}
	return Violated
}

// Result is the verdict for one property.
type Result struct {
	Property string        `json:"property" yaml:"property"`
	Query    string        `json:"query,omitempty" yaml:"query,omitempty"`
	Status   Status        `json:"status" yaml:"status"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	Output   string        `json:"-" yaml:"-"`
	Duration time.Duration `json:"-" yaml:"-"`
}

// Report collects the results of one verification run in request order.
type Report struct {
	RunID   string   `json:"run_id" yaml:"run_id"`
	Results []Result `json:"results" yaml:"results"`
}

// Lookup returns the status of a property; properties that were not part of
// the run are Unavailable.
func (r *Report) Lookup(name string) Status {
	for _, res := range r.Results {
		if res.Property == name {
			return res.Status
		}
	}
	return Unavailable
}

// Statuses returns property name to status.
func (r *Report) Statuses() map[string]Status {
	out := make(map[string]Status, len(r.Results))
	for _, res := range r.Results {
		out[res.Property] = res.Status
	}
	return out
}

// AllSatisfied reports whether every result is Satisfied.
func (r *Report) AllSatisfied() bool {
	for _, res := range r.Results {
		if res.Status != Satisfied {
			return false
		}
	}
	return true
}

// AnyViolated reports whether some result is Violated.
func (r *Report) AnyViolated() bool {
	return r.any(Violated)
}

// AnyUnavailable reports whether some result is Unavailable.
func (r *Report) AnyUnavailable() bool {
	return r.any(Unavailable)
}

func (r *Report) any(s Status) bool {
	for _, res := range r.Results {
		if res.Status == s {
			return true
		}
	}
	return false
}

// Counts tallies results per status.
func (r *Report) Counts() map[Status]int {
	counts := map[Status]int{Satisfied: 0, Violated: 0, Unavailable: 0}
	for _, res := range r.Results {
		counts[res.Status]++
	}
	return counts
}
