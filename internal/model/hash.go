package model

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/felixgeelhaar/rtcheck/internal/duration"
)

// Canonicalize returns a canonical JSON rendering of the model with stable
// key ordering for consistent hashing. Declaration order of tasks,
// connections and properties is significant and kept.
func Canonicalize(m *Model) ([]byte, error) {
	tasks := make([]map[string]interface{}, len(m.Tasks))
	for i, t := range m.Tasks {
		entry := map[string]interface{}{"name": t.Name}
		putMillis(entry, "period", t.Period)
		putMillis(entry, "deadline", t.Deadline)
		putMillis(entry, "wcet", t.WCET)
		if t.Priority != nil {
			entry["priority"] = *t.Priority
		}
		if t.Vehicle != "" {
			entry["vehicle"] = t.Vehicle
		}
		tasks[i] = entry
	}

	conns := make([]map[string]interface{}, len(m.Connections))
	for i, c := range m.Connections {
		entry := map[string]interface{}{"name": c.Name, "src": c.Src, "dst": c.Dst}
		putMillis(entry, "latency_budget", c.LatencyBudget)
		conns[i] = entry
	}

	props := make([][2]string, len(m.Properties))
	for i, p := range m.Properties {
		props[i] = [2]string{p.Name, p.Text}
	}

	// encoding/json writes map keys sorted
	return json.Marshal(map[string]interface{}{
		"system":      m.System,
		"components":  tasks,
		"connections": conns,
		"properties":  props,
	})
}

// Hash computes the blake3 hash of the canonical model.
func Hash(m *Model) (string, error) {
	canonical, err := Canonicalize(m)
	if err != nil {
		return "", fmt.Errorf("canonicalize model: %w", err)
	}

	hasher := blake3.New()
	if _, err := hasher.Write(canonical); err != nil {
		return "", fmt.Errorf("hash model: %w", err)
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), nil
}

func putMillis(entry map[string]interface{}, key string, v *duration.Millis) {
	if v == nil {
		return
	}
	entry[key] = v.Int()
}
