package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rtcheck/internal/duration"
)

// Model is the task/connection/property model handed over by the DSL front end.
type Model struct {
	System      string       `yaml:"system,omitempty" json:"system,omitempty"`
	Tasks       []Task       `yaml:"components" json:"components"`
	Connections []Connection `yaml:"connections,omitempty" json:"connections,omitempty"`
	Properties  Properties   `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Task is a periodic or event-driven component with timing attributes.
type Task struct {
	Name     string           `yaml:"name" json:"name"`
	Period   *duration.Millis `yaml:"period,omitempty" json:"period,omitempty"`
	Deadline *duration.Millis `yaml:"deadline,omitempty" json:"deadline,omitempty"`
	WCET     *duration.Millis `yaml:"wcet,omitempty" json:"wcet,omitempty"`
	Priority *int             `yaml:"priority,omitempty" json:"priority,omitempty"`
	Vehicle  string           `yaml:"vehicle,omitempty" json:"vehicle,omitempty"`
}

// WCETOrZero returns the worst-case execution time, 0 when undeclared.
func (t Task) WCETOrZero() duration.Millis {
	if t.WCET == nil {
		return 0
	}
	return *t.WCET
}

// EffectiveDeadline is the declared deadline, else the WCET when declared.
// ok is false when neither exists and the task has no deadline to miss.
func (t Task) EffectiveDeadline() (d duration.Millis, ok bool) {
	if t.Deadline != nil {
		return *t.Deadline, true
	}
	if t.WCET != nil {
		return *t.WCET, true
	}
	return 0, false
}

// Connection is a point-to-point link between two component ports.
type Connection struct {
	Name          string           `yaml:"name,omitempty" json:"name,omitempty"`
	Src           string           `yaml:"src" json:"src"`
	Dst           string           `yaml:"dst" json:"dst"`
	LatencyBudget *duration.Millis `yaml:"latency_budget,omitempty" json:"latency_budget,omitempty"`
}

// SrcTask resolves the source endpoint to a task name.
func (c Connection) SrcTask() string {
	return Endpoint(c.Src)
}

// DstTask resolves the destination endpoint to a task name.
func (c Connection) DstTask() string {
	return Endpoint(c.Dst)
}

// BudgetOrZero returns the latency budget, 0 when undeclared.
func (c Connection) BudgetOrZero() duration.Millis {
	if c.LatencyBudget == nil {
		return 0
	}
	return *c.LatencyBudget
}

// Endpoint resolves "Component.port" (or "Vehicle.Component.port") to the
// component name by dropping the trailing port segment. A bare name resolves
// to itself.
func Endpoint(s string) string {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[len(parts)-2]
}

// Property is a named property text as written in the DSL.
type Property struct {
	Name string `yaml:"name" json:"name"`
	Text string `yaml:"text" json:"text"`
}

// Properties keeps declaration order, which is also evaluation order.
type Properties []Property

// Names returns property names in declaration order.
func (p Properties) Names() []string {
	out := make([]string, len(p))
	for i, prop := range p {
		out[i] = prop.Name
	}
	return out
}

// Get returns the property declared under name.
func (p Properties) Get(name string) (Property, bool) {
	for _, prop := range p {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// UnmarshalYAML accepts either a mapping of name to text (order preserved)
// or a sequence of {name, text} records.
func (p *Properties) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.MappingNode:
		out := make(Properties, 0, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			key, val := value.Content[i], value.Content[i+1]
			if val.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: property %q must be a string", val.Line, key.Value)
			}
			out = append(out, Property{Name: key.Value, Text: val.Value})
		}
		*p = out
		return nil
	case yaml.SequenceNode:
		var list []Property
		if err := value.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("line %d: properties must be a mapping or a list", value.Line)
	}
}

// MarshalYAML writes properties as an ordered mapping.
func (p Properties) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, prop := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: prop.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: prop.Text, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// Task returns the task declared under name.
func (m *Model) Task(name string) (Task, bool) {
	for _, t := range m.Tasks {
		if t.Name == name {
			return t, true
		}
	}
	return Task{}, false
}

// HasTask reports whether a task with the given name is declared.
func (m *Model) HasTask(name string) bool {
	_, ok := m.Task(name)
	return ok
}

// Incoming reports, per declared task, whether a connection from another
// declared task delivers into it. Event-driven tasks get neither a periodic
// timer nor an environment trigger.
func (m *Model) Incoming() map[string]bool {
	incoming := make(map[string]bool, len(m.Tasks))
	for _, t := range m.Tasks {
		incoming[t.Name] = false
	}
	for _, c := range m.Connections {
		_, src := incoming[c.SrcTask()]
		if _, dst := incoming[c.DstTask()]; src && dst {
			incoming[c.DstTask()] = true
		}
	}
	return incoming
}
