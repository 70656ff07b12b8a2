// Package property classifies declared property texts into raw temporal
// formulas, end-to-end pipeline clauses, or unresolved text.
package property

import (
	"regexp"
	"strings"
)

// DeadlinePropertyName is the name of the global "no deadline miss" query.
const DeadlinePropertyName = "deadline_misses==0"

// Kind tags the shape of a property text.
type Kind int

const (
	// Unresolved text matches no known shape.
	Unresolved Kind = iota
	// RawFormula text is already a path-quantified formula.
	RawFormula
	// PipelinePattern text is an end-to-end latency clause.
	PipelinePattern
)

func (k Kind) String() string {
	switch k {
	case RawFormula:
		return "formula"
	case PipelinePattern:
		return "pipeline"
	default:
		return "unresolved"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Classified is the outcome of classifying one property.
type Classified struct {
	Name     string
	Text     string
	Kind     Kind
	Pipeline *Pipeline
	// Reason explains why a text stayed unresolved.
	Reason string
}

var quantifier = regexp.MustCompile(`^(A|E)\s*(\[\]|<>)`)

// Normalize trims whitespace and a pair of surrounding double quotes.
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// HasQuantifier reports whether text starts with A[], A<>, E<> or E[].
func HasQuantifier(text string) bool {
	return quantifier.MatchString(Normalize(text))
}

// EnsureQuantified wraps text in an always-quantifier unless it already
// carries a path quantifier.
func EnsureQuantified(text string) string {
	s := Normalize(text)
	if HasQuantifier(s) {
		return s
	}
	return "A[] " + s
}

// Classify tags a property text. Quantified formulas win over the pipeline
// grammar, so a chain starting at a task named A or E is never mistaken for
// a formula unless it is followed by [] or <>.
func Classify(name, text string) Classified {
	c := Classified{Name: name, Text: Normalize(text)}

	if HasQuantifier(c.Text) {
		c.Kind = RawFormula
		return c
	}

	p, err := ParsePipeline(c.Text)
	if err != nil {
		c.Kind = Unresolved
		c.Reason = err.Error()
		return c
	}
	c.Kind = PipelinePattern
	c.Pipeline = p
	return c
}
