package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// Identifier is a name that can be used verbatim as an automaton template,
// channel or variable name in the generated model.
type Identifier string

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	nonWord           = regexp.MustCompile(`\W`)
	nonWordRun        = regexp.MustCompile(`\W+`)

	maxIdentifierLength = 128
)

// reserved words of the target modeling language that cannot name a task
var reserved = map[string]bool{
	"chan": true, "clock": true, "bool": true, "int": true, "const": true,
	"urgent": true, "broadcast": true, "system": true, "process": true,
	"state": true, "commit": true, "init": true, "trans": true, "select": true,
	"guard": true, "sync": true, "assign": true, "true": true, "false": true,
	"not": true, "and": true, "or": true, "imply": true, "forall": true,
	"exists": true, "void": true, "return": true, "if": true, "else": true,
	"while": true, "for": true, "do": true, "break": true, "continue": true,
	"switch": true, "case": true, "default": true, "typedef": true,
	"struct": true, "scalar": true, "meta": true, "priority": true,
	"deadlock": true,
}

// NewIdentifier creates a new Identifier value object with validation
func NewIdentifier(value string) (Identifier, error) {
	id := Identifier(value)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

// Validate checks if the identifier is usable in the generated model
func (i Identifier) Validate() error {
	s := string(i)

	if s == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if len(s) > maxIdentifierLength {
		return fmt.Errorf("identifier %q exceeds maximum length of %d characters", s, maxIdentifierLength)
	}

	if !identifierPattern.MatchString(s) {
		return fmt.Errorf("identifier %q must start with a letter or underscore and contain only letters, digits and underscores", s)
	}

	if reserved[s] {
		return fmt.Errorf("identifier %q is a reserved word of the model language", s)
	}

	return nil
}

// String returns the string representation
func (i Identifier) String() string {
	return string(i)
}

// GlobalGroup is the prefix of the implicit scheduling group formed by all
// tasks without a vehicle label.
const GlobalGroup = "GLOBAL"

// GroupPrefix turns a scheduling-group label into the suffix used for the
// group's scheduler and shared variables.
func GroupPrefix(label string) string {
	if strings.TrimSpace(label) == "" {
		return GlobalGroup
	}
	return nonWord.ReplaceAllString(label, "_")
}

// Sanitize collapses every run of non-word characters into a single
// underscore, e.g. for deriving template names from property names.
func Sanitize(s string) string {
	return nonWordRun.ReplaceAllString(s, "_")
}
