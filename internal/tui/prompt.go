package tui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
)

// PickProperties lets the user choose which properties to check. All are
// preselected.
func PickProperties(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no properties to choose from")
	}

	options := make([]huh.Option[string], len(names))
	for i, name := range names {
		options[i] = huh.NewOption(name, name).Selected(true)
	}

	var selected []string
	multiSelect := huh.NewMultiSelect[string]().
		Title("Properties to verify").
		Options(options...).
		Value(&selected)

	form := huh.NewForm(huh.NewGroup(multiSelect))
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}
	return ordered(names, selected), nil
}

// PromptForConfirmation displays a yes/no confirmation prompt
func PromptForConfirmation(message string, defaultValue bool) (bool, error) {
	confirmed := defaultValue

	confirm := huh.NewConfirm().
		Title(message).
		Value(&confirmed)

	form := huh.NewForm(huh.NewGroup(confirm))
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return confirmed, nil
}

// ordered returns the selected names in the order of names.
func ordered(names, selected []string) []string {
	chosen := make(map[string]bool, len(selected))
	for _, s := range selected {
		chosen[s] = true
	}
	out := make([]string, 0, len(selected))
	for _, name := range names {
		if chosen[name] {
			out = append(out, name)
		}
	}
	return out
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
