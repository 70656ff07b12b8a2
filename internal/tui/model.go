// Package tui renders interactive terminal views for verification runs.
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// Model is the progress view of one verification run.
type Model struct {
	model      string
	properties []string
	results    map[string]verify.Result
	startTime  time.Time
	spinner    spinner.Model

	done     bool
	aborted  bool
	onAbort  func()
	styles   Styles
	duration time.Duration
}

// Styles contains lipgloss styles for the TUI
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Status   lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Muted    lipgloss.Style
	Border   lipgloss.Style
	Help     lipgloss.Style
	Key      lipgloss.Style
	KeyDesc  lipgloss.Style
}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "abort"),
	),
}

// NewModel creates the progress view for properties of the model at path.
// onAbort is called when the user aborts; it may be nil.
func NewModel(path string, properties []string, onAbort func()) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	return Model{
		model:      path,
		properties: properties,
		results:    make(map[string]verify.Result, len(properties)),
		startTime:  time.Now(),
		spinner:    s,
		onAbort:    onAbort,
		styles:     DefaultStyles(),
	}
}

// DefaultStyles returns the default lipgloss styles
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")). // Purple
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Status: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")), // Cyan
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")), // Red
		Success: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")), // Green
		Warning: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226")), // Yellow
		Muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(1, 2),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1),
		Key: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")),
		KeyDesc: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

// Init starts the spinner (required by Bubble Tea)
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model state (required by Bubble Tea)
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && !m.done {
			m.aborted = true
			if m.onAbort != nil {
				m.onAbort()
			}
			return m, tea.Quit
		}
		return m, nil

	case ResultMsg:
		m.results[msg.Result.Property] = msg.Result
		return m, nil

	case RunCompleteMsg:
		m.done = true
		m.duration = time.Since(m.startTime)
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the TUI (required by Bubble Tea)
func (m Model) View() string {
	if m.done || m.aborted {
		return m.renderComplete()
	}
	return m.renderMain()
}

// ResultMsg reports one finished property.
type ResultMsg struct {
	Result verify.Result
}

// RunCompleteMsg ends the view.
type RunCompleteMsg struct{}

// Aborted reports whether the user quit before the run finished.
func (m Model) Aborted() bool {
	return m.aborted
}

func (m Model) completed() int {
	return len(m.results)
}

func (m Model) count(s verify.Status) int {
	n := 0
	for _, r := range m.results {
		if r.Status == s {
			n++
		}
	}
	return n
}

func (m Model) elapsed() time.Duration {
	if m.done {
		return m.duration
	}
	return time.Since(m.startTime)
}

func (m Model) progressPercentage() float64 {
	if len(m.properties) == 0 {
		return 0
	}
	return float64(m.completed()) / float64(len(m.properties)) * 100
}
