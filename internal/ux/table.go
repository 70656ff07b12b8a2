package ux

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// Styles are the lipgloss styles of text output.
type Styles struct {
	Header      lipgloss.Style
	Muted       lipgloss.Style
	Satisfied   lipgloss.Style
	Violated    lipgloss.Style
	Unavailable lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when noColor is set.
func NewStyles(noColor bool) Styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return Styles{
			Header:      plain,
			Muted:       plain,
			Satisfied:   plain,
			Violated:    plain,
			Unavailable: plain,
		}
	}
	return Styles{
		Header:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")), // Purple
		Muted:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Satisfied:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("46")),  // Green
		Violated:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")), // Red
		Unavailable: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("226")), // Yellow
	}
}

// Status renders a verdict in its color.
func (s Styles) Status(st verify.Status) string {
	switch st {
	case verify.Satisfied:
		return s.Satisfied.Render(st.String())
	case verify.Violated:
		return s.Violated.Render(st.String())
	default:
		return s.Unavailable.Render(st.String())
	}
}

// Table is a left-aligned text table. Cells may already carry styling;
// column widths are measured on the visible text.
type Table struct {
	Headers []string
	Rows    [][]string
}

// AddRow appends a row.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Render lays the table out with two spaces between columns.
func (t *Table) Render(styles Styles) string {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			if style != nil {
				cell = style.Render(cell)
			}
			b.WriteString(cell)
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		b.WriteString("\n")
	}

	writeRow(t.Headers, &styles.Header)
	for _, row := range t.Rows {
		writeRow(row, nil)
	}
	return b.String()
}
