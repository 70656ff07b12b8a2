package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// renderMain renders the progress box and the per-property list
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("rtcheck verify"))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("Model: ") + m.styles.Subtitle.Render(m.model))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Border.Render(m.renderProgressBar() + "\n\n" + m.renderStats()))
	b.WriteString("\n\n")

	for _, name := range m.properties {
		b.WriteString(m.renderPropertyLine(name))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelpLine())
	return b.String()
}

// renderProgressBar renders an ASCII progress bar
func (m Model) renderProgressBar() string {
	total := len(m.properties)
	if total == 0 {
		return m.styles.Muted.Render("No properties to check")
	}

	barWidth := 40
	filled := int(float64(m.completed()) / float64(total) * float64(barWidth))

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar.WriteString("█")
		} else {
			bar.WriteString("░")
		}
	}
	bar.WriteString("]")

	progressText := fmt.Sprintf(" %d/%d (%.0f%%)", m.completed(), total, m.progressPercentage())
	return m.styles.Status.Render(bar.String()) + m.styles.Muted.Render(progressText)
}

func (m Model) renderStats() string {
	stats := []string{
		fmt.Sprintf("Satisfied:   %s", m.styles.Success.Render(fmt.Sprint(m.count(verify.Satisfied)))),
		fmt.Sprintf("Violated:    %s", m.styles.Error.Render(fmt.Sprint(m.count(verify.Violated)))),
		fmt.Sprintf("Unavailable: %s", m.styles.Warning.Render(fmt.Sprint(m.count(verify.Unavailable)))),
		fmt.Sprintf("Elapsed:     %s", m.styles.Muted.Render(formatDuration(m.elapsed()))),
	}
	return strings.Join(stats, "\n")
}

func (m Model) renderPropertyLine(name string) string {
	r, ok := m.results[name]
	if !ok {
		return m.spinner.View() + " " + m.styles.Muted.Render(name)
	}
	icon := m.statusIcon(r.Status)
	line := fmt.Sprintf("%s %s", icon, name)
	if r.Detail != "" {
		line += m.styles.Muted.Render(" (" + r.Detail + ")")
	}
	return line
}

func (m Model) statusIcon(s verify.Status) string {
	switch s {
	case verify.Satisfied:
		return m.styles.Success.Render("✓")
	case verify.Violated:
		return m.styles.Error.Render("✗")
	default:
		return m.styles.Warning.Render("?")
	}
}

func (m Model) renderHelpLine() string {
	if m.done {
		return ""
	}
	help := keys.Quit.Help()
	return m.styles.Help.Render(m.styles.Key.Render(help.Key) + " " + m.styles.KeyDesc.Render(help.Desc))
}

// renderComplete renders the final summary after the program exits
func (m Model) renderComplete() string {
	var b strings.Builder

	switch {
	case m.aborted:
		b.WriteString(m.styles.Warning.Render("Verification aborted"))
	case m.count(verify.Violated) > 0:
		b.WriteString(m.styles.Error.Render("✗ Properties violated"))
	case m.count(verify.Unavailable) > 0:
		b.WriteString(m.styles.Warning.Render("? Some properties could not be checked"))
	default:
		b.WriteString(m.styles.Success.Render("✓ All properties satisfied"))
	}
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("%d/%d checked in %s",
		m.completed(), len(m.properties), formatDuration(m.elapsed()))))
	b.WriteString("\n")
	return b.String()
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	min := d / time.Minute
	d -= min * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh %dm %ds", h, min, s)
	}
	if min > 0 {
		return fmt.Sprintf("%dm %ds", min, s)
	}
	return fmt.Sprintf("%ds", s)
}
