package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/felixgeelhaar/rtcheck/internal/verify"
)

// Adapter bridges a verifier run and the progress view.
type Adapter struct {
	program *tea.Program
	done    chan struct{}
	final   Model
	err     error
}

// NewAdapter creates an adapter drawing to out. onAbort is invoked when the
// user quits early.
func NewAdapter(path string, properties []string, out io.Writer, onAbort func()) *Adapter {
	model := NewModel(path, properties, onAbort)
	return &Adapter{
		program: tea.NewProgram(model, tea.WithOutput(out)),
		done:    make(chan struct{}),
	}
}

// Start runs the program in the background.
func (a *Adapter) Start() {
	go func() {
		defer close(a.done)
		final, err := a.program.Run()
		if err != nil {
			a.err = fmt.Errorf("progress view: %w", err)
			return
		}
		if m, ok := final.(Model); ok {
			a.final = m
		}
	}()
}

// OnResult forwards a finished property; it matches Verifier.OnResult.
func (a *Adapter) OnResult(r verify.Result) {
	a.program.Send(ResultMsg{Result: r})
}

// Finish ends the view and waits for the program to exit. It reports whether
// the user aborted.
func (a *Adapter) Finish() (aborted bool, err error) {
	a.program.Send(RunCompleteMsg{})
	<-a.done
	return a.final.Aborted(), a.err
}
