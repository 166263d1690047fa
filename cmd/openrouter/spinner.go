package main

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// completionDoneMsg carries the result of the background completion.
type completionDoneMsg struct {
	text string
	err  error
}

// spinnerModel animates a spinner on stderr while a completion runs.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	run     func() (string, error)

	done bool
	text string
	err  error
}

func newSpinnerModel(model string, run func() (string, error)) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Spinner{
				Frames: []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"},
				FPS:    spinner.Dot.FPS,
			}),
			spinner.WithStyle(spinnerStyle),
		),
		label: "Waiting for " + model + "...",
		run:   run,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.complete)
}

func (m spinnerModel) complete() tea.Msg {
	text, err := m.run()
	return completionDoneMsg{text: text, err: err}
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case completionDoneMsg:
		m.done = true
		m.text = msg.text
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}

	return m.spinner.View() + " " + dimStyle.Render(m.label)
}

// runWithSpinner runs fn while a spinner labelled with model animates on out.
// Cancelling ctx stops the spinner; fn is expected to observe ctx as well.
func runWithSpinner(ctx context.Context, out io.Writer, model string, fn func() (string, error)) (string, error) {
	p := tea.NewProgram(
		newSpinnerModel(model, fn),
		tea.WithContext(ctx),
		tea.WithInput(nil),
		tea.WithOutput(out),
		tea.WithoutSignalHandler(),
	)

	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}

	m, ok := final.(spinnerModel)
	if !ok || !m.done {
		return "", errors.New("completion did not finish")
	}

	return m.text, m.err
}
