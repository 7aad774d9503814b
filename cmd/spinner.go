// ABOUTME: Inline spinner shown while a long request runs
// ABOUTME: Falls back to running silently when output is not a terminal

package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gitlab-insight/insight/internal/tui/styles"
)

type spinnerDoneMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
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
	return m.spinner.View() + " " + m.title + "\n"
}

// withSpinner runs fn while showing title next to a spinner on w
func withSpinner(w io.Writer, title string, fn func() error) error {
	if IsJSONOutput() || !isTerminal(w) {
		return fn()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	p := tea.NewProgram(spinnerModel{spinner: s, title: title}, tea.WithOutput(w), tea.WithInput(nil))

	var err error
	go func() {
		err = fn()
		p.Send(spinnerDoneMsg{})
	}()

	if _, runErr := p.Run(); runErr != nil {
		return runErr
	}
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
