// ABOUTME: Background task list for the TUI
// ABOUTME: Shows task status and progress and requests cancellation of the selected task

package tasks

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gitlab-insight/insight/internal/format"
	"github.com/gitlab-insight/insight/internal/models"
	"github.com/gitlab-insight/insight/internal/tui/styles"
	"github.com/gitlab-insight/insight/internal/tui/widgets"
)

// CancelMsg asks the app to cancel a task
type CancelMsg struct {
	TaskID string
}

// List is the task table
type List struct {
	tasks  []models.Task
	cursor int
	now    func() time.Time
}

// New creates a task list
func New(tasks []models.Task) *List {
	return &List{tasks: tasks, now: time.Now}
}

// SetTasks replaces the tasks, keeping the cursor in range
func (l *List) SetTasks(tasks []models.Task) {
	l.tasks = tasks
	if l.cursor >= len(tasks) {
		l.cursor = max(0, len(tasks)-1)
	}
}

// Selected returns the highlighted task
func (l *List) Selected() (models.Task, bool) {
	if len(l.tasks) == 0 {
		return models.Task{}, false
	}
	return l.tasks[l.cursor], true
}

// Init implements tea.Model
func (l *List) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return l, nil
	}

	switch key.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.tasks)-1 {
			l.cursor++
		}
	case "c":
		t, ok := l.Selected()
		if !ok || t.Finished() {
			return l, nil
		}
		id := t.TaskID
		return l, func() tea.Msg { return CancelMsg{TaskID: id} }
	}
	return l, nil
}

// View implements tea.Model
func (l *List) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Tasks"))
	sb.WriteString("\n")

	if len(l.tasks) == 0 {
		sb.WriteString("No tasks")
		return sb.String()
	}

	for i, t := range l.tasks {
		cursor := "  "
		if i == l.cursor {
			cursor = "> "
		}
		sb.WriteString(fmt.Sprintf("%s%s %-28s %s %3d%%  %s\n",
			cursor, widgets.TaskBadge(t.Status), t.TaskType,
			styles.ProgressBar(float64(t.Progress), 10), t.Progress,
			format.Relative(t.CreatedAt, l.now())))
	}

	if t, ok := l.Selected(); ok {
		sb.WriteString("\n")
		sb.WriteString(styles.Subtitle.Render(t.TaskID))
		if t.Message != "" {
			sb.WriteString("\n" + t.Message)
		}
		if t.Error != "" {
			sb.WriteString("\n" + styles.StatusCritical.Render(t.Error))
		}
	}
	return sb.String()
}
