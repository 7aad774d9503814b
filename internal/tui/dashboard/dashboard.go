// ABOUTME: Dashboard component displaying mirror statistics
// ABOUTME: Shows counts, the log import range and running tasks

package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gitlab-insight/insight/internal/format"
	"github.com/gitlab-insight/insight/internal/models"
	"github.com/gitlab-insight/insight/internal/tui/icons"
	"github.com/gitlab-insight/insight/internal/tui/styles"
	"github.com/gitlab-insight/insight/internal/tui/widgets"
)

// Data is everything the dashboard shows
type Data struct {
	Statistics *models.Statistics
	Import     *models.ImportStatus
	Running    []models.Task
}

// Dashboard displays mirror statistics
type Dashboard struct {
	data   *Data
	width  int
	height int
}

// New creates a new dashboard
func New(data *Data, width, height int) *Dashboard {
	return &Dashboard{data: data, width: width, height: height}
}

// Update replaces the dashboard data
func (d *Dashboard) Update(data *Data) {
	d.data = data
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	if d.data == nil || d.data.Statistics == nil {
		return "Loading statistics..."
	}

	var sb strings.Builder
	sb.WriteString(styles.Title.Render("Mirror Overview"))
	sb.WriteString("\n")

	stats := d.data.Statistics
	cfg := widgets.DefaultMetricBlockConfig()
	blocks := []string{
		widgets.MetricBlock(icons.Repo, "Repos", format.Number(stats.Repositories), "mirrored", cfg),
		widgets.MetricBlock(icons.Group, "Groups", format.Number(stats.Groups), "mirrored", cfg),
		widgets.MetricBlock(icons.Branch, "Branches", format.Number(stats.Branches), "tracked", cfg),
		widgets.MetricBlock(icons.Logs, "Logs", format.Number(stats.Logs), "access records", cfg),
	}
	// Two blocks per row keeps the pane narrow enough for 80 columns
	for i := 0; i < len(blocks); i += 2 {
		row := blocks[i:min(i+2, len(blocks))]
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, row...))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	if imp := d.data.Import; imp != nil {
		sb.WriteString(fmt.Sprintf("Log import: %d days, %s records\n", imp.ImportDays, format.Number(imp.TotalRecords)))
		sb.WriteString(fmt.Sprintf("  %s to %s\n\n", format.Date(imp.DateRange.MinDate), format.Date(imp.DateRange.MaxDate)))
	}

	if len(d.data.Running) == 0 {
		sb.WriteString(widgets.StatusText("No running tasks", widgets.StatusOK))
	} else {
		sb.WriteString(fmt.Sprintf("Running tasks (%d)\n", len(d.data.Running)))
		for _, t := range d.data.Running {
			sb.WriteString(fmt.Sprintf("  %s %s %s %d%%\n", widgets.TaskBadge(t.Status), t.TaskType, styles.ProgressBar(float64(t.Progress), 10), t.Progress))
		}
	}

	return lipgloss.NewStyle().
		Width(d.width).
		Height(d.height).
		Render(sb.String())
}
