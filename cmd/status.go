// ABOUTME: Status command for the insight CLI
// ABOUTME: Shows mirror statistics, log import status and running tasks in one view

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/gitlab-insight/insight/internal/format"
	"github.com/gitlab-insight/insight/internal/models"
	"github.com/gitlab-insight/insight/internal/router"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show mirror statistics and running tasks",
	Long:  `Display repository, group, branch and log counts together with the log import range and any running background tasks.`,
	Args:  cobra.NoArgs,
	Run:   execute(runStatus),
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// dashboardStatus is the combined result of the status calls
type dashboardStatus struct {
	Statistics *models.Statistics   `json:"statistics"`
	Import     *models.ImportStatus `json:"import"`
	Running    []models.Task        `json:"running_tasks"`
}

// fetchStatus issues the dashboard calls concurrently
func fetchStatus(ctx context.Context, rt *runtime) (*dashboardStatus, error) {
	var out dashboardStatus
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := rt.api.System.Statistics(ctx)
		if err != nil {
			return err
		}
		out.Statistics = stats
		return nil
	})
	g.Go(func() error {
		status, err := rt.api.System.Status(ctx)
		if err != nil {
			return err
		}
		out.Import = status
		return nil
	})
	g.Go(func() error {
		tasks, err := rt.api.Tasks.List(ctx, models.TaskFilter{Status: models.TaskRunning, Limit: 10})
		if err != nil {
			return err
		}
		out.Running = tasks.Tasks
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

// runStatus executes the status check and returns exit code
func runStatus(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, router.DashboardPath)
	if code != 0 {
		return code
	}

	status, err := fetchStatus(ctx, rt)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, status)
	}
	fmt.Fprintln(w, formatStatusHuman(status))
	return 0
}

// formatStatusHuman formats status for human readability
func formatStatusHuman(s *dashboardStatus) string {
	out := fmt.Sprintf(`Repositories: %s
Groups:       %s
Branches:     %s
Log records:  %s
Log range:    %s .. %s (%d days)`,
		format.Number(s.Statistics.Repositories),
		format.Number(s.Statistics.Groups),
		format.Number(s.Statistics.Branches),
		format.Number(s.Statistics.Logs),
		orDash(s.Import.DateRange.MinDate), orDash(s.Import.DateRange.MaxDate), s.Import.ImportDays)

	if len(s.Running) == 0 {
		return out + "\nRunning:      none"
	}
	out += "\nRunning:"
	for _, t := range s.Running {
		out += fmt.Sprintf("\n  %s  %-20s %3d%%  %s", t.TaskID, t.TaskType, t.Progress, t.Message)
	}
	return out
}
