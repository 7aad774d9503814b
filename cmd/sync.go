// ABOUTME: Sync command for the insight CLI
// ABOUTME: Triggers mirror synchronization and summary generation, optionally waiting for the task

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/api"
	"github.com/gitlab-insight/insight/internal/models"
	"github.com/gitlab-insight/insight/internal/router"
)

var syncOpts = models.SyncOptions{Async: true}
var syncWait bool

var syncCmd = &cobra.Command{
	Use:   "sync [" + strings.Join(api.SyncTargets, "|") + "|summary]",
	Short: "Synchronize mirror data from GitLab",
	Long: `Synchronize mirror data from GitLab. Without a target every kind is synced.

Syncs run as background tasks by default; use --wait to follow the task
until it finishes, or --async=false to block on the request itself.`,
	Args: cobra.MaximumNArgs(1),
	Run:  execute(runSync),
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncOpts.Async, "async", true, "Run the sync as a background task")
	syncCmd.Flags().BoolVar(&syncOpts.Force, "force", false, "Start a new sync even if one is running")
	syncCmd.Flags().BoolVar(&syncWait, "wait", false, "Wait for the background task to finish")
	syncCmd.Flags().DurationVar(&taskInterval, "interval", defaultPollInterval, "Polling interval for --wait")
}

// runSync triggers a sync and returns exit code
func runSync(ctx context.Context, w io.Writer, args []string) int {
	target := api.SyncAll
	if len(args) == 1 {
		target = args[0]
	}
	if !validSyncTarget(target) {
		fmt.Fprintf(w, "Error: unknown sync target %q\n", target)
		return 2
	}

	rt, code := setup(w, router.DashboardPath)
	if code != 0 {
		return code
	}

	var resp *models.SyncResponse
	var err error
	if target == "summary" {
		resp, err = rt.api.GitLab.GenerateBranchSummaries(ctx, models.GenerateSummaryRequest{ForceRefresh: syncOpts.Force, Async: syncOpts.Async})
	} else {
		resp, err = rt.api.GitLab.Sync(ctx, target, syncOpts)
	}
	if err != nil {
		return reportError(w, err)
	}

	if resp.TaskID == "" || !syncWait {
		if IsJSONOutput() {
			return printJSON(w, resp)
		}
		fmt.Fprintln(w, formatSync(resp))
		return 0
	}

	var task *models.Task
	err = withSpinner(w, fmt.Sprintf("Waiting for task %s...", resp.TaskID), func() error {
		var err error
		task, err = waitTask(ctx, rt, resp.TaskID, true, taskInterval)
		return err
	})
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		printJSON(w, task)
	} else {
		fmt.Fprintln(w, formatTask(task))
	}
	if task.Status != models.TaskCompleted {
		return 1
	}
	return 0
}

func validSyncTarget(target string) bool {
	if target == "summary" {
		return true
	}
	for _, t := range api.SyncTargets {
		if t == target {
			return true
		}
	}
	return false
}

func formatSync(resp *models.SyncResponse) string {
	if resp.TaskID == "" {
		return orDash(resp.Message)
	}
	state := "started"
	if !resp.IsNewTask {
		state = "already running"
	}
	return fmt.Sprintf("%s\nTask %s %s. Follow it with: insight tasks show %s --wait", orDash(resp.Message), resp.TaskID, state, resp.TaskID)
}
