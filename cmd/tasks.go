// ABOUTME: Task commands for the insight CLI
// ABOUTME: Lists, inspects, waits for and cancels backend background tasks

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/format"
	"github.com/gitlab-insight/insight/internal/models"
)

const tasksPath = "/tasks"

const defaultPollInterval = 2 * time.Second

var (
	taskStatus   string
	taskType     string
	taskLimit    int
	taskWait     bool
	taskInterval time.Duration
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Manage background tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List background tasks",
	Args:  cobra.NoArgs,
	Run:   execute(runTasksList),
}

var tasksShowCmd = &cobra.Command{
	Use:   "show TASK_ID",
	Short: "Show one task",
	Long: `Show one task. With --wait, poll until the task completes, fails or is cancelled.

Exit codes:
  0 - Task found (and completed when waiting)
  1 - Task failed or was cancelled while waiting
  2 - Error`,
	Args: cobra.ExactArgs(1),
	Run:  execute(runTasksShow),
}

var tasksCancelCmd = &cobra.Command{
	Use:   "cancel TASK_ID",
	Short: "Cancel a pending or running task",
	Args:  cobra.ExactArgs(1),
	Run:   execute(runTasksCancel),
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksListCmd, tasksShowCmd, tasksCancelCmd)

	tasksListCmd.Flags().StringVar(&taskStatus, "status", "", "Filter by status (pending, running, completed, failed, cancelled)")
	tasksListCmd.Flags().StringVar(&taskType, "type", "", "Filter by task type")
	tasksListCmd.Flags().IntVar(&taskLimit, "limit", 50, "Maximum number of tasks")

	tasksShowCmd.Flags().BoolVar(&taskWait, "wait", false, "Poll until the task finishes")
	tasksShowCmd.Flags().DurationVar(&taskInterval, "interval", defaultPollInterval, "Polling interval for --wait")
}

// runTasksList lists tasks and returns exit code
func runTasksList(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, tasksPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.Tasks.List(ctx, models.TaskFilter{TaskType: taskType, Status: taskStatus, Limit: taskLimit})
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, resp.Tasks)
	}
	if len(resp.Tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return 0
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tSTATUS\tPROGRESS\tCREATED")
	for _, t := range resp.Tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.TaskID, t.TaskType, format.TaskStatusText(t.Status), format.Percent(float64(t.Progress), 0, false), format.Relative(t.CreatedAt, now()))
	}
	tw.Flush()
	return 0
}

// runTasksShow shows a task, optionally waiting for it, and returns exit code
func runTasksShow(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, tasksPath)
	if code != 0 {
		return code
	}

	task, err := waitTask(ctx, rt, args[0], taskWait, taskInterval)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		printJSON(w, task)
	} else {
		fmt.Fprintln(w, formatTask(task))
	}

	if taskWait && task.Status != models.TaskCompleted {
		return 1
	}
	return 0
}

// waitTask fetches a task, polling until it finishes when wait is set
func waitTask(ctx context.Context, rt *runtime, id string, wait bool, interval time.Duration) (*models.Task, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		resp, err := rt.api.Tasks.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !wait || resp.Task.Finished() {
			return &resp.Task, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func formatTask(t *models.Task) string {
	out := fmt.Sprintf(`Task:      %s
Type:      %s
Status:    %s
Progress:  %d%%
Created:   %s
Started:   %s
Completed: %s`,
		t.TaskID, t.TaskType, format.TaskStatusText(t.Status), t.Progress,
		format.DateTime(t.CreatedAt, ""), format.DateTime(t.StartedAt, ""), format.DateTime(t.CompletedAt, ""))
	if t.Message != "" {
		out += "\nMessage:   " + t.Message
	}
	if t.Error != "" {
		out += "\nError:     " + t.Error
	}
	return out
}

// runTasksCancel cancels a task and returns exit code
func runTasksCancel(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, tasksPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.Tasks.Cancel(ctx, args[0])
	if err != nil {
		return reportError(w, err)
	}
	fmt.Fprintln(w, orDash(resp.Message))
	return 0
}
