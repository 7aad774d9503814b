// ABOUTME: Access log commands for the insight CLI
// ABOUTME: Shows recent GitLab API access logs and drives log imports on the backend

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/format"
	"github.com/gitlab-insight/insight/internal/models"
)

const logsPath = "/logs"

var (
	logsLimit int
	logsFile  string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show recent GitLab API access logs",
	Args:  cobra.NoArgs,
	Run:   execute(runLogs),
}

var logsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import an access log file on the backend",
	Args:  cobra.NoArgs,
	Run:   execute(runLogsImport),
}

var logsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show per-day log import history",
	Args:  cobra.NoArgs,
	Run:   execute(runLogsHistory),
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsImportCmd, logsHistoryCmd)

	logsCmd.Flags().IntVar(&logsLimit, "limit", 100, "Number of entries")
	logsImportCmd.Flags().StringVar(&logsFile, "file", "", "Log file path on the backend host (default: the configured file)")
}

// runLogs prints recent access logs and returns exit code
func runLogs(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, logsPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.System.Logs(ctx, logsLimit)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp.Logs)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tCLIENT\tMETHOD\tPATH\tSTATUS\tSIZE")
	for _, l := range resp.Logs {
		size := "-"
		if l.ResponseSize != nil {
			size = format.FileSize(*l.ResponseSize)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n", format.DateTime(l.AccessTime, ""), l.ClientIP, l.HTTPMethod, l.APIPath, l.HTTPStatus, size)
	}
	tw.Flush()
	fmt.Fprintf(w, "%d of %s records\n", resp.Count, format.Number(resp.TotalRecords))
	return 0
}

// runLogsImport parses a log file on the backend and returns exit code
func runLogsImport(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, logsPath)
	if code != 0 {
		return code
	}

	var resp *models.ParseLogResult
	err := withSpinner(w, "Importing access log...", func() error {
		var err error
		resp, err = rt.api.System.ParseLog(ctx, models.ParseLogRequest{LogFile: logsFile})
		return err
	})
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, resp)
	}
	fmt.Fprintf(w, "Imported %s records\n", format.Number(int64(resp.ImportedCount)))
	if len(resp.ImportedDates) > 0 {
		fmt.Fprintf(w, "New dates:      %v\n", resp.ImportedDates)
	}
	if len(resp.AlreadyImportedDates) > 0 {
		fmt.Fprintf(w, "Skipped dates:  %v\n", resp.AlreadyImportedDates)
	}
	return 0
}

// runLogsHistory prints the import history and returns exit code
func runLogsHistory(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, logsPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.System.ImportHistory(ctx)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp.ImportHistory)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tRECORDS\tSTATUS\tIMPORTED")
	for _, r := range resp.ImportHistory {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.LogDate, format.Number(r.RecordCount), r.Status, format.DateTime(r.ImportTime, ""))
	}
	tw.Flush()
	return 0
}
