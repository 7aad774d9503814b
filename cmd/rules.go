// ABOUTME: Branch rule commands for the insight CLI
// ABOUTME: Lists rules, tests patterns, applies rules and exports the deletion report

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/export"
	"github.com/gitlab-insight/insight/internal/format"
)

const rulesPath = "/branch-rules"

var (
	rulesAll      bool
	rulesRepo     int
	reportExcel   bool
	reportCSV     bool
	reportOutDir  string
	reportNoStamp bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Manage branch rules and the deletion report",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List branch rules",
	Args:  cobra.NoArgs,
	Run:   execute(runRulesList),
}

var rulesTestCmd = &cobra.Command{
	Use:   "test PATTERN BRANCH...",
	Short: "Test a branch pattern against branch names",
	Long: `Test a branch pattern against branch names.

Exit codes:
  0 - At least one branch matched
  1 - No branch matched
  2 - Error`,
	Args: cobra.MinimumNArgs(1),
	Run:  execute(runRulesTest),
}

var rulesApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Re-classify branches using the active rules",
	Args:  cobra.NoArgs,
	Run:   execute(runRulesApply),
}

var rulesReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show or export the branch deletion report",
	Args:  cobra.NoArgs,
	Run:   execute(runRulesReport),
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesTestCmd, rulesApplyCmd, rulesReportCmd)

	rulesListCmd.Flags().BoolVar(&rulesAll, "all", false, "Include inactive rules")

	for _, c := range []*cobra.Command{rulesApplyCmd, rulesReportCmd} {
		c.Flags().IntVar(&rulesRepo, "repo", 0, "Limit to one repository id")
	}

	rulesReportCmd.Flags().BoolVar(&reportExcel, "excel", false, "Download the report as an Excel workbook")
	rulesReportCmd.Flags().BoolVar(&reportCSV, "csv", false, "Write deletable branches as CSV")
	rulesReportCmd.Flags().StringVar(&reportOutDir, "out", ".", "Output directory for --excel and --csv")
	rulesReportCmd.Flags().BoolVar(&reportNoStamp, "no-timestamp", false, "Do not add a timestamp to exported file names")
}

// runRulesList lists rules and returns exit code
func runRulesList(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, rulesPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.Branches.Rules(ctx, !rulesAll)
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, resp.Rules)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPATTERN\tTYPE\tDELETABLE\tRETENTION\tPRIORITY\tACTIVE")
	for _, r := range resp.Rules {
		retention := "-"
		if r.RetentionDays != nil {
			retention = fmt.Sprintf("%dd", *r.RetentionDays)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\t%s\t%d\t%t\n", r.ID, r.RuleName, r.BranchPattern, r.BranchType, r.IsDeletable, retention, r.Priority, r.IsActive)
	}
	tw.Flush()
	return 0
}

// runRulesTest tests a pattern and returns exit code
func runRulesTest(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, rulesPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.Branches.TestPattern(ctx, args[0], args[1:])
	if err != nil {
		return reportError(w, err)
	}

	matched := 0
	for _, r := range resp.Results {
		if r.IsMatch {
			matched++
		}
	}

	if IsJSONOutput() {
		printJSON(w, resp)
	} else {
		for _, r := range resp.Results {
			mark := " "
			if r.IsMatch {
				mark = "✓"
			}
			fmt.Fprintf(w, "%s %s\n", mark, r.BranchName)
		}
		fmt.Fprintf(w, "%d of %d branches match %q\n", matched, len(resp.Results), resp.Pattern)
	}

	if matched == 0 {
		return 1
	}
	return 0
}

// runRulesApply applies rules and returns exit code
func runRulesApply(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, rulesPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.Branches.ApplyRules(ctx, rulesRepo)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp)
	}
	fmt.Fprintf(w, "%s (%d branches)\n", orDash(resp.Message), resp.Count)
	return 0
}

// runRulesReport shows or exports the deletion report and returns exit code
func runRulesReport(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, rulesPath)
	if code != 0 {
		return code
	}
	opts := export.Options{NoTimestamp: reportNoStamp}

	if reportExcel {
		resp, err := rt.api.Branches.ExportDeletionReport(ctx, rulesRepo)
		if err != nil {
			return reportError(w, err)
		}
		name := resp.Filename()
		if name == "" {
			name = "branch_deletion_report.xlsx"
		}
		path, err := export.SaveBlob(reportOutDir, name, ".xlsx", resp.Body, opts)
		if err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
		fmt.Fprintf(w, "Saved %s (%s)\n", path, format.FileSize(int64(len(resp.Body))))
		return 0
	}

	resp, err := rt.api.Branches.DeletionReport(ctx, rulesRepo)
	if err != nil {
		return reportError(w, err)
	}
	report := resp.Data

	if reportCSV {
		rows := make([]export.Row, 0, len(report.DeletableBranches))
		for _, b := range report.DeletableBranches {
			rows = append(rows, export.Row{
				"repository":  b.RepositoryName,
				"branch":      b.BranchName,
				"type":        b.BranchType,
				"last_commit": b.LastCommitDate,
				"deadline":    b.RetentionDeadline,
				"expired":     b.IsExpired,
				"reason":      b.DeletionReason,
			})
		}
		path, err := export.SaveCSV(reportOutDir, "branch_deletion_report", rows, export.Options{
			NoTimestamp: reportNoStamp,
			Columns: []export.Column{
				{Key: "repository", Label: "Repository"},
				{Key: "branch", Label: "Branch"},
				{Key: "type", Label: "Type"},
				{Key: "last_commit", Label: "Last Commit", Formatter: dateColumn},
				{Key: "deadline", Label: "Retention Deadline", Formatter: dateColumn},
				{Key: "expired", Label: "Expired", Formatter: yesNo},
				{Key: "reason", Label: "Reason"},
			},
		})
		if err != nil {
			return reportError(w, err)
		}
		fmt.Fprintf(w, "Saved %s (%d branches)\n", path, len(rows))
		return 0
	}

	if IsJSONOutput() {
		return printJSON(w, report)
	}

	s := report.Summary
	fmt.Fprintf(w, `Total:     %s
Deletable: %s
Protected: %s
Expired:   %s
`, format.Number(int64(s.TotalBranches)), format.Number(int64(s.DeletableBranches)),
		format.Number(int64(s.ProtectedBranches)), format.Number(int64(s.ExpiredBranches)))

	if len(report.DeletableBranches) > 0 {
		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "REPOSITORY\tBRANCH\tTYPE\tLAST COMMIT\tEXPIRED")
		for _, b := range report.DeletableBranches {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", b.RepositoryName, b.BranchName, orDash(b.BranchType), format.Date(b.LastCommitDate), b.IsExpired)
		}
		tw.Flush()
	}
	return 0
}

func dateColumn(value interface{}, row export.Row) interface{} {
	s, _ := value.(string)
	return format.DateTime(s, "")
}

func yesNo(value interface{}, row export.Row) interface{} {
	if b, _ := value.(bool); b {
		return "yes"
	}
	return "no"
}
