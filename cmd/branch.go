// ABOUTME: Branch commands for the insight CLI
// ABOUTME: Creates branches across submodules, checks existence and browses creation history

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/format"
	"github.com/gitlab-insight/insight/internal/models"
)

var (
	createProject int
	createBranch  string
	createRef     string
	createGroup   string
	createName    string
	createJira    string
	historyFilter models.HistoryFilter
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Create branches and browse branch creation history",
}

var branchCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a branch in a project and its submodules",
	Long: `Create a branch in a project. When the project has submodules the
backend creates matching branches there too, which can take several minutes.`,
	Args: cobra.NoArgs,
	Run:  execute(runBranchCreate),
}

var branchExistsCmd = &cobra.Command{
	Use:   "exists PROJECT_ID BRANCH",
	Short: "Check whether a branch exists",
	Long: `Check whether a branch exists.

Exit codes:
  0 - Branch exists
  1 - Branch does not exist
  2 - Error`,
	Args: cobra.ExactArgs(2),
	Run:  execute(runBranchExists),
}

var branchHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show branch creation history",
	Args:  cobra.NoArgs,
	Run:   execute(runBranchHistory),
}

func init() {
	rootCmd.AddCommand(branchCmd)
	branchCmd.AddCommand(branchCreateCmd, branchExistsCmd, branchHistoryCmd)

	f := branchCreateCmd.Flags()
	f.IntVar(&createProject, "project", 0, "Project id (required)")
	f.StringVar(&createBranch, "branch", "", "New branch name (required)")
	f.StringVar(&createRef, "ref", "", "Source branch, tag or commit (required)")
	f.StringVar(&createGroup, "group", "", "Group name, recorded in history")
	f.StringVar(&createName, "project-name", "", "Project name, recorded in history")
	f.StringVar(&createJira, "jira", "", "Jira ticket, recorded in history")
	_ = branchCreateCmd.MarkFlagRequired("project")
	_ = branchCreateCmd.MarkFlagRequired("branch")
	_ = branchCreateCmd.MarkFlagRequired("ref")

	h := branchHistoryCmd.Flags()
	h.IntVar(&historyFilter.Page, "page", 1, "Page number")
	h.IntVar(&historyFilter.PageSize, "page-size", 20, "Records per page")
	h.IntVar(&historyFilter.ProjectID, "project", 0, "Filter by project id")
	h.StringVar(&historyFilter.BranchName, "branch", "", "Filter by branch name")
	h.StringVar(&historyFilter.Status, "status", "", "Filter by status")
	h.StringVar(&historyFilter.Search, "search", "", "Search project and branch names")
	h.StringVar(&historyFilter.JiraTicket, "jira", "", "Filter by Jira ticket")
	h.StringVar(&historyFilter.StartDate, "since", "", "Start date (YYYY-MM-DD)")
	h.StringVar(&historyFilter.EndDate, "until", "", "End date (YYYY-MM-DD)")
}

// runBranchCreate creates a branch and returns exit code
func runBranchCreate(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "/branch-create")
	if code != 0 {
		return code
	}

	req := models.CreateBranchRequest{
		ProjectID:     createProject,
		NewBranchName: createBranch,
		SourceRef:     createRef,
		GroupName:     createGroup,
		ProjectName:   createName,
		JiraTicket:    createJira,
		CreatedBy:     rt.session.Username(),
	}

	var resp *models.DataResponse[models.CreateBranchResult]
	err := withSpinner(w, fmt.Sprintf("Creating %s from %s...", req.NewBranchName, req.SourceRef), func() error {
		var err error
		resp, err = rt.api.Branches.CreateBranch(ctx, req)
		return err
	})
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		return printJSON(w, resp.Data)
	}
	fmt.Fprintln(w, formatCreateResult(req, resp))
	return 0
}

func formatCreateResult(req models.CreateBranchRequest, resp *models.DataResponse[models.CreateBranchResult]) string {
	r := resp.Data
	out := orDash(resp.Message)
	if r.CreatedInParent {
		out += fmt.Sprintf("\nCreated %s in project %d", orDash(r.ParentCreated), req.ProjectID)
	}
	if !r.HasSubmodules {
		return out
	}
	if r.SubmodulesMessage != "" {
		out += "\n" + r.SubmodulesMessage
	}
	for _, s := range r.Submodules {
		line := fmt.Sprintf("\n  %-10s %s", s.Status, s.Path)
		if s.Reason != "" {
			line += " (" + s.Reason + ")"
		}
		out += line
	}
	return out
}

// runBranchExists checks a branch and returns exit code
func runBranchExists(ctx context.Context, w io.Writer, args []string) int {
	projectID, err := strconv.Atoi(args[0])
	if err != nil || projectID <= 0 {
		fmt.Fprintf(w, "Error: invalid project id %q\n", args[0])
		return 2
	}

	rt, code := setup(w, "/branch-create")
	if code != 0 {
		return code
	}

	resp, err := rt.api.Branches.BranchExists(ctx, projectID, args[1])
	if err != nil {
		return reportError(w, err)
	}

	if IsJSONOutput() {
		printJSON(w, resp.Data)
	} else if resp.Data.Exists {
		fmt.Fprintf(w, "Branch %s exists in project %d\n", args[1], projectID)
	} else {
		fmt.Fprintf(w, "Branch %s does not exist in project %d\n", args[1], projectID)
	}

	if !resp.Data.Exists {
		return 1
	}
	return 0
}

// runBranchHistory lists branch creation records and returns exit code
func runBranchHistory(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "/branch-creation-history")
	if code != 0 {
		return code
	}

	resp, err := rt.api.History.Records(ctx, historyFilter)
	if err != nil {
		return reportError(w, err)
	}
	page := resp.Data

	if IsJSONOutput() {
		return printJSON(w, page)
	}
	if len(page.Records) == 0 {
		fmt.Fprintln(w, "No records")
		return 0
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPROJECT\tBRANCH\tSOURCE\tSTATUS\tBY\tCREATED")
	for _, r := range page.Records {
		project := r.ProjectName
		if project == "" {
			project = strconv.Itoa(r.ProjectID)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, project, r.BranchName, orDash(r.SourceRef), r.Status, orDash(r.CreatedBy), format.DateTime(r.CreatedAt, ""))
	}
	tw.Flush()
	fmt.Fprintf(w, "Page %d of %d (%d records)\n", page.Page, page.TotalPages, page.Total)
	return 0
}
