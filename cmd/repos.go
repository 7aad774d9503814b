// ABOUTME: Mirror browsing commands for the insight CLI
// ABOUTME: Lists repositories, groups, branch summaries and repository branches, with CSV export

package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gitlab-insight/insight/internal/export"
	"github.com/gitlab-insight/insight/internal/format"
	"github.com/gitlab-insight/insight/internal/models"
)

var (
	listParams    models.ListParams
	listCSV       bool
	listOutDir    string
	summaryRepo   string
	summaryMin    int
	summaryDelete bool
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Browse mirrored repositories",
}

var reposListCmd = &cobra.Command{
	Use:   "list",
	Short: "List repositories",
	Args:  cobra.NoArgs,
	Run:   execute(runReposList),
}

var reposBranchesCmd = &cobra.Command{
	Use:   "branches REPOSITORY_ID",
	Short: "List the branches of a repository",
	Args:  cobra.ExactArgs(1),
	Run:   execute(runReposBranches),
}

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "List mirrored groups",
	Args:  cobra.NoArgs,
	Run:   execute(runGroups),
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show per-repository branch statistics",
	Args:  cobra.NoArgs,
	Run:   execute(runSummary),
}

func init() {
	rootCmd.AddCommand(reposCmd, groupsCmd, summaryCmd)
	reposCmd.AddCommand(reposListCmd, reposBranchesCmd)

	for _, c := range []*cobra.Command{reposListCmd, groupsCmd} {
		c.Flags().IntVar(&listParams.Page, "page", 1, "Page number")
		c.Flags().IntVar(&listParams.PageSize, "page-size", 20, "Items per page")
		c.Flags().StringVar(&listParams.Search, "search", "", "Filter by name")
		c.Flags().BoolVar(&listParams.All, "all", false, "Return every item, ignoring paging")
	}
	for _, c := range []*cobra.Command{reposListCmd, summaryCmd} {
		c.Flags().BoolVar(&listCSV, "csv", false, "Write the result as CSV")
		c.Flags().StringVar(&listOutDir, "out", ".", "Output directory for --csv")
	}

	summaryCmd.Flags().StringVar(&summaryRepo, "repo", "", "Filter by repository name")
	summaryCmd.Flags().IntVar(&summaryMin, "min-branches", 0, "Only repositories with at least this many branches")
	summaryCmd.Flags().BoolVar(&summaryDelete, "deletable", false, "Only repositories with deletable branches")
}

// repositoryColumns are the CSV columns of the repository export
var repositoryColumns = []export.Column{
	{Key: "id", Label: "ID"},
	{Key: "name", Label: "Name"},
	{Key: "path", Label: "Full Path"},
	{Key: "default_branch", Label: "Default Branch"},
	{Key: "visibility", Label: "Visibility"},
	{Key: "last_activity", Label: "Last Activity", Formatter: dateColumn},
	{Key: "url", Label: "URL"},
}

func repositoryRows(repos []models.Repository) []export.Row {
	rows := make([]export.Row, 0, len(repos))
	for _, r := range repos {
		rows = append(rows, export.Row{
			"id":             r.ID,
			"name":           r.Name,
			"path":           r.NameWithNamespace,
			"default_branch": r.DefaultBranch,
			"visibility":     r.Visibility,
			"last_activity":  r.LastActivityAt,
			"url":            r.WebURL,
		})
	}
	return rows
}

// runReposList lists repositories and returns exit code
func runReposList(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "/repositories")
	if code != 0 {
		return code
	}

	resp, err := rt.api.GitLab.Repositories(ctx, listParams)
	if err != nil {
		return reportError(w, err)
	}

	if listCSV {
		path, err := export.SaveCSV(listOutDir, "repositories", repositoryRows(resp.Repositories), export.Options{Columns: repositoryColumns})
		if err != nil {
			return reportError(w, err)
		}
		fmt.Fprintf(w, "Saved %s (%d repositories)\n", path, len(resp.Repositories))
		return 0
	}
	if IsJSONOutput() {
		return printJSON(w, resp)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tREPOSITORY\tDEFAULT\tVISIBILITY\tLAST ACTIVITY")
	for _, r := range resp.Repositories {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.NameWithNamespace, orDash(r.DefaultBranch), orDash(r.Visibility), format.DateTime(r.LastActivityAt, ""))
	}
	tw.Flush()
	fmt.Fprintf(w, "%s repositories\n", format.Number(int64(resp.Total)))
	return 0
}

// runReposBranches lists branches of one repository and returns exit code
func runReposBranches(ctx context.Context, w io.Writer, args []string) int {
	repoID, err := strconv.Atoi(args[0])
	if err != nil || repoID <= 0 {
		fmt.Fprintf(w, "Error: invalid repository id %q\n", args[0])
		return 2
	}

	rt, code := setup(w, "/repositories")
	if code != 0 {
		return code
	}

	resp, err := rt.api.GitLab.RepositoryBranches(ctx, repoID)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp.Branches)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BRANCH\tPROTECTED\tAUTHOR\tLAST COMMIT")
	for _, b := range resp.Branches {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", b.BranchName, b.Protected, orDash(b.CommitAuthorName), format.Relative(b.LastCommitDate, now()))
	}
	tw.Flush()
	return 0
}

// runGroups lists groups and returns exit code
func runGroups(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "/groups")
	if code != 0 {
		return code
	}

	resp, err := rt.api.GitLab.Groups(ctx, listParams)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGROUP\tPATH\tVISIBILITY")
	for _, g := range resp.Groups {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", g.ID, g.Name, orDash(g.FullPath), orDash(g.Visibility))
	}
	tw.Flush()
	fmt.Fprintf(w, "%s groups\n", format.Number(int64(resp.Total)))
	return 0
}

// runSummary shows branch statistics and returns exit code
func runSummary(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, "/branches")
	if code != 0 {
		return code
	}

	filter := models.SummaryFilter{RepositoryName: summaryRepo, MinTotalBranches: summaryMin}
	if summaryDelete {
		filter.HasDeletable = &summaryDelete
	}
	resp, err := rt.api.GitLab.BranchSummaries(ctx, filter)
	if err != nil {
		return reportError(w, err)
	}

	if listCSV {
		rows := make([]export.Row, 0, len(resp.Data))
		for _, s := range resp.Data {
			rows = append(rows, export.Row{
				"repository": s.RepositoryName,
				"total":      s.TotalBranches,
				"protected":  s.ProtectedBranches,
				"deletable":  s.DeletableBranches,
				"active_30":  s.Active30Days,
				"stale_180":  s.Inactive180Days,
				"synced":     s.LastSyncTime,
			})
		}
		path, err := export.SaveCSV(listOutDir, "branch_summary", rows, export.Options{Columns: []export.Column{
			{Key: "repository", Label: "Repository"},
			{Key: "total", Label: "Total"},
			{Key: "protected", Label: "Protected"},
			{Key: "deletable", Label: "Deletable"},
			{Key: "active_30", Label: "Active 30 Days"},
			{Key: "stale_180", Label: "Inactive 180 Days"},
			{Key: "synced", Label: "Last Sync", Formatter: dateColumn},
		}})
		if err != nil {
			return reportError(w, err)
		}
		fmt.Fprintf(w, "Saved %s (%d repositories)\n", path, len(rows))
		return 0
	}
	if IsJSONOutput() {
		return printJSON(w, resp.Data)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REPOSITORY\tTOTAL\tPROTECTED\tDELETABLE\tACTIVE 30D\tINACTIVE 180D")
	for _, s := range resp.Data {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", s.RepositoryName, s.TotalBranches, s.ProtectedBranches, s.DeletableBranches, s.Active30Days, s.Inactive180Days)
	}
	tw.Flush()
	return 0
}
