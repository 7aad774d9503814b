// ABOUTME: Administrator commands for the insight CLI
// ABOUTME: GitLab todos and home page link management, both restricted to admins

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

const (
	todosPath = "/todos"
	linksPath = "/home-content"
)

var (
	todoFilter    = models.TodoFilter{State: "pending"}
	linksInactive bool
)

var todosCmd = &cobra.Command{
	Use:   "todos",
	Short: "List GitLab todos (admin)",
	Args:  cobra.NoArgs,
	Run:   execute(runTodos),
}

var todosDoneCmd = &cobra.Command{
	Use:   "done [TODO_ID]",
	Short: "Mark one todo, or all todos, as done (admin)",
	Args:  cobra.MaximumNArgs(1),
	Run:   execute(runTodosDone),
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "List home page links (admin)",
	Args:  cobra.NoArgs,
	Run:   execute(runLinks),
}

var linksToggleCmd = &cobra.Command{
	Use:   "toggle LINK_ID",
	Short: "Activate or deactivate a home page link (admin)",
	Args:  cobra.ExactArgs(1),
	Run:   execute(runLinksToggle),
}

func init() {
	rootCmd.AddCommand(todosCmd, linksCmd)
	todosCmd.AddCommand(todosDoneCmd)
	linksCmd.AddCommand(linksToggleCmd)

	f := todosCmd.Flags()
	f.StringVar(&todoFilter.State, "state", "pending", "pending, done or all")
	f.StringVar(&todoFilter.Action, "action", "", "Filter by action (e.g. assigned, mentioned)")
	f.StringVar(&todoFilter.Type, "type", "", "Filter by target type (e.g. MergeRequest, Issue)")
	f.IntVar(&todoFilter.ProjectID, "project", 0, "Filter by project id")
	f.StringVar(&todoFilter.ProjectName, "project-name", "", "Filter by project name")
	f.StringVar(&todoFilter.Branch, "branch", "", "Filter by target branch")

	linksCmd.Flags().BoolVar(&linksInactive, "all", false, "Include inactive links")
}

// runTodos lists todos and returns exit code
func runTodos(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, todosPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.GitLab.Todos(ctx, todoFilter)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACTION\tPROJECT\tTITLE\tAUTHOR\tCREATED")
	for _, t := range resp.Todos {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n", t.ID, t.ActionName, t.Project.NameWithNamespace, t.Title, t.Author.Username, format.Relative(t.CreatedAt, now()))
	}
	tw.Flush()
	fmt.Fprintf(w, "%d todos\n", resp.Total)
	return 0
}

// runTodosDone marks todos done and returns exit code
func runTodosDone(ctx context.Context, w io.Writer, args []string) int {
	var id int
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintf(w, "Error: invalid todo id %q\n", args[0])
			return 2
		}
		id = n
	}

	rt, code := setup(w, todosPath)
	if code != 0 {
		return code
	}

	var resp *models.MessageResponse
	var err error
	if id > 0 {
		resp, err = rt.api.GitLab.MarkTodoDone(ctx, id)
	} else {
		resp, err = rt.api.GitLab.MarkAllTodosDone(ctx)
	}
	if err != nil {
		return reportError(w, err)
	}
	fmt.Fprintln(w, orDash(resp.Message))
	return 0
}

// runLinks lists home page links and returns exit code
func runLinks(ctx context.Context, w io.Writer, args []string) int {
	rt, code := setup(w, linksPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.HomeLinks.List(ctx, linksInactive)
	if err != nil {
		return reportError(w, err)
	}
	if IsJSONOutput() {
		return printJSON(w, resp.Data)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tGROUP\tTITLE\tURL\tORDER\tACTIVE")
	for _, g := range resp.Data.DocLinks {
		for _, l := range g.Links {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\n", l.ID, orDash(g.GroupTitle), l.Title, l.URL, l.SortOrder, l.IsActive)
		}
	}
	for _, l := range resp.Data.PlatformLinks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%t\n", l.ID, "platform", l.Title, l.URL, l.SortOrder, l.IsActive)
	}
	tw.Flush()
	return 0
}

// runLinksToggle flips a link's active flag and returns exit code
func runLinksToggle(ctx context.Context, w io.Writer, args []string) int {
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		fmt.Fprintf(w, "Error: invalid link id %q\n", args[0])
		return 2
	}

	rt, code := setup(w, linksPath)
	if code != 0 {
		return code
	}

	resp, err := rt.api.HomeLinks.Toggle(ctx, id)
	if err != nil {
		return reportError(w, err)
	}
	state := "inactive"
	if resp.Data.IsActive {
		state = "active"
	}
	fmt.Fprintf(w, "%s is now %s\n", resp.Data.Title, state)
	return 0
}
