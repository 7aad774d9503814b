// ABOUTME: GitLab mirror endpoint wrappers
// ABOUTME: Sync triggers, repository and group queries, todos, tags and branch summaries

package api

import (
	"context"
	"net/http"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// GitLabAPI wraps /gitlab endpoints
type GitLabAPI struct {
	d Doer
}

// Sync targets
const (
	SyncRepositories = "repositories"
	SyncGroups       = "groups"
	SyncBranches     = "branches"
	SyncPermissions  = "permissions"
	SyncAll          = "all"
)

// SyncTargets lists every valid sync target
var SyncTargets = []string{SyncRepositories, SyncGroups, SyncBranches, SyncPermissions, SyncAll}

// Sync starts a mirror sync of the given target
func (g *GitLabAPI) Sync(ctx context.Context, target string, opts models.SyncOptions) (*models.SyncResponse, error) {
	return call[models.SyncResponse](ctx, g.d, client.Request{
		Method: http.MethodPost,
		Path:   "/gitlab/sync-" + target,
		Query:  query{}.setBool("async", opts.Async).setBool("force", opts.Force).values(),
	})
}

// SyncRepositories starts a repository sync
func (g *GitLabAPI) SyncRepositories(ctx context.Context, opts models.SyncOptions) (*models.SyncResponse, error) {
	return g.Sync(ctx, SyncRepositories, opts)
}

// SyncGroups starts a group sync
func (g *GitLabAPI) SyncGroups(ctx context.Context, opts models.SyncOptions) (*models.SyncResponse, error) {
	return g.Sync(ctx, SyncGroups, opts)
}

// SyncBranches starts a branch sync
func (g *GitLabAPI) SyncBranches(ctx context.Context, opts models.SyncOptions) (*models.SyncResponse, error) {
	return g.Sync(ctx, SyncBranches, opts)
}

// SyncPermissions starts a permission sync
func (g *GitLabAPI) SyncPermissions(ctx context.Context, opts models.SyncOptions) (*models.SyncResponse, error) {
	return g.Sync(ctx, SyncPermissions, opts)
}

// SyncAll syncs everything
func (g *GitLabAPI) SyncAll(ctx context.Context, opts models.SyncOptions) (*models.SyncResponse, error) {
	return g.Sync(ctx, SyncAll, opts)
}

func listQuery(p models.ListParams) query {
	q := query{}.setInt("page", p.Page).setInt("page_size", p.PageSize).set("search", p.Search)
	if p.All {
		q.setBool("all", true)
	}
	return q
}

// Repositories lists mirrored repositories
func (g *GitLabAPI) Repositories(ctx context.Context, p models.ListParams) (*models.RepositoryList, error) {
	return call[models.RepositoryList](ctx, g.d, client.Request{
		Path:  "/gitlab/repositories",
		Query: listQuery(p).values(),
	})
}

// Groups lists mirrored groups
func (g *GitLabAPI) Groups(ctx context.Context, p models.ListParams) (*models.GroupList, error) {
	return call[models.GroupList](ctx, g.d, client.Request{
		Path:  "/gitlab/groups",
		Query: listQuery(p).values(),
	})
}

// RepositoryBranches lists the branches of one repository
func (g *GitLabAPI) RepositoryBranches(ctx context.Context, repoID int) (*models.BranchList, error) {
	return call[models.BranchList](ctx, g.d, client.Request{
		Path: "/gitlab/repository/" + pathID(repoID) + "/branches",
	})
}

// RepositoryPermissions lists the members of one repository
func (g *GitLabAPI) RepositoryPermissions(ctx context.Context, repoID int) (*models.PermissionList, error) {
	return call[models.PermissionList](ctx, g.d, client.Request{
		Path: "/gitlab/repository/" + pathID(repoID) + "/permissions",
	})
}

// CreateTag creates a tag and records it
func (g *GitLabAPI) CreateTag(ctx context.Context, req models.TagRequest) (*models.DataResponse[map[string]interface{}], error) {
	return call[models.DataResponse[map[string]interface{}]](ctx, g.d, client.Request{
		Method: http.MethodPost,
		Path:   "/gitlab/create-tag",
		Body:   req,
	})
}

// Todos lists GitLab todos (admin only)
func (g *GitLabAPI) Todos(ctx context.Context, f models.TodoFilter) (*models.TodoList, error) {
	q := query{}.
		set("state", f.State).
		set("action", f.Action).
		setInt("project_id", f.ProjectID).
		set("type", f.Type).
		set("project_name", f.ProjectName).
		set("branch", f.Branch)
	return call[models.TodoList](ctx, g.d, client.Request{
		Path:  "/gitlab/todos",
		Query: q.values(),
	})
}

// MarkTodoDone marks one todo as done
func (g *GitLabAPI) MarkTodoDone(ctx context.Context, todoID int) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, g.d, client.Request{
		Method: http.MethodPost,
		Path:   "/gitlab/todos/" + pathID(todoID) + "/mark-done",
	})
}

// MarkAllTodosDone marks every pending todo as done
func (g *GitLabAPI) MarkAllTodosDone(ctx context.Context) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, g.d, client.Request{
		Method: http.MethodPost,
		Path:   "/gitlab/todos/mark-all-done",
	})
}

// BranchSummaries lists per-repository branch statistics
func (g *GitLabAPI) BranchSummaries(ctx context.Context, f models.SummaryFilter) (*models.DataResponse[[]models.BranchSummary], error) {
	q := query{}.set("repository_name", f.RepositoryName).setInt("min_total_branches", f.MinTotalBranches)
	if f.HasDeletable != nil {
		q.setBool("has_deletable", *f.HasDeletable)
	}
	return call[models.DataResponse[[]models.BranchSummary]](ctx, g.d, client.Request{
		Path:  "/gitlab/branches/summary",
		Query: q.values(),
	})
}

// GlobalBranchStatistics returns branch statistics across all repositories
func (g *GitLabAPI) GlobalBranchStatistics(ctx context.Context) (*models.DataResponse[map[string]interface{}], error) {
	return call[models.DataResponse[map[string]interface{}]](ctx, g.d, client.Request{
		Path: "/gitlab/branches/summary/global",
	})
}

// RepositoryBranchSummary returns one repository's branch statistics
func (g *GitLabAPI) RepositoryBranchSummary(ctx context.Context, repoID int) (*models.DataResponse[models.BranchSummary], error) {
	return call[models.DataResponse[models.BranchSummary]](ctx, g.d, client.Request{
		Path: "/gitlab/branches/summary/repository/" + pathID(repoID),
	})
}

// GenerateBranchSummaries regenerates every repository's summary
func (g *GitLabAPI) GenerateBranchSummaries(ctx context.Context, req models.GenerateSummaryRequest) (*models.SyncResponse, error) {
	return call[models.SyncResponse](ctx, g.d, client.Request{
		Method: http.MethodPost,
		Path:   "/gitlab/branches/summary/generate",
		Body:   req,
	})
}

// GenerateRepositoryBranchSummary regenerates one repository's summary
func (g *GitLabAPI) GenerateRepositoryBranchSummary(ctx context.Context, repoID int) (*models.DataResponse[map[string]interface{}], error) {
	return call[models.DataResponse[map[string]interface{}]](ctx, g.d, client.Request{
		Method: http.MethodPost,
		Path:   "/gitlab/branches/summary/repository/" + pathID(repoID) + "/generate",
	})
}
