// ABOUTME: Branch creation history endpoint wrappers
// ABOUTME: Paged and filtered records, aggregate stats, and single-record lookup

package api

import (
	"context"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// HistoryAPI wraps /gitlab/branches/history endpoints
type HistoryAPI struct {
	d Doer
}

// Records lists branch creation records. The backend uses camelCase
// parameter names here.
func (h *HistoryAPI) Records(ctx context.Context, f models.HistoryFilter) (*models.DataResponse[models.BranchCreationPage], error) {
	q := query{}.
		setInt("page", f.Page).
		setInt("pageSize", f.PageSize).
		setInt("projectId", f.ProjectID).
		set("branchName", f.BranchName).
		set("status", f.Status).
		set("search", f.Search).
		set("jiraTicket", f.JiraTicket).
		set("startDate", f.StartDate).
		set("endDate", f.EndDate)
	return call[models.DataResponse[models.BranchCreationPage]](ctx, h.d, client.Request{
		Path:  "/gitlab/branches/history",
		Query: q.values(),
	})
}

// Stats returns aggregate branch creation statistics
func (h *HistoryAPI) Stats(ctx context.Context) (*models.DataResponse[map[string]interface{}], error) {
	return call[models.DataResponse[map[string]interface{}]](ctx, h.d, client.Request{
		Path: "/gitlab/branches/history/stats",
	})
}

// Record returns one branch creation record
func (h *HistoryAPI) Record(ctx context.Context, id int) (*models.DataResponse[models.BranchCreationRecord], error) {
	return call[models.DataResponse[models.BranchCreationRecord]](ctx, h.d, client.Request{
		Path: "/gitlab/branches/history/" + pathID(id),
	})
}
