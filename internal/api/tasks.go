// ABOUTME: Background task endpoint wrappers
// ABOUTME: List, inspect and cancel backend tasks

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// TasksAPI wraps /tasks endpoints
type TasksAPI struct {
	d Doer
}

// List returns recent tasks matching f
func (t *TasksAPI) List(ctx context.Context, f models.TaskFilter) (*models.TaskList, error) {
	q := query{}.set("task_type", f.TaskType).set("status", f.Status).setInt("limit", f.Limit)
	return call[models.TaskList](ctx, t.d, client.Request{
		Path:  "/tasks",
		Query: q.values(),
	})
}

// Get returns one task
func (t *TasksAPI) Get(ctx context.Context, taskID string) (*models.TaskResponse, error) {
	return call[models.TaskResponse](ctx, t.d, client.Request{
		Path: "/tasks/" + url.PathEscape(taskID),
	})
}

// Cancel cancels a pending task
func (t *TasksAPI) Cancel(ctx context.Context, taskID string) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, t.d, client.Request{
		Method: http.MethodPost,
		Path:   "/tasks/" + url.PathEscape(taskID) + "/cancel",
	})
}
