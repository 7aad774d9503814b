// ABOUTME: System endpoint wrappers
// ABOUTME: Health, statistics, access logs, log import and database initialization

package api

import (
	"context"
	"net/http"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// SystemAPI wraps system-level endpoints
type SystemAPI struct {
	d Doer
}

// Logs returns the most recent access log entries
func (s *SystemAPI) Logs(ctx context.Context, limit int) (*models.LogList, error) {
	return call[models.LogList](ctx, s.d, client.Request{
		Path:  "/logs",
		Query: query{}.setInt("limit", limit).values(),
	})
}

// ParseLog imports a GitLab API access log on the backend
func (s *SystemAPI) ParseLog(ctx context.Context, req models.ParseLogRequest) (*models.ParseLogResult, error) {
	return call[models.ParseLogResult](ctx, s.d, client.Request{
		Method: http.MethodPost,
		Path:   "/parse-log",
		Body:   req,
	})
}

// Status returns the log import status
func (s *SystemAPI) Status(ctx context.Context) (*models.ImportStatus, error) {
	return call[models.ImportStatus](ctx, s.d, client.Request{Path: "/status"})
}

// ImportHistory returns per-day log import details
func (s *SystemAPI) ImportHistory(ctx context.Context) (*models.ImportHistory, error) {
	return call[models.ImportHistory](ctx, s.d, client.Request{Path: "/import-history"})
}

// Health calls the /health endpoint
func (s *SystemAPI) Health(ctx context.Context) (*models.HealthResponse, error) {
	return call[models.HealthResponse](ctx, s.d, client.Request{Path: "/health"})
}

// Statistics returns mirror counts
func (s *SystemAPI) Statistics(ctx context.Context) (*models.Statistics, error) {
	return call[models.Statistics](ctx, s.d, client.Request{Path: "/statistics"})
}

// InitDB creates the backend's database tables
func (s *SystemAPI) InitDB(ctx context.Context) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, s.d, client.Request{
		Method: http.MethodPost,
		Path:   "/init-db",
	})
}
