// ABOUTME: Branch rule and branch creation endpoint wrappers
// ABOUTME: Rule CRUD, pattern tests, rule application, deletion reports and branch creation

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// BranchesAPI wraps /branch-rules and branch creation endpoints
type BranchesAPI struct {
	d             Doer
	createTimeout time.Duration
}

// Rules lists branch rules, including inactive ones unless activeOnly is set
func (b *BranchesAPI) Rules(ctx context.Context, activeOnly bool) (*models.BranchRuleList, error) {
	return call[models.BranchRuleList](ctx, b.d, client.Request{
		Path:  "/branch-rules",
		Query: query{}.setBool("include_inactive", !activeOnly).values(),
	})
}

// CreateRule creates a branch rule
func (b *BranchesAPI) CreateRule(ctx context.Context, in models.BranchRuleInput) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, b.d, client.Request{
		Method: http.MethodPost,
		Path:   "/branch-rules",
		Body:   in,
	})
}

// Rule returns one branch rule
func (b *BranchesAPI) Rule(ctx context.Context, id int) (*models.BranchRuleResponse, error) {
	return call[models.BranchRuleResponse](ctx, b.d, client.Request{
		Path: "/branch-rules/" + pathID(id),
	})
}

// UpdateRule updates the fields set in in
func (b *BranchesAPI) UpdateRule(ctx context.Context, id int, in models.BranchRuleInput) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, b.d, client.Request{
		Method: http.MethodPut,
		Path:   "/branch-rules/" + pathID(id),
		Body:   in,
	})
}

// DeleteRule deletes a branch rule
func (b *BranchesAPI) DeleteRule(ctx context.Context, id int) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, b.d, client.Request{
		Method: http.MethodDelete,
		Path:   "/branch-rules/" + pathID(id),
	})
}

// TestPattern reports which of branches match pattern
func (b *BranchesAPI) TestPattern(ctx context.Context, pattern string, branches []string) (*models.PatternTestResult, error) {
	if branches == nil {
		branches = []string{}
	}
	return call[models.PatternTestResult](ctx, b.d, client.Request{
		Method: http.MethodPost,
		Path:   "/branch-rules/test-pattern",
		Body:   models.PatternTestRequest{Pattern: pattern, TestBranches: branches},
	})
}

// ApplyRules re-evaluates rules against branches; repositoryID 0 means all
func (b *BranchesAPI) ApplyRules(ctx context.Context, repositoryID int) (*models.ApplyRulesResult, error) {
	return call[models.ApplyRulesResult](ctx, b.d, client.Request{
		Method: http.MethodPost,
		Path:   "/branch-rules/apply",
		Query:  query{}.setInt("repository_id", repositoryID).values(),
	})
}

// DeletionReport returns the deletion summary; repositoryID 0 means all
func (b *BranchesAPI) DeletionReport(ctx context.Context, repositoryID int) (*models.DataResponse[models.DeletionReport], error) {
	return call[models.DataResponse[models.DeletionReport]](ctx, b.d, client.Request{
		Path:  "/branch-rules/deletion-report",
		Query: query{}.setInt("repository_id", repositoryID).values(),
	})
}

// ExportDeletionReport downloads the deletion report spreadsheet. The raw
// response is returned so callers can save it under Response.Filename().
func (b *BranchesAPI) ExportDeletionReport(ctx context.Context, repositoryID int) (*client.Response, error) {
	return b.d.Do(ctx, client.Request{
		Path:         "/branch-rules/deletion-report/excel",
		Query:        query{}.setInt("repository_id", repositoryID).values(),
		ResponseType: client.ResponseBlob,
	})
}

// CreateBranch creates a branch in a project and its submodules. It uses the
// long branch creation timeout.
func (b *BranchesAPI) CreateBranch(ctx context.Context, req models.CreateBranchRequest) (*models.DataResponse[models.CreateBranchResult], error) {
	return call[models.DataResponse[models.CreateBranchResult]](ctx, b.d, client.Request{
		Method:  http.MethodPost,
		Path:    "/gitlab/branches",
		Body:    req,
		Timeout: b.createTimeout,
	})
}

// BranchExists reports whether branchName already exists in the project
func (b *BranchesAPI) BranchExists(ctx context.Context, projectID int, branchName string) (*models.DataResponse[models.BranchExists], error) {
	return call[models.DataResponse[models.BranchExists]](ctx, b.d, client.Request{
		Path:  "/gitlab/branches/exists",
		Query: query{}.setInt("project_id", projectID).set("branch_name", branchName).values(),
	})
}
