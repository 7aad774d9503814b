// ABOUTME: Home page link endpoint wrappers
// ABOUTME: Public listing plus admin-only create, update, delete, toggle and reorder

package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gitlab-insight/insight/internal/client"
	"github.com/gitlab-insight/insight/internal/models"
)

// HomeLinksAPI wraps /home-links endpoints
type HomeLinksAPI struct {
	d Doer
}

// List returns all links grouped for the landing page
func (h *HomeLinksAPI) List(ctx context.Context, includeInactive bool) (*models.DataResponse[models.HomeLinks], error) {
	req := client.Request{Path: "/home-links"}
	if includeInactive {
		req.Query = url.Values{"include_inactive": {"true"}}
	}
	return call[models.DataResponse[models.HomeLinks]](ctx, h.d, req)
}

// ByCategory returns the links of one category
func (h *HomeLinksAPI) ByCategory(ctx context.Context, category string) (*models.DataResponse[[]models.HomeLink], error) {
	return call[models.DataResponse[[]models.HomeLink]](ctx, h.d, client.Request{
		Path: "/home-links/category/" + url.PathEscape(category),
	})
}

// ByGroup returns the links of one group within a category
func (h *HomeLinksAPI) ByGroup(ctx context.Context, category, group string) (*models.DataResponse[[]models.HomeLink], error) {
	return call[models.DataResponse[[]models.HomeLink]](ctx, h.d, client.Request{
		Path: "/home-links/category/" + url.PathEscape(category) + "/group/" + url.PathEscape(group),
	})
}

// Get returns one link
func (h *HomeLinksAPI) Get(ctx context.Context, id int) (*models.DataResponse[models.HomeLink], error) {
	return call[models.DataResponse[models.HomeLink]](ctx, h.d, client.Request{
		Path: "/home-links/" + pathID(id),
	})
}

// Create adds a link
func (h *HomeLinksAPI) Create(ctx context.Context, link models.HomeLink) (*models.DataResponse[models.HomeLink], error) {
	return call[models.DataResponse[models.HomeLink]](ctx, h.d, client.Request{
		Method: http.MethodPost,
		Path:   "/home-links",
		Body:   link,
	})
}

// Update changes the given fields of a link
func (h *HomeLinksAPI) Update(ctx context.Context, id int, fields map[string]interface{}) (*models.DataResponse[models.HomeLink], error) {
	return call[models.DataResponse[models.HomeLink]](ctx, h.d, client.Request{
		Method: http.MethodPut,
		Path:   "/home-links/" + pathID(id),
		Body:   fields,
	})
}

// Delete removes a link
func (h *HomeLinksAPI) Delete(ctx context.Context, id int) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, h.d, client.Request{
		Method: http.MethodDelete,
		Path:   "/home-links/" + pathID(id),
	})
}

// Toggle flips a link between active and inactive
func (h *HomeLinksAPI) Toggle(ctx context.Context, id int) (*models.DataResponse[models.HomeLink], error) {
	return call[models.DataResponse[models.HomeLink]](ctx, h.d, client.Request{
		Method: http.MethodPost,
		Path:   "/home-links/" + pathID(id) + "/toggle",
	})
}

// Sort updates the sort order of several links at once
func (h *HomeLinksAPI) Sort(ctx context.Context, orders []models.LinkOrder) (*models.MessageResponse, error) {
	return call[models.MessageResponse](ctx, h.d, client.Request{
		Method: http.MethodPut,
		Path:   "/home-links/sort",
		Body:   map[string]interface{}{"orders": orders},
	})
}
