// ABOUTME: Endpoint wrappers for the GitLab Insight backend
// ABOUTME: Each method maps typed arguments onto one request through the shared pipeline

package api

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/gitlab-insight/insight/internal/client"
)

// DefaultBranchCreationTimeout covers branch creation across many submodules.
const DefaultBranchCreationTimeout = 240 * time.Second

// Doer sends requests through the pipeline. *client.Client implements it.
type Doer interface {
	Do(ctx context.Context, req client.Request) (*client.Response, error)
	DoJSON(ctx context.Context, req client.Request, out interface{}) error
}

// API groups every endpoint wrapper
type API struct {
	Auth      *AuthAPI
	GitLab    *GitLabAPI
	Branches  *BranchesAPI
	History   *HistoryAPI
	Tasks     *TasksAPI
	System    *SystemAPI
	HomeLinks *HomeLinksAPI
}

// Option configures the wrappers
type Option func(*API)

// WithBranchCreationTimeout overrides the timeout used for branch creation
func WithBranchCreationTimeout(d time.Duration) Option {
	return func(a *API) {
		if d > 0 {
			a.Branches.createTimeout = d
		}
	}
}

// New creates the endpoint wrappers on top of d
func New(d Doer, opts ...Option) *API {
	a := &API{
		Auth:      &AuthAPI{d: d},
		GitLab:    &GitLabAPI{d: d},
		Branches:  &BranchesAPI{d: d, createTimeout: DefaultBranchCreationTimeout},
		History:   &HistoryAPI{d: d},
		Tasks:     &TasksAPI{d: d},
		System:    &SystemAPI{d: d},
		HomeLinks: &HomeLinksAPI{d: d},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// call sends req and decodes the response into a fresh T
func call[T any](ctx context.Context, d Doer, req client.Request) (*T, error) {
	var out T
	if err := d.DoJSON(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// query collects non-zero parameters
type query url.Values

func (q query) set(key, value string) query {
	if value != "" {
		url.Values(q).Set(key, value)
	}
	return q
}

func (q query) setInt(key string, value int) query {
	if value > 0 {
		url.Values(q).Set(key, strconv.Itoa(value))
	}
	return q
}

func (q query) setBool(key string, value bool) query {
	url.Values(q).Set(key, strconv.FormatBool(value))
	return q
}

func (q query) values() url.Values {
	if len(q) == 0 {
		return nil
	}
	return url.Values(q)
}

func pathID(id int) string {
	return strconv.Itoa(id)
}
