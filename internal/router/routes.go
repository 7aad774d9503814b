// ABOUTME: Declarative route table for the application views
// ABOUTME: Each top-level path is a layout record with one child carrying the view metadata

package router

import (
	"net/url"
	"strings"
)

// Well-known paths
const (
	RootPath      = "/"
	DashboardPath = "/dashboard"
	NotFoundName  = "NotFound"
)

// Route is one record of the route table. Layout records hold the path;
// their child holds the name, title and access flags.
type Route struct {
	Path          string
	Name          string
	Title         string
	Icon          string
	RequiresAuth  bool
	RequiresAdmin bool
	Children      []Route
}

// Match is the result of resolving a path against the route table
type Match struct {
	Target  string
	Records []Route
	Name    string
}

// Leaf returns the innermost matched record
func (m Match) Leaf() Route {
	if len(m.Records) == 0 {
		return Route{}
	}
	return m.Records[len(m.Records)-1]
}

// Title returns the leaf record's title
func (m Match) Title() string {
	return m.Leaf().Title
}

// RequiresAuth reports whether any matched record requires a session
func (m Match) RequiresAuth() bool {
	for _, r := range m.Records {
		if r.RequiresAuth {
			return true
		}
	}
	return false
}

// RequiresAdmin reports whether any matched record requires an admin
func (m Match) RequiresAdmin() bool {
	for _, r := range m.Records {
		if r.RequiresAdmin {
			return true
		}
	}
	return false
}

func view(path, name, title, icon string, auth, admin bool) Route {
	return Route{
		Path: path,
		Children: []Route{
			{Name: name, Title: title, Icon: icon, RequiresAuth: auth, RequiresAdmin: admin},
		},
	}
}

// Routes returns the application route table.
func Routes() []Route {
	return []Route{
		view("/", "Home", "Home", "home", false, false),

		// Mirror data
		view("/dashboard", "Dashboard", "Dashboard", "dashboard", true, false),
		view("/repositories", "Repositories", "Repositories", "repo", true, false),
		view("/groups", "Groups", "Groups", "group", true, false),
		view("/branches", "Branches", "Branch Summary", "branch", true, false),

		// Branch management
		view("/branch-rules", "BranchRules", "Branch Rules", "rules", true, false),
		view("/branch-creation-history", "BranchCreationHistory", "Branch Creation History", "history", true, false),
		view("/branch-create", "BranchCreate", "Create Branch", "create", true, false),

		// Operations
		view("/logs", "Logs", "Access Logs", "logs", true, false),
		view("/tasks", "Tasks", "Tasks", "tasks", true, false),
		view("/settings", "Settings", "Settings", "settings", true, false),

		// Admin only
		view("/todos", "Todos", "GitLab Todos", "todo", true, true),
		view("/home-content", "HomeContent", "Home Content", "content", true, true),
	}
}

// notFound is the catch-all record
func notFound() Route {
	return Route{
		Path:     "*",
		Children: []Route{{Name: NotFoundName, Title: "Not Found", Icon: "warning"}},
	}
}

// Resolve matches path against the route table. Unknown paths match the
// public NotFound record.
func Resolve(path string) Match {
	target := normalize(path)
	for _, route := range Routes() {
		if route.Path != target {
			continue
		}
		return match(target, route)
	}
	return match(target, notFound())
}

func match(target string, layout Route) Match {
	records := []Route{layout}
	records = append(records, layout.Children...)
	m := Match{Target: target, Records: records}
	m.Name = m.Leaf().Name
	return m
}

// normalize drops query and fragment and trailing slashes
func normalize(path string) string {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path != RootPath {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = RootPath
		}
	}
	return path
}
