// ABOUTME: GitLab mirror types: repositories, groups, branches, permissions, todos
// ABOUTME: Field names follow the backend's JSON payloads

package models

// Repository represents a mirrored GitLab project
type Repository struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	NameWithNamespace string `json:"name_with_namespace"`
	Description       string `json:"description,omitempty"`
	WebURL            string `json:"web_url,omitempty"`
	DefaultBranch     string `json:"default_branch,omitempty"`
	Visibility        string `json:"visibility,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
	LastActivityAt    string `json:"last_activity_at,omitempty"`
	SyncTime          string `json:"sync_time,omitempty"`
}

// RepositoryList is returned by /gitlab/repositories
type RepositoryList struct {
	Success      bool         `json:"success"`
	Repositories []Repository `json:"repositories"`
	Total        int          `json:"total"`
	Page         int          `json:"page"`
	PageSize     int          `json:"page_size"`
}

// Group represents a mirrored GitLab group
type Group struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	FullPath    string `json:"full_path,omitempty"`
	Description string `json:"description,omitempty"`
	WebURL      string `json:"web_url,omitempty"`
	Visibility  string `json:"visibility,omitempty"`
	SyncTime    string `json:"sync_time,omitempty"`
}

// GroupList is returned by /gitlab/groups
type GroupList struct {
	Success  bool    `json:"success"`
	Groups   []Group `json:"groups"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// ListParams are the paging and search parameters shared by list endpoints
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	All      bool
}

// Branch is one branch of a mirrored repository
type Branch struct {
	BranchName        string `json:"branch_name"`
	CommitID          string `json:"commit_id,omitempty"`
	CommitMessage     string `json:"commit_message,omitempty"`
	CommitAuthorName  string `json:"commit_author_name,omitempty"`
	CommitAuthorEmail string `json:"commit_author_email,omitempty"`
	LastCommitDate    string `json:"last_commit_date,omitempty"`
	Protected         bool   `json:"protected"`
	SyncTime          string `json:"sync_time,omitempty"`
}

// BranchList is returned by /gitlab/repository/{id}/branches
type BranchList struct {
	Success      bool     `json:"success"`
	RepositoryID int      `json:"repository_id"`
	Branches     []Branch `json:"branches"`
	Count        int      `json:"count"`
}

// Permission is one member's access to a repository
type Permission struct {
	MemberType      string `json:"member_type"`
	MemberID        int    `json:"member_id"`
	MemberName      string `json:"member_name"`
	AccessLevel     int    `json:"access_level"`
	AccessLevelName string `json:"access_level_name"`
	SyncTime        string `json:"sync_time,omitempty"`
}

// PermissionList is returned by /gitlab/repository/{id}/permissions
type PermissionList struct {
	Success      bool         `json:"success"`
	RepositoryID int          `json:"repository_id"`
	Permissions  []Permission `json:"permissions"`
	Count        int          `json:"count"`
}

// SyncResponse is returned by the /gitlab/sync-* endpoints. Asynchronous
// syncs return a task id to poll.
type SyncResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	TaskID    string `json:"task_id,omitempty"`
	IsNewTask bool   `json:"is_new_task,omitempty"`
	StatusURL string `json:"status_url,omitempty"`
	Count     int    `json:"count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SyncOptions are the query parameters accepted by sync endpoints
type SyncOptions struct {
	Async bool
	Force bool
}

// TagRequest is the body of /gitlab/create-tag
type TagRequest struct {
	TagName      string `json:"tag_name"`
	RepositoryID int    `json:"repository_id"`
	Branch       string `json:"branch"`
	User         string `json:"user,omitempty"`
	Description  string `json:"description,omitempty"`
}

// SummaryFilter are the query parameters accepted by /gitlab/branches/summary
type SummaryFilter struct {
	RepositoryName   string
	MinTotalBranches int
	HasDeletable     *bool
}

// GenerateSummaryRequest is the body of /gitlab/branches/summary/generate
type GenerateSummaryRequest struct {
	ForceRefresh bool `json:"force_refresh"`
	Async        bool `json:"async"`
}

// TodoAuthor is the user who triggered a todo
type TodoAuthor struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

// TodoProject is the project a todo belongs to
type TodoProject struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	NameWithNamespace string `json:"name_with_namespace"`
}

// Todo is a pending GitLab action item
type Todo struct {
	ID           int                    `json:"id"`
	State        string                 `json:"state"`
	Action       string                 `json:"action"`
	ActionName   string                 `json:"action_name"`
	TargetType   string                 `json:"target_type"`
	Title        string                 `json:"title"`
	Body         string                 `json:"body"`
	Author       TodoAuthor             `json:"author"`
	Project      TodoProject            `json:"project"`
	Target       map[string]interface{} `json:"target,omitempty"`
	TargetURL    string                 `json:"target_url"`
	TargetBranch string                 `json:"target_branch,omitempty"`
	CreatedAt    string                 `json:"created_at,omitempty"`
}

// TodoList is returned by /gitlab/todos
type TodoList struct {
	Success bool   `json:"success"`
	Todos   []Todo `json:"todos"`
	Total   int    `json:"total"`
}

// TodoFilter are the query parameters accepted by /gitlab/todos
type TodoFilter struct {
	State       string // pending, done or all
	Action      string
	ProjectID   int
	Type        string
	ProjectName string
	Branch      string
}

// BranchSummary is the per-repository branch statistics row
type BranchSummary struct {
	ID                          int                    `json:"id"`
	RepositoryID                int                    `json:"repository_id"`
	RepositoryName              string                 `json:"repository_name"`
	TotalBranches               int                    `json:"total_branches"`
	ProtectedBranches           int                    `json:"protected_branches"`
	DeletableBranches           int                    `json:"deletable_branches"`
	FeatureBranches             int                    `json:"feature_branches"`
	DevelopBranches             int                    `json:"develop_branches"`
	ReleaseBranches             int                    `json:"release_branches"`
	HotfixBranches              int                    `json:"hotfix_branches"`
	MainBranches                int                    `json:"main_branches"`
	StabilizationBranches       int                    `json:"stabilization_branches"`
	OtherBranches               int                    `json:"other_branches"`
	Active30Days                int                    `json:"active_30days"`
	Active90Days                int                    `json:"active_90days"`
	Inactive180Days             int                    `json:"inactive_180days"`
	Inactive365Days             int                    `json:"inactive_365days"`
	LatestBranchName            string                 `json:"latest_branch_name,omitempty"`
	LatestBranchDate            string                 `json:"latest_branch_date,omitempty"`
	OldestBranchName            string                 `json:"oldest_branch_name,omitempty"`
	OldestBranchDate            string                 `json:"oldest_branch_date,omitempty"`
	DefaultBranch               string                 `json:"default_branch,omitempty"`
	DefaultBranchCommit         string                 `json:"default_branch_commit,omitempty"`
	DefaultBranchLastCommitDate string                 `json:"default_branch_last_commit_date,omitempty"`
	LastSyncTime                string                 `json:"last_sync_time,omitempty"`
	DataVersion                 int                    `json:"data_version"`
	ExtraStats                  map[string]interface{} `json:"extra_stats,omitempty"`
}

// DataResponse wraps endpoints that return their payload under "data"
type DataResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
	Total   int    `json:"total,omitempty"`
}
