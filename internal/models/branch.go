// ABOUTME: Branch rule, deletion report and branch creation types
// ABOUTME: Covers /branch-rules and the /gitlab/branches creation and history endpoints

package models

// BranchRule classifies branches by pattern and decides their retention
type BranchRule struct {
	ID            int    `json:"id"`
	RuleName      string `json:"rule_name"`
	BranchPattern string `json:"branch_pattern"`
	BranchType    string `json:"branch_type"`
	IsDeletable   bool   `json:"is_deletable"`
	RetentionDays *int   `json:"retention_days,omitempty"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
	Priority      int    `json:"priority"`
	CreatedAt     string `json:"created_at,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
	BranchCount   *int   `json:"branch_count,omitempty"`
}

// BranchRuleList is returned by GET /branch-rules
type BranchRuleList struct {
	Success bool         `json:"success"`
	Rules   []BranchRule `json:"rules"`
	Count   int          `json:"count"`
}

// BranchRuleResponse is returned by GET /branch-rules/{id}
type BranchRuleResponse struct {
	Success bool       `json:"success"`
	Rule    BranchRule `json:"rule"`
}

// BranchRuleInput is the body for creating or updating a rule. Nil fields
// are left out so updates stay partial.
type BranchRuleInput struct {
	RuleName      *string `json:"rule_name,omitempty"`
	BranchPattern *string `json:"branch_pattern,omitempty"`
	BranchType    *string `json:"branch_type,omitempty"`
	IsDeletable   *bool   `json:"is_deletable,omitempty"`
	RetentionDays *int    `json:"retention_days,omitempty"`
	Description   *string `json:"description,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
	Priority      *int    `json:"priority,omitempty"`
}

// PatternTestRequest is the body of /branch-rules/test-pattern
type PatternTestRequest struct {
	Pattern      string   `json:"pattern"`
	TestBranches []string `json:"test_branches"`
}

// PatternMatch is one branch's result in a pattern test
type PatternMatch struct {
	BranchName string `json:"branch_name"`
	IsMatch    bool   `json:"is_match"`
}

// PatternTestResult is returned by /branch-rules/test-pattern
type PatternTestResult struct {
	Success bool           `json:"success"`
	Pattern string         `json:"pattern"`
	Results []PatternMatch `json:"results"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ApplyRulesResult is returned by /branch-rules/apply
type ApplyRulesResult struct {
	Success bool        `json:"success"`
	Count   int         `json:"count"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// DeletionSummary totals the deletion report
type DeletionSummary struct {
	TotalBranches     int `json:"total_branches"`
	DeletableBranches int `json:"deletable_branches"`
	ProtectedBranches int `json:"protected_branches"`
	ExpiredBranches   int `json:"expired_branches"`
}

// TypeStatistics counts branches of one type
type TypeStatistics struct {
	Total     int `json:"total"`
	Deletable int `json:"deletable"`
	Expired   int `json:"expired"`
}

// DeletableBranch is one branch the rules mark as deletable
type DeletableBranch struct {
	ID                int    `json:"id"`
	RepositoryID      int    `json:"repository_id"`
	RepositoryName    string `json:"repository_name"`
	BranchName        string `json:"branch_name"`
	BranchType        string `json:"branch_type,omitempty"`
	LastCommitDate    string `json:"last_commit_date,omitempty"`
	RetentionDeadline string `json:"retention_deadline,omitempty"`
	IsExpired         bool   `json:"is_expired"`
	DeletionReason    string `json:"deletion_reason,omitempty"`
	MatchedRuleID     *int   `json:"matched_rule_id,omitempty"`
	Protected         bool   `json:"protected"`
}

// DeletionReport is the data of /branch-rules/deletion-report
type DeletionReport struct {
	Summary           DeletionSummary           `json:"summary"`
	BranchesByType    map[string]TypeStatistics `json:"branches_by_type"`
	DeletableBranches []DeletableBranch         `json:"deletable_branches"`
}

// CreateBranchRequest is the body of POST /gitlab/branches
type CreateBranchRequest struct {
	ProjectID     int    `json:"project_id"`
	NewBranchName string `json:"new_branch_name"`
	SourceRef     string `json:"source_ref"`
	GroupName     string `json:"group_name,omitempty"`
	ProjectName   string `json:"project_name,omitempty"`
	JiraTicket    string `json:"jira_ticket,omitempty"`
	CreatedBy     string `json:"created_by,omitempty"`
}

// SubmoduleResult reports what happened to one submodule
type SubmoduleResult struct {
	URL         string `json:"url,omitempty"`
	Path        string `json:"path"`
	Project     string `json:"project,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	FixedBranch string `json:"fixed_branch,omitempty"`
	RefSource   string `json:"ref_source,omitempty"`
}

// CreateBranchResult is the data of POST /gitlab/branches
type CreateBranchResult struct {
	CreatedInParent   bool              `json:"created_in_parent"`
	ParentCreated     string            `json:"parent_created,omitempty"`
	HasSubmodules     bool              `json:"has_submodules"`
	SubmodulesMessage string            `json:"submodules_message,omitempty"`
	Submodules        []SubmoduleResult `json:"submodules"`
}

// BranchExists is the data of /gitlab/branches/exists
type BranchExists struct {
	Exists bool `json:"exists"`
}

// BranchCreationRecord is one entry of the branch creation history
type BranchCreationRecord struct {
	ID           int    `json:"id"`
	ProjectID    int    `json:"project_id"`
	ProjectName  string `json:"project_name,omitempty"`
	BranchName   string `json:"branch_name"`
	SourceRef    string `json:"source_ref,omitempty"`
	SourceCommit string `json:"source_commit,omitempty"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	CreatedAt    string `json:"created_at"`
	CreatedBy    string `json:"created_by,omitempty"`
	JiraTicket   string `json:"jira_ticket,omitempty"`
}

// BranchCreationPage is the data of /gitlab/branches/history
type BranchCreationPage struct {
	Records    []BranchCreationRecord `json:"records"`
	Total      int                    `json:"total"`
	Page       int                    `json:"page"`
	PageSize   int                    `json:"pageSize"`
	TotalPages int                    `json:"totalPages"`
}

// HistoryFilter are the query parameters accepted by /gitlab/branches/history
type HistoryFilter struct {
	Page       int
	PageSize   int
	ProjectID  int
	BranchName string
	Status     string
	Search     string
	JiraTicket string
	StartDate  string
	EndDate    string
}
