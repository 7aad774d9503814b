// ABOUTME: Background task types returned by /tasks
// ABOUTME: Tasks track long-running syncs and summary generation on the backend

package models

// Task status values
const (
	TaskPending   = "pending"
	TaskRunning   = "running"
	TaskCompleted = "completed"
	TaskFailed    = "failed"
	TaskCancelled = "cancelled"
)

// Task is a backend background job
type Task struct {
	TaskID      string                 `json:"task_id"`
	TaskType    string                 `json:"task_type"`
	Status      string                 `json:"status"`
	CreatedAt   string                 `json:"created_at,omitempty"`
	StartedAt   string                 `json:"started_at,omitempty"`
	CompletedAt string                 `json:"completed_at,omitempty"`
	Result      interface{}            `json:"result,omitempty"`
	Error       string                 `json:"error,omitempty"`
	Progress    int                    `json:"progress"`
	Message     string                 `json:"message,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

// Finished reports whether the task reached a terminal state
func (t Task) Finished() bool {
	switch t.Status {
	case TaskCompleted, TaskFailed, TaskCancelled:
		return true
	default:
		return false
	}
}

// TaskList is returned by GET /tasks
type TaskList struct {
	Success bool   `json:"success"`
	Tasks   []Task `json:"tasks"`
	Count   int    `json:"count"`
}

// TaskResponse is returned by GET /tasks/{id}
type TaskResponse struct {
	Success bool `json:"success"`
	Task    Task `json:"task"`
}

// TaskFilter are the query parameters accepted by GET /tasks
type TaskFilter struct {
	TaskType string
	Status   string
	Limit    int
}
