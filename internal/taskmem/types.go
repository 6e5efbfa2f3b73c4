// Package taskmem implements the Task/Memory Store: hierarchical tasks and
// categorized memories, each collection owned behind its own narrow CRUD
// methods and persisted as a write-through JSON document with atomic
// rename, backed by a mutex-guarded in-memory map flushed to disk.
package taskmem

import "time"

// Status is a Task's lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
)

// Task is a hierarchical work item.
type Task struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Status         Status    `json:"status"`
	Priority       int       `json:"priority"` // 1..10
	Complexity     int       `json:"complexity"` // 1..10
	EstimatedHours float64   `json:"estimatedHours"`
	ActualHours    float64   `json:"actualHours"`
	Tags           []string  `json:"tags"`
	ParentID       string    `json:"parentId,omitempty"`
	ProjectID      string    `json:"projectId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// Memory is a categorized note.
type Memory struct {
	ID           string    `json:"id"`
	Category     string    `json:"category"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Importance   int       `json:"importance"` // 1..10
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// Project groups tasks.
type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// defaultCategories are the built-in memory categories, unioned at
// runtime with any dynamically registered ones.
var defaultCategories = []string{"general", "architecture", "decision", "bug", "preference"}

// TaskFilter narrows the results of ListTasks.
type TaskFilter struct {
	Status      Status
	MinPriority int
	MaxPriority int
	ProjectID   string
	FreeText    string
	Tags        []string
}

// Stats is the aggregate summary returned by Store.Stats.
type Stats struct {
	Total              int
	ByStatus           map[Status]int
	CompletionRate     float64
	AvgCompletionHours float64
}

// Event describes one successful mutation of the store. The store itself
// has no listener registry and never emits Events; the HTTP gateway's
// WebSocket hub publishes its own ChangeEvent carrying the mutated entity
// and does not use this type.
type Event struct {
	Entity string // "task", "memory", or "project"
	Action string // "created", "updated", "moved", or "deleted"
	ID     string
}
