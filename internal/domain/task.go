package domain

import (
	"time"

	"github.com/qntmpulse/pulse/internal/constants"
)

// Task is a shared unit of work in a workspace. Tasks are multi-writer and
// independently lifecycled; this core reads them from the authoritative
// store and never mutates them locally.
type Task struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`

	// Title is the human-readable summary of the task.
	Title string `json:"title"`

	// Status is the lifecycle state (todo, in_progress, done, cancelled).
	Status constants.TaskStatus `json:"status"`

	// Priority is the manually assigned priority tier.
	Priority constants.TaskPriority `json:"priority"`

	// AssignedTo is the user the task is assigned to, if any.
	AssignedTo string `json:"assigned_to,omitempty"`

	// DueDate is when the task is due (nil if undated).
	DueDate *time.Time `json:"due_date,omitempty"`

	// WorkspaceID links the task to its workspace.
	WorkspaceID string `json:"workspace_id"`

	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`

	// Metadata carries derived and advisory fields, including externally
	// computed AI signals. Merging new AI signals touches only this field.
	Metadata TaskMetadata `json:"metadata"`
}

// TaskMetadata holds advisory fields attached to a task. The AI fields are
// hints merged in from an external prioritization collaborator; they are
// never authoritative over the task itself.
type TaskMetadata struct {
	// AIPriorityScore is the externally computed priority score (0-100),
	// nil when the task has not been scored.
	AIPriorityScore *float64 `json:"ai_priority_score,omitempty"`

	// AISuggestedAssignee is the externally suggested assignee, if any.
	AISuggestedAssignee string `json:"ai_suggested_assignee,omitempty"`

	// AIPredictedDuration is the externally predicted time to completion.
	AIPredictedDuration time.Duration `json:"ai_predicted_duration,omitempty"`

	// BlocksTaskIDs lists tasks this task is blocking.
	BlocksTaskIDs []string `json:"blocks_task_ids,omitempty"`

	// BlockedByTaskIDs lists tasks blocking this task.
	BlockedByTaskIDs []string `json:"blocked_by_task_ids,omitempty"`
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	out := t
	if t.DueDate != nil {
		due := *t.DueDate
		out.DueDate = &due
	}
	if t.Metadata.AIPriorityScore != nil {
		score := *t.Metadata.AIPriorityScore
		out.Metadata.AIPriorityScore = &score
	}
	out.Metadata.BlocksTaskIDs = append([]string(nil), t.Metadata.BlocksTaskIDs...)
	out.Metadata.BlockedByTaskIDs = append([]string(nil), t.Metadata.BlockedByTaskIDs...)
	return out
}

// PriorityUpdate is one entry of an externally computed task ranking,
// keyed by task id. It is the sole input of the priority merge bridge.
type PriorityUpdate struct {
	// TaskID identifies the task the signals apply to.
	TaskID string `json:"task_id"`

	// AIScore is the computed priority score (0-100).
	AIScore float64 `json:"ai_score"`

	// SuggestedAssignee is an optional assignee recommendation.
	SuggestedAssignee string `json:"suggested_assignee,omitempty"`

	// PredictedDuration is an optional completion-time prediction.
	PredictedDuration time.Duration `json:"predicted_duration,omitempty"`
}
