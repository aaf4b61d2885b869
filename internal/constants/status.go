package constants

// DecisionPhase represents one phase of the decision drafting workflow.
// Phase values use snake_case for JSON serialization compatibility.
type DecisionPhase string

// Decision phase constants define the ordered drafting workflow:
//
//	Define → Options → Criteria → Evaluate → Decide
//
// Phase only advances forward and never skips. Backward navigation is
// allowed only to phases already visited.
const (
	// PhaseDefine is the initial phase where the decision question is framed.
	PhaseDefine DecisionPhase = "define"

	// PhaseOptions is where candidate options are collected (at least two
	// are required to advance).
	PhaseOptions DecisionPhase = "options"

	// PhaseCriteria is where evaluation criteria and weights are defined
	// (at least two are required to advance).
	PhaseCriteria DecisionPhase = "criteria"

	// PhaseEvaluate is where each option is scored against each criterion.
	PhaseEvaluate DecisionPhase = "evaluate"

	// PhaseDecide is the terminal phase where a final choice is selected.
	PhaseDecide DecisionPhase = "decide"
)

// phaseOrder is the canonical forward ordering of decision phases.
var phaseOrder = []DecisionPhase{
	PhaseDefine,
	PhaseOptions,
	PhaseCriteria,
	PhaseEvaluate,
	PhaseDecide,
}

// Phases returns the ordered list of decision phases.
func Phases() []DecisionPhase {
	out := make([]DecisionPhase, len(phaseOrder))
	copy(out, phaseOrder)
	return out
}

// Index returns the zero-based position of the phase in the workflow order,
// or -1 for an unknown phase.
func (p DecisionPhase) Index() int {
	for i, phase := range phaseOrder {
		if phase == p {
			return i
		}
	}
	return -1
}

// Next returns the phase that follows p, and false when p is terminal
// or unknown.
func (p DecisionPhase) Next() (DecisionPhase, bool) {
	i := p.Index()
	if i < 0 || i >= len(phaseOrder)-1 {
		return p, false
	}
	return phaseOrder[i+1], true
}

// Valid reports whether p is a known phase.
func (p DecisionPhase) Valid() bool {
	return p.Index() >= 0
}

// String returns the string representation of the DecisionPhase.
// This implements fmt.Stringer for convenient logging and debugging.
func (p DecisionPhase) String() string {
	return string(p)
}

// DecisionStatus represents the lifecycle state of a persisted, shared decision.
// Status values use snake_case for JSON serialization compatibility.
type DecisionStatus string

// Decision status constants define the lifecycle of a committed decision:
//
//	Proposed → Voting → Decided
//	Proposed, Voting → Cancelled
//
// Status is mutated by vote events and explicit transitions, never by the
// drafting workflow directly.
const (
	// DecisionStatusProposed indicates a decision has been shared but voting
	// has not opened yet.
	DecisionStatusProposed DecisionStatus = "proposed"

	// DecisionStatusVoting indicates a decision is open for votes.
	DecisionStatusVoting DecisionStatus = "voting"

	// DecisionStatusDecided indicates a decision has been resolved.
	DecisionStatusDecided DecisionStatus = "decided"

	// DecisionStatusCancelled indicates a decision was withdrawn.
	DecisionStatusCancelled DecisionStatus = "cancelled"
)

// String returns the string representation of the DecisionStatus.
func (s DecisionStatus) String() string {
	return string(s)
}

// Open reports whether the decision still accepts activity (votes, reminders).
func (s DecisionStatus) Open() bool {
	return s == DecisionStatusProposed || s == DecisionStatusVoting
}

// TaskStatus represents the state of a shared task.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in.
const (
	// TaskStatusTodo indicates a task has not been started.
	TaskStatusTodo TaskStatus = "todo"

	// TaskStatusInProgress indicates a task is actively being worked.
	TaskStatusInProgress TaskStatus = "in_progress"

	// TaskStatusDone indicates a task is complete.
	TaskStatusDone TaskStatus = "done"

	// TaskStatusCancelled indicates a task was abandoned.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// String returns the string representation of the TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// Active reports whether the task still counts toward workload and nudges.
func (s TaskStatus) Active() bool {
	return s == TaskStatusTodo || s == TaskStatusInProgress
}

// TaskPriority represents the manually assigned priority of a task.
type TaskPriority string

// Task priority constants, lowest to highest.
const (
	// TaskPriorityLow marks a task as low priority.
	TaskPriorityLow TaskPriority = "low"

	// TaskPriorityMedium marks a task as medium priority.
	TaskPriorityMedium TaskPriority = "medium"

	// TaskPriorityHigh marks a task as high priority.
	TaskPriorityHigh TaskPriority = "high"

	// TaskPriorityUrgent marks a task as urgent.
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Rank returns a numeric weight for sorting, higher meaning more urgent.
// Unknown priorities rank below low so they sink rather than surface.
func (p TaskPriority) Rank() int {
	switch p {
	case TaskPriorityUrgent:
		return 4
	case TaskPriorityHigh:
		return 3
	case TaskPriorityMedium:
		return 2
	case TaskPriorityLow:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the TaskPriority.
func (p TaskPriority) String() string {
	return string(p)
}

// NudgePriority represents the urgency tier of a derived nudge.
type NudgePriority string

// Nudge priority constants, highest to lowest.
const (
	// NudgePriorityUrgent marks a nudge that needs attention now.
	NudgePriorityUrgent NudgePriority = "urgent"

	// NudgePriorityImportant marks a nudge that should be handled soon.
	NudgePriorityImportant NudgePriority = "important"

	// NudgePrioritySuggestion marks an optional improvement nudge.
	NudgePrioritySuggestion NudgePriority = "suggestion"
)

// Rank returns a numeric weight for sorting, higher meaning more urgent.
func (p NudgePriority) Rank() int {
	switch p {
	case NudgePriorityUrgent:
		return 3
	case NudgePriorityImportant:
		return 2
	case NudgePrioritySuggestion:
		return 1
	default:
		return 0
	}
}

// String returns the string representation of the NudgePriority.
func (p NudgePriority) String() string {
	return string(p)
}

// NudgeType identifies the underlying condition a nudge was derived from.
// Together with the related entity id it forms the nudge's stable identity.
type NudgeType string

// Nudge type constants for the built-in rule set.
const (
	// NudgeStaleDecision flags a decision with no activity past the
	// staleness threshold.
	NudgeStaleDecision NudgeType = "stale_decision"

	// NudgeOverdueTask flags an active task past its due date.
	NudgeOverdueTask NudgeType = "overdue_task"

	// NudgeLowParticipation flags a voting decision with too few votes.
	NudgeLowParticipation NudgeType = "low_participation"

	// NudgeBlockedTask flags an active task whose blockers are all inactive,
	// meaning it could be unblocked or reassigned.
	NudgeBlockedTask NudgeType = "blocked_task"
)

// String returns the string representation of the NudgeType.
func (t NudgeType) String() string {
	return string(t)
}

// NudgeAction represents the closed set of actions a nudge can offer.
type NudgeAction string

// Nudge action constants. Dispatch over these is an exhaustive switch;
// adding a value here requires updating nudge.HandleAction.
const (
	// ActionSendReminder requests a reminder be sent for the related entity.
	ActionSendReminder NudgeAction = "send_reminder"

	// ActionReview navigates the user to the related entity.
	ActionReview NudgeAction = "review"

	// ActionReassign opens a reassignment flow for the related task.
	ActionReassign NudgeAction = "reassign"

	// ActionExtendDeadline opens a deadline-extension flow for the related task.
	ActionExtendDeadline NudgeAction = "extend_deadline"
)

// String returns the string representation of the NudgeAction.
func (a NudgeAction) String() string {
	return string(a)
}

// ConnectionStatus reflects the state of a change-feed channel.
// The coordinator folds per-subscription statuses to a single worst-case
// value for display.
type ConnectionStatus string

// Connection status constants, ordered from healthy to broken.
const (
	// ConnectionConnected indicates the subscription is live.
	ConnectionConnected ConnectionStatus = "connected"

	// ConnectionConnecting indicates the subscription is being established.
	ConnectionConnecting ConnectionStatus = "connecting"

	// ConnectionDisconnected indicates no subscription is open.
	ConnectionDisconnected ConnectionStatus = "disconnected"

	// ConnectionError indicates the subscription failed.
	ConnectionError ConnectionStatus = "error"
)

// severity orders connection statuses for worst-case folding.
func (s ConnectionStatus) severity() int {
	switch s {
	case ConnectionConnected:
		return 0
	case ConnectionConnecting:
		return 1
	case ConnectionDisconnected:
		return 2
	case ConnectionError:
		return 3
	default:
		return 3
	}
}

// Worst returns the more severe of the two statuses.
func (s ConnectionStatus) Worst(other ConnectionStatus) ConnectionStatus {
	if other.severity() > s.severity() {
		return other
	}
	return s
}

// String returns the string representation of the ConnectionStatus.
func (s ConnectionStatus) String() string {
	return string(s)
}

// SortKey identifies a task list ordering.
type SortKey string

// Sort key constants for task ordering.
const (
	// SortCreated orders tasks newest first.
	SortCreated SortKey = "created"

	// SortDueDate orders tasks by due date, soonest first, undated last.
	SortDueDate SortKey = "due_date"

	// SortPriority orders tasks by manual priority, urgent first.
	SortPriority SortKey = "priority"

	// SortAIScore orders tasks by AI priority score, highest first, with
	// unscored tasks assumed at the midpoint.
	SortAIScore SortKey = "ai_score"
)

// String returns the string representation of the SortKey.
func (k SortKey) String() string {
	return string(k)
}
