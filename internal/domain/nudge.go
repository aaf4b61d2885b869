package domain

import (
	"time"

	"github.com/qntmpulse/pulse/internal/constants"
)

// Nudge is a derived, ephemeral suggestion surfaced to a user based on
// workspace state. Nudges are regenerated on every snapshot change; their
// identity must be stable across regenerations for the same underlying
// condition so dismissal persists correctly.
type Nudge struct {
	// ID is the stable identity, deterministic from (Type, RelatedID).
	ID string `json:"id"`

	// Type identifies the underlying condition.
	Type constants.NudgeType `json:"type"`

	// Priority is the urgency tier.
	Priority constants.NudgePriority `json:"priority"`

	// Message is the user-facing text (generated by an external collaborator
	// or the built-in rules; opaque to this core).
	Message string `json:"message"`

	// Action is an optional user-facing action label.
	Action string `json:"action,omitempty"`

	// ActionType selects the dispatch route for the action.
	ActionType constants.NudgeAction `json:"action_type"`

	// RelatedID is the decision or task the nudge refers to.
	RelatedID string `json:"related_id"`

	// RelatedTitle is the display title of the related entity.
	RelatedTitle string `json:"related_title,omitempty"`
}

// NudgeID derives the stable nudge identity for a condition. Re-derivation
// for the same (type, relatedID) pair must yield the same id so dismissed
// nudges stay suppressed across regenerations.
func NudgeID(t constants.NudgeType, relatedID string) string {
	return string(t) + "-" + relatedID
}

// DismissalRecord marks one nudge as dismissed. Records are append-only
// except for the single-slot undo removal.
type DismissalRecord struct {
	// NudgeID is the dismissed nudge's stable id.
	NudgeID string `json:"nudge_id"`

	// DismissedAt is when the dismissal happened.
	DismissedAt time.Time `json:"dismissed_at"`
}

// VelocityMetrics summarizes decision throughput for a workspace, computed
// by an external collaborator and cached in the session snapshot.
type VelocityMetrics struct {
	// VelocityPerWeek is decisions resolved per week.
	VelocityPerWeek float64 `json:"velocity_per_week"`

	// AvgTimeToResolution is the mean proposal-to-decision duration.
	AvgTimeToResolution time.Duration `json:"avg_time_to_resolution"`

	// ParticipationRate is the fraction of members voting on open decisions.
	ParticipationRate float64 `json:"participation_rate"`

	// StaleCount is the number of open decisions past the staleness threshold.
	StaleCount int `json:"stale_count"`
}
