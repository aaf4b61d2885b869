// Package domain provides shared domain types for the pulse coordination core.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"time"

	"github.com/qntmpulse/pulse/internal/constants"
)

// Option is one candidate choice in a decision draft.
// Options are created during the options phase, removed explicitly, and
// never mutated except by explicit edit.
type Option struct {
	// ID is the unique identifier for the option within its draft.
	ID string `json:"id"`

	// Name is the short label for the option.
	Name string `json:"name"`

	// Description is an optional longer explanation.
	Description string `json:"description,omitempty"`

	// Pros lists arguments in favor of this option.
	Pros []string `json:"pros,omitempty"`

	// Cons lists arguments against this option.
	Cons []string `json:"cons,omitempty"`
}

// Criterion is one evaluation axis for a decision draft.
type Criterion struct {
	// ID is the unique identifier for the criterion within its draft.
	ID string `json:"id"`

	// Name is the short label for the criterion.
	Name string `json:"name"`

	// Weight is the importance of this criterion, in [1, 5].
	// Mutable during the criteria phase only.
	Weight int `json:"weight"`

	// Description is an optional longer explanation.
	Description string `json:"description,omitempty"`
}

// ScoreMatrix maps (option, criterion) pairs to integer scores in [1, 5].
// The matrix is sparse: absent entries are excluded from aggregation,
// never treated as zero.
type ScoreMatrix map[string]int

// ScoreKey builds the composite matrix key for an option/criterion pair.
func ScoreKey(optionID, criterionID string) string {
	return optionID + ":" + criterionID
}

// Get returns the score for the pair and whether an entry exists.
func (m ScoreMatrix) Get(optionID, criterionID string) (int, bool) {
	v, ok := m[ScoreKey(optionID, criterionID)]
	return v, ok
}

// Clone returns a deep copy of the matrix.
func (m ScoreMatrix) Clone() ScoreMatrix {
	out := make(ScoreMatrix, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// DecisionDraft is the working object for one decision-in-progress.
// It is owned exclusively by the authoring session until committed as a
// shared Decision; all workflow transitions produce a new draft value
// rather than mutating shared state.
type DecisionDraft struct {
	// ID is the unique identifier for this draft.
	ID string `json:"id"`

	// Text is the decision question being worked through.
	Text string `json:"text"`

	// Context is optional background for the decision.
	Context string `json:"context,omitempty"`

	// Phase is the current workflow phase. Advances forward only; backward
	// navigation is restricted to already-visited phases.
	Phase constants.DecisionPhase `json:"phase"`

	// Options are the candidate choices, in insertion order. Insertion order
	// is significant: it is the tiebreaker when ranked scores are equal.
	Options []Option `json:"options"`

	// Criteria are the evaluation axes, in insertion order.
	Criteria []Criterion `json:"criteria"`

	// Scores is the sparse option-by-criterion score matrix.
	Scores ScoreMatrix `json:"scores"`

	// FinalChoice is the id of the selected option, set during the decide
	// phase. Selecting it is a local choice, not a phase transition.
	FinalChoice string `json:"final_choice,omitempty"`
}

// Clone returns a deep copy of the draft.
func (d DecisionDraft) Clone() DecisionDraft {
	out := d
	out.Options = make([]Option, len(d.Options))
	for i, o := range d.Options {
		out.Options[i] = o
		out.Options[i].Pros = append([]string(nil), o.Pros...)
		out.Options[i].Cons = append([]string(nil), o.Cons...)
	}
	out.Criteria = append([]Criterion(nil), d.Criteria...)
	out.Scores = d.Scores.Clone()
	return out
}

// OptionByID returns the option with the given id and whether it exists.
func (d DecisionDraft) OptionByID(id string) (Option, bool) {
	for _, o := range d.Options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// CriterionByID returns the criterion with the given id and whether it exists.
func (d DecisionDraft) CriterionByID(id string) (Criterion, bool) {
	for _, c := range d.Criteria {
		if c.ID == id {
			return c, true
		}
	}
	return Criterion{}, false
}

// Decision is a committed, shared decision visible to the whole workspace.
// It is multi-writer: votes and status transitions mutate it through the
// authoritative store, never through the drafting workflow.
//
// Example JSON representation:
//
//	{
//	    "id": "dec-7f3a",
//	    "title": "Pick a CI vendor",
//	    "status": "voting",
//	    "decision_type": "vendor",
//	    "workspace_id": "ws-acme",
//	    "votes": [...],
//	    "created_at": "2026-08-01T10:00:00Z",
//	    "last_activity_at": "2026-08-20T09:30:00Z"
//	}
type Decision struct {
	// ID is the unique identifier for the decision.
	ID string `json:"id"`

	// Title is the human-readable decision question.
	Title string `json:"title"`

	// Status is the lifecycle state (proposed, voting, decided, cancelled).
	Status constants.DecisionStatus `json:"status"`

	// DecisionType categorizes the decision (free-form, owned by callers).
	DecisionType string `json:"decision_type,omitempty"`

	// WorkspaceID links the decision to its workspace.
	WorkspaceID string `json:"workspace_id"`

	// Votes are the votes cast so far.
	Votes []Vote `json:"votes,omitempty"`

	// CreatedAt is when the decision was committed.
	CreatedAt time.Time `json:"created_at"`

	// LastActivityAt is when the decision last saw a vote, comment, or
	// status change. Staleness nudges key off this field.
	LastActivityAt time.Time `json:"last_activity_at"`
}

// Vote is a single vote on a decision.
type Vote struct {
	// ID is the unique identifier for the vote.
	ID string `json:"id"`

	// DecisionID is the decision this vote belongs to.
	DecisionID string `json:"decision_id"`

	// UserID is the voter.
	UserID string `json:"user_id"`

	// OptionName is the option the vote was cast for.
	OptionName string `json:"option_name"`

	// CreatedAt is when the vote was cast.
	CreatedAt time.Time `json:"created_at"`
}
