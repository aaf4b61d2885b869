package nudge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
)

var ruleNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

func nudgeByID(nudges []domain.Nudge, id string) (domain.Nudge, bool) {
	for _, n := range nudges {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Nudge{}, false
}

func TestStaleDecisionRule(t *testing.T) {
	snap := domain.Snapshot{
		Decisions: []domain.Decision{
			{ID: "dec-stale", Title: "Old one", Status: constants.DecisionStatusProposed,
				LastActivityAt: ruleNow.Add(-10 * 24 * time.Hour)},
			{ID: "dec-fresh", Title: "New one", Status: constants.DecisionStatusProposed,
				LastActivityAt: ruleNow.Add(-1 * 24 * time.Hour)},
			{ID: "dec-done", Title: "Done one", Status: constants.DecisionStatusDecided,
				LastActivityAt: ruleNow.Add(-30 * 24 * time.Hour)},
		},
	}

	nudges := Generate(snap, DefaultPolicy(), ruleNow)

	n, ok := nudgeByID(nudges, "stale_decision-dec-stale")
	require.True(t, ok)
	assert.Equal(t, constants.NudgePriorityImportant, n.Priority)
	assert.Equal(t, constants.ActionSendReminder, n.ActionType)
	assert.Equal(t, "dec-stale", n.RelatedID)

	_, ok = nudgeByID(nudges, "stale_decision-dec-fresh")
	assert.False(t, ok)
	_, ok = nudgeByID(nudges, "stale_decision-dec-done")
	assert.False(t, ok, "resolved decisions never go stale")
}

func TestOverdueTaskRule(t *testing.T) {
	past := ruleNow.Add(-48 * time.Hour)
	future := ruleNow.Add(48 * time.Hour)
	snap := domain.Snapshot{
		Tasks: []domain.Task{
			{ID: "t-late", Title: "Late", Status: constants.TaskStatusInProgress,
				Priority: constants.TaskPriorityUrgent, DueDate: &past},
			{ID: "t-late-low", Title: "Late but low", Status: constants.TaskStatusTodo,
				Priority: constants.TaskPriorityLow, DueDate: &past},
			{ID: "t-ontime", Title: "On time", Status: constants.TaskStatusTodo,
				Priority: constants.TaskPriorityHigh, DueDate: &future},
			{ID: "t-done", Title: "Done", Status: constants.TaskStatusDone,
				Priority: constants.TaskPriorityHigh, DueDate: &past},
			{ID: "t-undated", Title: "Undated", Status: constants.TaskStatusTodo,
				Priority: constants.TaskPriorityHigh},
		},
	}

	nudges := Generate(snap, DefaultPolicy(), ruleNow)

	n, ok := nudgeByID(nudges, "overdue_task-t-late")
	require.True(t, ok)
	assert.Equal(t, constants.NudgePriorityUrgent, n.Priority, "urgent tasks escalate")
	assert.Equal(t, constants.ActionExtendDeadline, n.ActionType)

	n, ok = nudgeByID(nudges, "overdue_task-t-late-low")
	require.True(t, ok)
	assert.Equal(t, constants.NudgePriorityImportant, n.Priority)

	for _, id := range []string{"overdue_task-t-ontime", "overdue_task-t-done", "overdue_task-t-undated"} {
		_, ok := nudgeByID(nudges, id)
		assert.False(t, ok, id)
	}
}

func TestLowParticipationRule(t *testing.T) {
	votes := func(n int) []domain.Vote {
		out := make([]domain.Vote, n)
		for i := range out {
			out[i] = domain.Vote{ID: "v", DecisionID: "d", UserID: "u"}
		}
		return out
	}

	t.Run("without expected voters fires on zero votes", func(t *testing.T) {
		snap := domain.Snapshot{
			Decisions: []domain.Decision{
				{ID: "d-quiet", Title: "Quiet", Status: constants.DecisionStatusVoting,
					LastActivityAt: ruleNow},
				{ID: "d-active", Title: "Active", Status: constants.DecisionStatusVoting,
					Votes: votes(1), LastActivityAt: ruleNow},
			},
		}
		nudges := Generate(snap, DefaultPolicy(), ruleNow)

		_, ok := nudgeByID(nudges, "low_participation-d-quiet")
		assert.True(t, ok)
		_, ok = nudgeByID(nudges, "low_participation-d-active")
		assert.False(t, ok)
	})

	t.Run("with expected voters applies the ratio", func(t *testing.T) {
		policy := DefaultPolicy()
		policy.ExpectedVoters = 10 // threshold: 5 votes at the default 0.5 ratio
		snap := domain.Snapshot{
			Decisions: []domain.Decision{
				{ID: "d-low", Title: "Low", Status: constants.DecisionStatusVoting,
					Votes: votes(2), LastActivityAt: ruleNow},
				{ID: "d-ok", Title: "OK", Status: constants.DecisionStatusVoting,
					Votes: votes(6), LastActivityAt: ruleNow},
			},
		}
		nudges := Generate(snap, policy, ruleNow)

		_, ok := nudgeByID(nudges, "low_participation-d-low")
		assert.True(t, ok)
		_, ok = nudgeByID(nudges, "low_participation-d-ok")
		assert.False(t, ok)
	})

	t.Run("only voting decisions qualify", func(t *testing.T) {
		snap := domain.Snapshot{
			Decisions: []domain.Decision{
				{ID: "d-proposed", Title: "Proposed", Status: constants.DecisionStatusProposed,
					LastActivityAt: ruleNow},
			},
		}
		nudges := Generate(snap, DefaultPolicy(), ruleNow)
		_, ok := nudgeByID(nudges, "low_participation-d-proposed")
		assert.False(t, ok)
	})
}

func TestUnblockableTaskRule(t *testing.T) {
	snap := domain.Snapshot{
		Tasks: []domain.Task{
			{ID: "t-blocker-done", Title: "Blocker", Status: constants.TaskStatusDone},
			{ID: "t-blocker-live", Title: "Live blocker", Status: constants.TaskStatusInProgress},
			{ID: "t-ready", Title: "Ready", Status: constants.TaskStatusTodo,
				Metadata: domain.TaskMetadata{BlockedByTaskIDs: []string{"t-blocker-done"}}},
			{ID: "t-stuck", Title: "Stuck", Status: constants.TaskStatusTodo,
				Metadata: domain.TaskMetadata{BlockedByTaskIDs: []string{"t-blocker-live"}}},
		},
	}

	nudges := Generate(snap, DefaultPolicy(), ruleNow)

	n, ok := nudgeByID(nudges, "blocked_task-t-ready")
	require.True(t, ok)
	assert.Equal(t, constants.NudgePrioritySuggestion, n.Priority)
	assert.Equal(t, constants.ActionReview, n.ActionType)

	_, ok = nudgeByID(nudges, "blocked_task-t-stuck")
	assert.False(t, ok)
}

func TestNudgeIdentityIsStable(t *testing.T) {
	snap := domain.Snapshot{
		Decisions: []domain.Decision{
			{ID: "dec-42", Title: "Stale", Status: constants.DecisionStatusProposed,
				LastActivityAt: ruleNow.Add(-30 * 24 * time.Hour)},
		},
	}

	first := Generate(snap, DefaultPolicy(), ruleNow)
	second := Generate(snap, DefaultPolicy(), ruleNow.Add(time.Hour))

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID, "same condition must re-derive the same id")
	assert.Equal(t, "stale_decision-dec-42", first[0].ID)
}
