package nudge

import (
	"fmt"
	"time"

	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
)

// Policy holds the rule thresholds. The observed production values are
// empirical rather than derived from a requirement, so they live in config
// instead of being hard-wired at the rule sites.
type Policy struct {
	// StaleDecisionAge is how long an open decision may sit without
	// activity before the stale rule fires.
	StaleDecisionAge time.Duration

	// LowParticipationRatio is the vote-to-voter ratio below which a
	// voting decision triggers the participation rule. Only evaluated
	// when ExpectedVoters is set; otherwise the rule fires on zero votes.
	LowParticipationRatio float64

	// ExpectedVoters is the number of workspace members expected to vote.
	ExpectedVoters int
}

// DefaultPolicy returns the default rule thresholds.
func DefaultPolicy() Policy {
	return Policy{
		StaleDecisionAge:      constants.DefaultStaleDecisionAge,
		LowParticipationRatio: constants.DefaultLowParticipationRatio,
	}
}

// Generate derives the raw nudge list from a snapshot at the given time.
// Output ids are deterministic from (type, related id), so regenerating
// over the same underlying conditions yields the same identities and
// previously dismissed nudges stay suppressed. Dismissal filtering and
// ordering happen in the engine, not here.
func Generate(snap domain.Snapshot, policy Policy, now time.Time) []domain.Nudge {
	var out []domain.Nudge
	out = append(out, staleDecisions(snap, policy, now)...)
	out = append(out, overdueTasks(snap, now)...)
	out = append(out, lowParticipation(snap, policy)...)
	out = append(out, unblockableTasks(snap)...)
	return out
}

func staleDecisions(snap domain.Snapshot, policy Policy, now time.Time) []domain.Nudge {
	var out []domain.Nudge
	for _, d := range snap.Decisions {
		if !d.Status.Open() {
			continue
		}
		idle := now.Sub(d.LastActivityAt)
		if idle < policy.StaleDecisionAge {
			continue
		}
		out = append(out, domain.Nudge{
			ID:           domain.NudgeID(constants.NudgeStaleDecision, d.ID),
			Type:         constants.NudgeStaleDecision,
			Priority:     constants.NudgePriorityImportant,
			Message:      fmt.Sprintf("%q has had no activity for %d days", d.Title, int(idle.Hours()/24)),
			Action:       "Send reminder",
			ActionType:   constants.ActionSendReminder,
			RelatedID:    d.ID,
			RelatedTitle: d.Title,
		})
	}
	return out
}

func overdueTasks(snap domain.Snapshot, now time.Time) []domain.Nudge {
	var out []domain.Nudge
	for _, t := range snap.Tasks {
		if !t.Status.Active() || t.DueDate == nil || !now.After(*t.DueDate) {
			continue
		}
		priority := constants.NudgePriorityImportant
		if t.Priority == constants.TaskPriorityUrgent || t.Priority == constants.TaskPriorityHigh {
			priority = constants.NudgePriorityUrgent
		}
		out = append(out, domain.Nudge{
			ID:           domain.NudgeID(constants.NudgeOverdueTask, t.ID),
			Type:         constants.NudgeOverdueTask,
			Priority:     priority,
			Message:      fmt.Sprintf("%q is past its due date", t.Title),
			Action:       "Extend deadline",
			ActionType:   constants.ActionExtendDeadline,
			RelatedID:    t.ID,
			RelatedTitle: t.Title,
		})
	}
	return out
}

func lowParticipation(snap domain.Snapshot, policy Policy) []domain.Nudge {
	var out []domain.Nudge
	for _, d := range snap.Decisions {
		if d.Status != constants.DecisionStatusVoting {
			continue
		}
		votes := len(d.Votes)
		low := votes == 0
		if policy.ExpectedVoters > 0 {
			low = float64(votes)/float64(policy.ExpectedVoters) < policy.LowParticipationRatio
		}
		if !low {
			continue
		}
		out = append(out, domain.Nudge{
			ID:           domain.NudgeID(constants.NudgeLowParticipation, d.ID),
			Type:         constants.NudgeLowParticipation,
			Priority:     constants.NudgePriorityImportant,
			Message:      fmt.Sprintf("Voting on %q has low participation (%d votes)", d.Title, votes),
			Action:       "Send reminder",
			ActionType:   constants.ActionSendReminder,
			RelatedID:    d.ID,
			RelatedTitle: d.Title,
		})
	}
	return out
}

// unblockableTasks flags active tasks whose recorded blockers have all
// finished: the dependency list is stale and the task is worth a review.
func unblockableTasks(snap domain.Snapshot) []domain.Nudge {
	byID := make(map[string]domain.Task, len(snap.Tasks))
	for _, t := range snap.Tasks {
		byID[t.ID] = t
	}

	var out []domain.Nudge
	for _, t := range snap.Tasks {
		if !t.Status.Active() || len(t.Metadata.BlockedByTaskIDs) == 0 {
			continue
		}
		cleared := true
		for _, blockerID := range t.Metadata.BlockedByTaskIDs {
			if blocker, ok := byID[blockerID]; ok && blocker.Status.Active() {
				cleared = false
				break
			}
		}
		if !cleared {
			continue
		}
		out = append(out, domain.Nudge{
			ID:           domain.NudgeID(constants.NudgeBlockedTask, t.ID),
			Type:         constants.NudgeBlockedTask,
			Priority:     constants.NudgePrioritySuggestion,
			Message:      fmt.Sprintf("All blockers of %q are done; it may be ready to start", t.Title),
			Action:       "Review task",
			ActionType:   constants.ActionReview,
			RelatedID:    t.ID,
			RelatedTitle: t.Title,
		})
	}
	return out
}
