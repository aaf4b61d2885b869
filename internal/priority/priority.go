// Package priority implements the merge bridge that folds externally
// computed AI priority signals into locally held task ordering.
//
// The bridge performs no I/O: it is a deterministic merge-and-resort step.
// AI signals land in Task.Metadata only and are never authoritative over
// the task itself.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, std lib
//   - MUST NOT import: any other internal packages
package priority

import (
	"sort"

	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
)

// Merge folds each update into the matching task's metadata, leaving every
// other field untouched. Updates for unknown task ids are ignored. The
// input slice is not mutated; a new slice of cloned tasks is returned.
func Merge(tasks []domain.Task, updates []domain.PriorityUpdate) []domain.Task {
	byID := make(map[string]domain.PriorityUpdate, len(updates))
	for _, u := range updates {
		byID[u.TaskID] = u
	}

	out := make([]domain.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
		u, ok := byID[t.ID]
		if !ok {
			continue
		}
		score := u.AIScore
		out[i].Metadata.AIPriorityScore = &score
		if u.SuggestedAssignee != "" {
			out[i].Metadata.AISuggestedAssignee = u.SuggestedAssignee
		}
		if u.PredictedDuration > 0 {
			out[i].Metadata.AIPredictedDuration = u.PredictedDuration
		}
	}
	return out
}

// Sort orders tasks by the given key, stably, so equal-key tasks keep
// their input order. The input slice is not mutated.
//
// Key semantics:
//   - created: newest first
//   - due_date: soonest due first, undated tasks last
//   - priority: urgent > high > medium > low
//   - ai_score: highest score first; tasks without a score are assumed at
//     the midpoint (50) so they neither dominate nor are buried
func Sort(tasks []domain.Task, key constants.SortKey) []domain.Task {
	out := make([]domain.Task, len(tasks))
	copy(out, tasks)

	switch key {
	case constants.SortCreated:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case constants.SortDueDate:
		sort.SliceStable(out, func(i, j int) bool {
			di, dj := out[i].DueDate, out[j].DueDate
			switch {
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return di.Before(*dj)
			}
		})
	case constants.SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		})
	case constants.SortAIScore:
		sort.SliceStable(out, func(i, j int) bool {
			return aiScore(out[i]) > aiScore(out[j])
		})
	}
	return out
}

// aiScore returns the task's AI score, defaulting to the midpoint when the
// task has not been scored.
func aiScore(t domain.Task) float64 {
	if t.Metadata.AIPriorityScore != nil {
		return *t.Metadata.AIPriorityScore
	}
	return constants.MidpointAIScore
}
