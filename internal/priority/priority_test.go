package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
)

func ids(tasks []domain.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Run("folds signals into metadata only", func(t *testing.T) {
		due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		tasks := []domain.Task{{
			ID:       "t1",
			Title:    "Ship the thing",
			Status:   constants.TaskStatusInProgress,
			Priority: constants.TaskPriorityHigh,
			DueDate:  &due,
		}}
		updates := []domain.PriorityUpdate{{
			TaskID:            "t1",
			AIScore:           87,
			SuggestedAssignee: "dana",
			PredictedDuration: 3 * time.Hour,
		}}

		merged := Merge(tasks, updates)
		require.Len(t, merged, 1)

		got := merged[0]
		require.NotNil(t, got.Metadata.AIPriorityScore)
		assert.InDelta(t, 87.0, *got.Metadata.AIPriorityScore, 0.0001)
		assert.Equal(t, "dana", got.Metadata.AISuggestedAssignee)
		assert.Equal(t, 3*time.Hour, got.Metadata.AIPredictedDuration)

		// Everything outside metadata is untouched.
		assert.Equal(t, tasks[0].Title, got.Title)
		assert.Equal(t, tasks[0].Status, got.Status)
		assert.Equal(t, tasks[0].Priority, got.Priority)
		assert.Equal(t, tasks[0].DueDate, got.DueDate)
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		tasks := []domain.Task{{ID: "t1"}}
		Merge(tasks, []domain.PriorityUpdate{{TaskID: "t1", AIScore: 99}})
		assert.Nil(t, tasks[0].Metadata.AIPriorityScore)
	})

	t.Run("ignores unknown task ids", func(t *testing.T) {
		merged := Merge([]domain.Task{{ID: "t1"}}, []domain.PriorityUpdate{{TaskID: "ghost", AIScore: 10}})
		assert.Nil(t, merged[0].Metadata.AIPriorityScore)
	})

	t.Run("unscored tasks pass through", func(t *testing.T) {
		merged := Merge([]domain.Task{{ID: "t1"}, {ID: "t2"}}, []domain.PriorityUpdate{{TaskID: "t2", AIScore: 60}})
		assert.Nil(t, merged[0].Metadata.AIPriorityScore)
		require.NotNil(t, merged[1].Metadata.AIPriorityScore)
	})
}

func TestSort(t *testing.T) {
	score := func(v float64) *float64 { return &v }

	t.Run("ai_score descends with midpoint default", func(t *testing.T) {
		tasks := []domain.Task{
			{ID: "low", Metadata: domain.TaskMetadata{AIPriorityScore: score(20)}},
			{ID: "unscored"},
			{ID: "high", Metadata: domain.TaskMetadata{AIPriorityScore: score(90)}},
		}
		sorted := Sort(tasks, constants.SortAIScore)
		// Unscored sits at the assumed midpoint of 50: above 20, below 90.
		assert.Equal(t, []string{"high", "unscored", "low"}, ids(sorted))
	})

	t.Run("ai_score ties keep input order", func(t *testing.T) {
		tasks := []domain.Task{
			{ID: "a", Metadata: domain.TaskMetadata{AIPriorityScore: score(50)}},
			{ID: "b"},
			{ID: "c", Metadata: domain.TaskMetadata{AIPriorityScore: score(50)}},
		}
		sorted := Sort(tasks, constants.SortAIScore)
		assert.Equal(t, []string{"a", "b", "c"}, ids(sorted))
	})

	t.Run("priority orders urgent first", func(t *testing.T) {
		tasks := []domain.Task{
			{ID: "m", Priority: constants.TaskPriorityMedium},
			{ID: "u", Priority: constants.TaskPriorityUrgent},
			{ID: "l", Priority: constants.TaskPriorityLow},
			{ID: "h", Priority: constants.TaskPriorityHigh},
		}
		sorted := Sort(tasks, constants.SortPriority)
		assert.Equal(t, []string{"u", "h", "m", "l"}, ids(sorted))
	})

	t.Run("due_date orders soonest first with undated last", func(t *testing.T) {
		d1 := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
		d2 := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
		tasks := []domain.Task{
			{ID: "later", DueDate: &d2},
			{ID: "undated"},
			{ID: "soon", DueDate: &d1},
		}
		sorted := Sort(tasks, constants.SortDueDate)
		assert.Equal(t, []string{"soon", "later", "undated"}, ids(sorted))
	})

	t.Run("created orders newest first", func(t *testing.T) {
		tasks := []domain.Task{
			{ID: "old", CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "new", CreatedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
		}
		sorted := Sort(tasks, constants.SortCreated)
		assert.Equal(t, []string{"new", "old"}, ids(sorted))
	})

	t.Run("does not mutate the input", func(t *testing.T) {
		tasks := []domain.Task{
			{ID: "b", Priority: constants.TaskPriorityLow},
			{ID: "a", Priority: constants.TaskPriorityUrgent},
		}
		Sort(tasks, constants.SortPriority)
		assert.Equal(t, []string{"b", "a"}, ids(tasks))
	})
}
