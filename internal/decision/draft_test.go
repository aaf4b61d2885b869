package decision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
)

// draftAt builds a populated draft and walks it forward to the given phase.
func draftAt(t *testing.T, phase constants.DecisionPhase) domain.DecisionDraft {
	t.Helper()
	d := NewDraft("Pick a CI vendor", "budget review")
	if phase == constants.PhaseDefine {
		return d
	}

	d, err := Advance(d)
	require.NoError(t, err)
	if phase == constants.PhaseOptions {
		return d
	}

	d, err = AddOption(d, "Vendor A", "")
	require.NoError(t, err)
	d, err = AddOption(d, "Vendor B", "")
	require.NoError(t, err)
	d, err = Advance(d)
	require.NoError(t, err)
	if phase == constants.PhaseCriteria {
		return d
	}

	d, err = AddCriterion(d, "Cost", 5, "")
	require.NoError(t, err)
	d, err = AddCriterion(d, "Quality", 3, "")
	require.NoError(t, err)
	d, err = Advance(d)
	require.NoError(t, err)
	if phase == constants.PhaseEvaluate {
		return d
	}

	d, err = Advance(d)
	require.NoError(t, err)
	require.Equal(t, constants.PhaseDecide, d.Phase)
	return d
}

func TestAdvance(t *testing.T) {
	t.Run("define requires non-empty text", func(t *testing.T) {
		d := NewDraft("   ", "")
		_, err := Advance(d)
		assert.ErrorIs(t, err, pulseerrors.ErrEmptyDecisionText)
		assert.Equal(t, constants.PhaseDefine, d.Phase)
	})

	t.Run("options requires at least two options", func(t *testing.T) {
		d := draftAt(t, constants.PhaseOptions)
		d, err := AddOption(d, "Only one", "")
		require.NoError(t, err)

		_, err = Advance(d)
		assert.ErrorIs(t, err, pulseerrors.ErrTooFewOptions)
		assert.Equal(t, constants.PhaseOptions, d.Phase)
	})

	t.Run("criteria requires at least two criteria", func(t *testing.T) {
		d := draftAt(t, constants.PhaseCriteria)
		d, err := AddCriterion(d, "Cost", 5, "")
		require.NoError(t, err)

		_, err = Advance(d)
		assert.ErrorIs(t, err, pulseerrors.ErrTooFewCriteria)
	})

	t.Run("evaluate advances with partial scores", func(t *testing.T) {
		d := draftAt(t, constants.PhaseEvaluate)
		d, err := Advance(d)
		require.NoError(t, err)
		assert.Equal(t, constants.PhaseDecide, d.Phase)
	})

	t.Run("decide is terminal", func(t *testing.T) {
		d := draftAt(t, constants.PhaseDecide)
		_, err := Advance(d)
		assert.ErrorIs(t, err, pulseerrors.ErrPhaseTerminal)
	})

	t.Run("failed advance leaves draft untouched", func(t *testing.T) {
		d := draftAt(t, constants.PhaseOptions)
		out, err := Advance(d)
		require.Error(t, err)
		assert.Equal(t, d, out)
	})
}

func TestGoBack(t *testing.T) {
	t.Run("allows visited phases", func(t *testing.T) {
		d := draftAt(t, constants.PhaseEvaluate)
		d, err := GoBack(d, constants.PhaseOptions)
		require.NoError(t, err)
		assert.Equal(t, constants.PhaseOptions, d.Phase)
	})

	t.Run("rejects forward navigation", func(t *testing.T) {
		d := draftAt(t, constants.PhaseOptions)
		_, err := GoBack(d, constants.PhaseDecide)
		assert.ErrorIs(t, err, pulseerrors.ErrPhaseNotVisited)
	})

	t.Run("same phase is a no-op navigation", func(t *testing.T) {
		d := draftAt(t, constants.PhaseCriteria)
		out, err := GoBack(d, constants.PhaseCriteria)
		require.NoError(t, err)
		assert.Equal(t, constants.PhaseCriteria, out.Phase)
	})

	t.Run("rejects unknown phase", func(t *testing.T) {
		d := draftAt(t, constants.PhaseEvaluate)
		_, err := GoBack(d, constants.DecisionPhase("bogus"))
		assert.ErrorIs(t, err, pulseerrors.ErrInvalidPhase)
	})
}

func TestPhaseGatedMutations(t *testing.T) {
	t.Run("add option outside options phase", func(t *testing.T) {
		d := draftAt(t, constants.PhaseCriteria)
		_, err := AddOption(d, "Late entry", "")
		assert.ErrorIs(t, err, pulseerrors.ErrWrongPhase)
	})

	t.Run("weight mutable in criteria phase only", func(t *testing.T) {
		d := draftAt(t, constants.PhaseCriteria)
		d, err := AddCriterion(d, "Cost", 5, "")
		require.NoError(t, err)

		d, err = SetWeight(d, d.Criteria[0].ID, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, d.Criteria[0].Weight)

		d, err = AddCriterion(d, "Quality", 3, "")
		require.NoError(t, err)
		d, err = Advance(d)
		require.NoError(t, err)

		_, err = SetWeight(d, d.Criteria[0].ID, 4)
		assert.ErrorIs(t, err, pulseerrors.ErrWrongPhase)
	})

	t.Run("weight range enforced", func(t *testing.T) {
		d := draftAt(t, constants.PhaseCriteria)
		_, err := AddCriterion(d, "Cost", 0, "")
		assert.ErrorIs(t, err, pulseerrors.ErrWeightOutOfRange)
		_, err = AddCriterion(d, "Cost", 6, "")
		assert.ErrorIs(t, err, pulseerrors.ErrWeightOutOfRange)
	})

	t.Run("scores mutable in evaluate phase only", func(t *testing.T) {
		d := draftAt(t, constants.PhaseEvaluate)
		d, err := SetScore(d, d.Options[0].ID, d.Criteria[0].ID, 4)
		require.NoError(t, err)
		got, ok := d.Scores.Get(d.Options[0].ID, d.Criteria[0].ID)
		require.True(t, ok)
		assert.Equal(t, 4, got)

		back, err := GoBack(d, constants.PhaseOptions)
		require.NoError(t, err)
		_, err = SetScore(back, back.Options[0].ID, back.Criteria[0].ID, 5)
		assert.ErrorIs(t, err, pulseerrors.ErrWrongPhase)
	})

	t.Run("score range enforced", func(t *testing.T) {
		d := draftAt(t, constants.PhaseEvaluate)
		_, err := SetScore(d, d.Options[0].ID, d.Criteria[0].ID, 0)
		assert.ErrorIs(t, err, pulseerrors.ErrScoreOutOfRange)
		_, err = SetScore(d, d.Options[0].ID, d.Criteria[0].ID, 6)
		assert.ErrorIs(t, err, pulseerrors.ErrScoreOutOfRange)
	})

	t.Run("select final in decide phase only", func(t *testing.T) {
		d := draftAt(t, constants.PhaseDecide)
		d, err := SelectFinal(d, d.Options[1].ID)
		require.NoError(t, err)
		assert.Equal(t, d.Options[1].ID, d.FinalChoice)

		early := draftAt(t, constants.PhaseEvaluate)
		_, err = SelectFinal(early, early.Options[0].ID)
		assert.ErrorIs(t, err, pulseerrors.ErrWrongPhase)
	})
}

func TestRemovalCascades(t *testing.T) {
	t.Run("remove option deletes its score entries", func(t *testing.T) {
		d := draftAt(t, constants.PhaseEvaluate)
		optID := d.Options[0].ID
		var err error
		for _, c := range d.Criteria {
			d, err = SetScore(d, optID, c.ID, 3)
			require.NoError(t, err)
		}

		d, err = GoBack(d, constants.PhaseOptions)
		require.NoError(t, err)
		d, err = RemoveOption(d, optID)
		require.NoError(t, err)

		assert.Len(t, d.Options, 1)
		for _, c := range d.Criteria {
			_, ok := d.Scores.Get(optID, c.ID)
			assert.False(t, ok)
		}
	})

	t.Run("remove criterion deletes its score entries", func(t *testing.T) {
		d := draftAt(t, constants.PhaseEvaluate)
		critID := d.Criteria[0].ID
		var err error
		for _, o := range d.Options {
			d, err = SetScore(d, o.ID, critID, 2)
			require.NoError(t, err)
		}

		d, err = GoBack(d, constants.PhaseCriteria)
		require.NoError(t, err)
		d, err = RemoveCriterion(d, critID)
		require.NoError(t, err)

		assert.Len(t, d.Criteria, 1)
		for _, o := range d.Options {
			_, ok := d.Scores.Get(o.ID, critID)
			assert.False(t, ok)
		}
	})

	t.Run("remove final choice clears it", func(t *testing.T) {
		d := draftAt(t, constants.PhaseDecide)
		d, err := SelectFinal(d, d.Options[0].ID)
		require.NoError(t, err)

		d, err = GoBack(d, constants.PhaseOptions)
		require.NoError(t, err)
		d, err = RemoveOption(d, d.FinalChoice)
		require.NoError(t, err)
		assert.Empty(t, d.FinalChoice)
	})

	t.Run("remove unknown ids rejected", func(t *testing.T) {
		d := draftAt(t, constants.PhaseOptions)
		_, err := RemoveOption(d, "opt-nope")
		assert.ErrorIs(t, err, pulseerrors.ErrOptionNotFound)

		d2 := draftAt(t, constants.PhaseCriteria)
		_, err = RemoveCriterion(d2, "crit-nope")
		assert.ErrorIs(t, err, pulseerrors.ErrCriterionNotFound)
	})
}

func TestTransitionsArePure(t *testing.T) {
	d := draftAt(t, constants.PhaseEvaluate)
	before := d.Clone()

	_, err := SetScore(d, d.Options[0].ID, d.Criteria[0].ID, 5)
	require.NoError(t, err)

	assert.Equal(t, before, d, "input draft must not be mutated")
}
