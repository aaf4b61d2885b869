// Package decision implements the phase-gated decision drafting workflow.
//
// The workflow state is an explicit owned DecisionDraft value threaded
// through pure transition functions that return new state instead of
// mutating shared cells. A session holds exactly one draft at a time.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/evaluation, std lib
//   - MUST NOT import: internal/feed, internal/workspace, internal/cli
package decision

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
)

// NewDraft creates an empty draft in the define phase.
func NewDraft(text, context string) domain.DecisionDraft {
	return domain.DecisionDraft{
		ID:      "draft-" + uuid.NewString(),
		Text:    text,
		Context: context,
		Phase:   constants.PhaseDefine,
		Scores:  domain.ScoreMatrix{},
	}
}

// SetText updates the decision question. Allowed in the define phase only.
func SetText(d domain.DecisionDraft, text string) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseDefine {
		return d, fmt.Errorf("set text in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	out := d.Clone()
	out.Text = text
	return out, nil
}

// Advance moves the draft to the next phase after validating the forward
// gate for the current phase:
//
//	Define → Options: non-empty decision text
//	Options → Criteria: at least two options
//	Criteria → Evaluate: at least two criteria
//	Evaluate → Decide: unconditional (scores may be partial)
//
// On failure the returned draft equals the input and the phase is unchanged.
func Advance(d domain.DecisionDraft) (domain.DecisionDraft, error) {
	next, ok := d.Phase.Next()
	if !ok {
		if !d.Phase.Valid() {
			return d, fmt.Errorf("phase %q: %w", d.Phase, pulseerrors.ErrInvalidPhase)
		}
		return d, pulseerrors.ErrPhaseTerminal
	}

	switch d.Phase {
	case constants.PhaseDefine:
		if strings.TrimSpace(d.Text) == "" {
			return d, pulseerrors.ErrEmptyDecisionText
		}
	case constants.PhaseOptions:
		if len(d.Options) < 2 {
			return d, pulseerrors.ErrTooFewOptions
		}
	case constants.PhaseCriteria:
		if len(d.Criteria) < 2 {
			return d, pulseerrors.ErrTooFewCriteria
		}
	case constants.PhaseEvaluate:
		// Unconditional: partial score matrices are allowed.
	case constants.PhaseDecide:
		// Unreachable: Next already reported terminal.
	}

	out := d.Clone()
	out.Phase = next
	return out, nil
}

// GoBack navigates to an already-visited phase (index at or below the
// current phase). Forward navigation through GoBack is rejected so phases
// can never be skipped.
func GoBack(d domain.DecisionDraft, target constants.DecisionPhase) (domain.DecisionDraft, error) {
	ti := target.Index()
	if ti < 0 {
		return d, fmt.Errorf("phase %q: %w", target, pulseerrors.ErrInvalidPhase)
	}
	if ti > d.Phase.Index() {
		return d, fmt.Errorf("navigate %s → %s: %w", d.Phase, target, pulseerrors.ErrPhaseNotVisited)
	}
	out := d.Clone()
	out.Phase = target
	return out, nil
}

// AddOption appends a candidate option. Allowed in the options phase only;
// insertion order is preserved because it is the ranking tiebreaker.
func AddOption(d domain.DecisionDraft, name, description string) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseOptions {
		return d, fmt.Errorf("add option in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	out := d.Clone()
	out.Options = append(out.Options, domain.Option{
		ID:          "opt-" + uuid.NewString(),
		Name:        name,
		Description: description,
	})
	return out, nil
}

// RemoveOption deletes an option and every score matrix entry keyed to it,
// preserving referential integrity within the draft.
func RemoveOption(d domain.DecisionDraft, optionID string) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseOptions {
		return d, fmt.Errorf("remove option in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	if _, ok := d.OptionByID(optionID); !ok {
		return d, fmt.Errorf("option %q: %w", optionID, pulseerrors.ErrOptionNotFound)
	}
	out := d.Clone()
	kept := out.Options[:0]
	for _, o := range out.Options {
		if o.ID != optionID {
			kept = append(kept, o)
		}
	}
	out.Options = kept
	for _, c := range out.Criteria {
		delete(out.Scores, domain.ScoreKey(optionID, c.ID))
	}
	if out.FinalChoice == optionID {
		out.FinalChoice = ""
	}
	return out, nil
}

// AddCriterion appends an evaluation axis. Allowed in the criteria phase only.
func AddCriterion(d domain.DecisionDraft, name string, weight int, description string) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseCriteria {
		return d, fmt.Errorf("add criterion in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	if weight < constants.MinWeight || weight > constants.MaxWeight {
		return d, fmt.Errorf("weight %d: %w", weight, pulseerrors.ErrWeightOutOfRange)
	}
	out := d.Clone()
	out.Criteria = append(out.Criteria, domain.Criterion{
		ID:          "crit-" + uuid.NewString(),
		Name:        name,
		Weight:      weight,
		Description: description,
	})
	return out, nil
}

// RemoveCriterion deletes a criterion and every score matrix entry keyed
// to it.
func RemoveCriterion(d domain.DecisionDraft, criterionID string) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseCriteria {
		return d, fmt.Errorf("remove criterion in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	if _, ok := d.CriterionByID(criterionID); !ok {
		return d, fmt.Errorf("criterion %q: %w", criterionID, pulseerrors.ErrCriterionNotFound)
	}
	out := d.Clone()
	kept := out.Criteria[:0]
	for _, c := range out.Criteria {
		if c.ID != criterionID {
			kept = append(kept, c)
		}
	}
	out.Criteria = kept
	for _, o := range out.Options {
		delete(out.Scores, domain.ScoreKey(o.ID, criterionID))
	}
	return out, nil
}

// SetWeight changes a criterion's weight. Weights are mutable during the
// criteria phase only.
func SetWeight(d domain.DecisionDraft, criterionID string, weight int) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseCriteria {
		return d, fmt.Errorf("set weight in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	if weight < constants.MinWeight || weight > constants.MaxWeight {
		return d, fmt.Errorf("weight %d: %w", weight, pulseerrors.ErrWeightOutOfRange)
	}
	out := d.Clone()
	for i, c := range out.Criteria {
		if c.ID == criterionID {
			out.Criteria[i].Weight = weight
			return out, nil
		}
	}
	return d, fmt.Errorf("criterion %q: %w", criterionID, pulseerrors.ErrCriterionNotFound)
}

// SetScore records one option-by-criterion score. The matrix is mutated
// only in the evaluate phase.
func SetScore(d domain.DecisionDraft, optionID, criterionID string, score int) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseEvaluate {
		return d, fmt.Errorf("set score in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	if score < constants.MinScore || score > constants.MaxScore {
		return d, fmt.Errorf("score %d: %w", score, pulseerrors.ErrScoreOutOfRange)
	}
	if _, ok := d.OptionByID(optionID); !ok {
		return d, fmt.Errorf("option %q: %w", optionID, pulseerrors.ErrOptionNotFound)
	}
	if _, ok := d.CriterionByID(criterionID); !ok {
		return d, fmt.Errorf("criterion %q: %w", criterionID, pulseerrors.ErrCriterionNotFound)
	}
	out := d.Clone()
	out.Scores[domain.ScoreKey(optionID, criterionID)] = score
	return out, nil
}

// SelectFinal records the chosen option. This is a local selection within
// the decide phase, not a phase transition.
func SelectFinal(d domain.DecisionDraft, optionID string) (domain.DecisionDraft, error) {
	if d.Phase != constants.PhaseDecide {
		return d, fmt.Errorf("select final in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	if _, ok := d.OptionByID(optionID); !ok {
		return d, fmt.Errorf("option %q: %w", optionID, pulseerrors.ErrOptionNotFound)
	}
	out := d.Clone()
	out.FinalChoice = optionID
	return out, nil
}
