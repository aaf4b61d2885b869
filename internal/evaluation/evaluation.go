// Package evaluation implements the weighted multi-criteria scoring engine
// for decision drafts.
//
// The engine is pure: it has no side effects, no external dependencies, and
// is deterministic, so it is safe to call repeatedly on every draft change.
//
// Import rules:
//   - CAN import: internal/domain, std lib
//   - MUST NOT import: any other internal packages
package evaluation

import (
	"math"
	"sort"

	"github.com/qntmpulse/pulse/internal/domain"
)

// Ranked pairs an option with its computed score.
type Ranked struct {
	Option domain.Option
	Score  float64
}

// Score returns the weighted mean of all present score entries for the
// option, weighted by each criterion's weight and rounded to one decimal
// place. The matrix is sparse: absent entries are excluded from the
// aggregation, not treated as zero. Returns 0 when the option has no
// score entries at all.
func Score(d domain.DecisionDraft, optionID string) float64 {
	var weighted, totalWeight float64
	for _, c := range d.Criteria {
		s, ok := d.Scores.Get(optionID, c.ID)
		if !ok {
			continue
		}
		weighted += float64(s) * float64(c.Weight)
		totalWeight += float64(c.Weight)
	}
	if totalWeight == 0 {
		return 0
	}
	return round1(weighted / totalWeight)
}

// Rank returns the draft's options ordered by descending score. Ties break
// by the options' original insertion order (stable sort), never by name or
// id: the first entry is what gets presented as "recommended", so the
// tiebreak is behaviorally significant.
func Rank(d domain.DecisionDraft) []Ranked {
	out := make([]Ranked, len(d.Options))
	for i, o := range d.Options {
		out[i] = Ranked{Option: o, Score: Score(d, o.ID)}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// round1 rounds to one decimal place, half away from zero.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
