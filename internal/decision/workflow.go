package decision

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
	"github.com/qntmpulse/pulse/internal/evaluation"
)

// Advisor is the external reasoning collaborator consulted during the
// workflow. Both calls are fire-and-forget with respect to phase state:
// the workflow never waits on a response before advancing, and responses
// never change the phase.
type Advisor interface {
	// FrameDecision is asked to produce initial framing for a freshly
	// defined decision.
	FrameDecision(ctx context.Context, text, background string) error

	// Recommend is handed the ranked options plus criterion weights when
	// the user requests a recommendation in the decide phase.
	Recommend(ctx context.Context, req RecommendationRequest) error
}

// RecommendationRequest packages a decide-phase recommendation ask.
type RecommendationRequest struct {
	// DraftID identifies the draft the request belongs to.
	DraftID string `json:"draft_id"`

	// Text is the decision question.
	Text string `json:"text"`

	// Ranked is the evaluation engine's output, best first.
	Ranked []evaluation.Ranked `json:"ranked"`

	// Weights maps criterion name to its weight.
	Weights map[string]int `json:"weights"`
}

// Committer persists a finished draft as a shared decision in the
// authoritative store. The committed decision round-trips back through the
// change feed; the drafting flow never writes the local snapshot.
type Committer interface {
	CommitDecision(ctx context.Context, d domain.Decision) error
}

// Workflow wraps the pure draft transitions with the advisor side effects
// and commit routing. The draft value itself stays owned by the caller.
type Workflow struct {
	advisor   Advisor
	committer Committer
	logger    zerolog.Logger
	timeout   time.Duration

	wg sync.WaitGroup
}

// WorkflowOption configures a Workflow.
type WorkflowOption func(*Workflow)

// WithAdvisorTimeout bounds each advisor call. Default is
// constants.DefaultProviderTimeout.
func WithAdvisorTimeout(d time.Duration) WorkflowOption {
	return func(w *Workflow) {
		w.timeout = d
	}
}

// NewWorkflow creates a workflow. The advisor and committer may be nil, in
// which case the corresponding calls are skipped or rejected.
func NewWorkflow(advisor Advisor, committer Committer, logger zerolog.Logger, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		advisor:   advisor,
		committer: committer,
		logger:    logger,
		timeout:   constants.DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Advance validates and applies the next-phase transition. Leaving the
// define phase emits a framing request to the advisor; the draft advances
// immediately regardless of the advisor's response.
func (w *Workflow) Advance(ctx context.Context, d domain.DecisionDraft) (domain.DecisionDraft, error) {
	from := d.Phase
	out, err := Advance(d)
	if err != nil {
		return out, err
	}
	if from == constants.PhaseDefine {
		w.fireAndForget(ctx, "frame_decision", func(callCtx context.Context) error {
			return w.advisor.FrameDecision(callCtx, out.Text, out.Context)
		})
	}
	return out, nil
}

// Recommend packages the ranked option list plus criterion weights into an
// advisor request. Valid in the decide phase only; the call is
// fire-and-forget relative to phase state.
func (w *Workflow) Recommend(ctx context.Context, d domain.DecisionDraft) error {
	if d.Phase != constants.PhaseDecide {
		return fmt.Errorf("recommend in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	weights := make(map[string]int, len(d.Criteria))
	for _, c := range d.Criteria {
		weights[c.Name] = c.Weight
	}
	req := RecommendationRequest{
		DraftID: d.ID,
		Text:    d.Text,
		Ranked:  evaluation.Rank(d),
		Weights: weights,
	}
	w.fireAndForget(ctx, "recommend", func(callCtx context.Context) error {
		return w.advisor.Recommend(callCtx, req)
	})
	return nil
}

// Commit converts a finished draft into a proposed decision and routes it
// to the authoritative store. The decision's status is always proposed
// here: vote-derived statuses are set by vote events, never by drafting.
func (w *Workflow) Commit(ctx context.Context, d domain.DecisionDraft, workspaceID string, now time.Time) (domain.Decision, error) {
	if d.Phase != constants.PhaseDecide {
		return domain.Decision{}, fmt.Errorf("commit in phase %s: %w", d.Phase, pulseerrors.ErrWrongPhase)
	}
	if d.FinalChoice == "" {
		return domain.Decision{}, pulseerrors.ErrNoFinalChoice
	}
	if workspaceID == "" {
		return domain.Decision{}, pulseerrors.ErrWorkspaceRequired
	}

	dec := domain.Decision{
		ID:             "dec-" + uuid.NewString(),
		Title:          d.Text,
		Status:         constants.DecisionStatusProposed,
		WorkspaceID:    workspaceID,
		CreatedAt:      now.UTC(),
		LastActivityAt: now.UTC(),
	}
	if w.committer == nil {
		return dec, nil
	}
	if err := w.committer.CommitDecision(ctx, dec); err != nil {
		return domain.Decision{}, fmt.Errorf("commit decision: %w", err)
	}
	return dec, nil
}

// Wait blocks until all in-flight advisor calls have returned.
// Intended for teardown and tests.
func (w *Workflow) Wait() {
	w.wg.Wait()
}

// fireAndForget runs an advisor call in the background with a bounded
// deadline. Failures are logged and otherwise ignored: advisor output is
// advisory and must never block or fail the workflow.
func (w *Workflow) fireAndForget(ctx context.Context, name string, call func(context.Context) error) {
	if w.advisor == nil {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.timeout)
		defer cancel()
		if err := call(callCtx); err != nil {
			w.logger.Warn().Err(err).Str("call", name).Msg("advisor call failed")
		}
	}()
}
