package nudge

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qntmpulse/pulse/internal/clock"
	"github.com/qntmpulse/pulse/internal/constants"
	"github.com/qntmpulse/pulse/internal/domain"
	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
)

// Provider is an external nudge generator (the collaborator that owns the
// nudge text). It may be slow or fail; the engine bounds it with a timeout
// and falls back to the built-in rules on any error.
type Provider interface {
	GenerateNudges(ctx context.Context, snap domain.Snapshot) ([]domain.Nudge, error)
}

// Router receives dispatched nudge actions. Navigation and the two flow
// openers are presentation concerns; SendReminder delegates to an external
// notification collaborator.
type Router interface {
	// SendReminder requests a reminder be sent for the related entity.
	SendReminder(ctx context.Context, relatedID string) error

	// OpenReassign opens a reassignment flow for the related task.
	OpenReassign(ctx context.Context, taskID string) error

	// OpenExtendDeadline opens a deadline-extension flow for the related task.
	OpenExtendDeadline(ctx context.Context, taskID string) error

	// Navigate brings the related entity into view.
	Navigate(ctx context.Context, relatedID string) error
}

// Engine derives the ranked, deduplicated, dismissal-filtered nudge list
// and manages the single-slot undo.
type Engine struct {
	store    Store
	provider Provider
	router   Router
	policy   Policy
	logger   zerolog.Logger
	clk      clock.Clock

	undoWindow      time.Duration
	providerTimeout time.Duration

	mu           sync.Mutex
	active       []domain.Nudge
	lastSnap     domain.Snapshot
	hasSnap      bool
	undoID       string
	undoDeadline time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProvider sets an external nudge generator.
func WithProvider(p Provider) EngineOption {
	return func(e *Engine) {
		e.provider = p
	}
}

// WithRouter sets the action dispatch target.
func WithRouter(r Router) EngineOption {
	return func(e *Engine) {
		e.router = r
	}
}

// WithPolicy overrides the built-in rule thresholds.
func WithPolicy(p Policy) EngineOption {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithClock overrides the time source, for tests.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clk = c
	}
}

// WithUndoWindow overrides the undo visibility window.
// Default is constants.DefaultUndoWindow.
func WithUndoWindow(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.undoWindow = d
	}
}

// WithProviderTimeout bounds external provider calls.
// Default is constants.DefaultProviderTimeout.
func WithProviderTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.providerTimeout = d
	}
}

// NewEngine creates a nudge engine. A nil store is replaced with an
// in-memory store so dismissal degrades gracefully rather than failing.
func NewEngine(store Store, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		store:           store,
		policy:          DefaultPolicy(),
		logger:          logger,
		clk:             clock.RealClock{},
		undoWindow:      constants.DefaultUndoWindow,
		providerTimeout: constants.DefaultProviderTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = NewMemoryStore()
	}
	return e
}

// Regenerate derives the nudge list from a fresh snapshot: external
// provider if configured (falling back to the built-in rules on failure),
// deduplicated by stable id, filtered by the dismissal store, and sorted
// by priority tier with stable ids as the tiebreaker. Derivation failures
// are suppressed into an empty result; they never disrupt the session.
func (e *Engine) Regenerate(ctx context.Context, snap domain.Snapshot) []domain.Nudge {
	now := e.clk.Now()
	nudges := e.generate(ctx, snap, now)
	nudges = dedupe(nudges)

	dismissed, err := e.store.Dismissed(ctx)
	if err != nil {
		// Store absence is treated as an empty dismissed set.
		e.logger.Warn().Err(err).Msg("dismissal store unavailable")
		dismissed = map[string]struct{}{}
	}
	visible := nudges[:0]
	for _, n := range nudges {
		if _, ok := dismissed[n.ID]; !ok {
			visible = append(visible, n)
		}
	}

	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Priority.Rank() != visible[j].Priority.Rank() {
			return visible[i].Priority.Rank() > visible[j].Priority.Rank()
		}
		return visible[i].ID < visible[j].ID
	})

	e.mu.Lock()
	e.active = visible
	e.lastSnap = snap.Clone()
	e.hasSnap = true
	out := append([]domain.Nudge(nil), visible...)
	e.mu.Unlock()
	return out
}

// generate runs the provider when configured, bounded by the provider
// timeout, and falls back to the built-in rules on any failure.
func (e *Engine) generate(ctx context.Context, snap domain.Snapshot, now time.Time) []domain.Nudge {
	if e.provider != nil {
		callCtx, cancel := context.WithTimeout(ctx, e.providerTimeout)
		defer cancel()
		nudges, err := e.provider.GenerateNudges(callCtx, snap)
		if err == nil {
			return nudges
		}
		e.logger.Warn().Err(err).Msg("nudge provider failed; using built-in rules")
	}
	return Generate(snap, e.policy, now)
}

// Active returns the current visible nudge list.
func (e *Engine) Active() []domain.Nudge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Nudge(nil), e.active...)
}

// Dismiss suppresses one nudge: it writes a dismissal record, removes the
// nudge from the active list immediately (no recomputation needed), and
// arms the single-slot undo for the visibility window. Dismissing the same
// id twice is a no-op.
func (e *Engine) Dismiss(ctx context.Context, nudgeID string) error {
	now := e.clk.Now()

	dismissed, err := e.store.Dismissed(ctx)
	if err == nil {
		if _, already := dismissed[nudgeID]; already {
			return nil
		}
	}

	rec := domain.DismissalRecord{NudgeID: nudgeID, DismissedAt: now.UTC()}
	if err := e.store.Dismiss(ctx, rec); err != nil {
		return fmt.Errorf("dismiss %s: %w", nudgeID, err)
	}

	e.mu.Lock()
	e.removeActiveLocked(nudgeID)
	e.undoID = nudgeID
	e.undoDeadline = now.Add(e.undoWindow)
	e.mu.Unlock()
	return nil
}

// DismissAll batches a dismissal for every currently visible nudge. The
// undo slot is armed with the last dismissed id, matching the single-slot
// contract.
func (e *Engine) DismissAll(ctx context.Context) error {
	now := e.clk.Now()

	e.mu.Lock()
	visible := append([]domain.Nudge(nil), e.active...)
	e.mu.Unlock()
	if len(visible) == 0 {
		return nil
	}

	recs := make([]domain.DismissalRecord, len(visible))
	for i, n := range visible {
		recs[i] = domain.DismissalRecord{NudgeID: n.ID, DismissedAt: now.UTC()}
	}
	if err := e.store.DismissMany(ctx, recs); err != nil {
		return fmt.Errorf("dismiss all: %w", err)
	}

	e.mu.Lock()
	e.active = nil
	e.undoID = visible[len(visible)-1].ID
	e.undoDeadline = now.Add(e.undoWindow)
	e.mu.Unlock()
	return nil
}

// CanUndo reports whether the undo slot is armed and still inside its
// visibility window.
func (e *Engine) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.undoID != "" && e.clk.Now().Before(e.undoDeadline)
}

// Undo removes exactly the most recent dismissal record and regenerates
// from the last snapshot, so the nudge reappears if its underlying
// condition still holds. Valid only while the undo slot is armed; undoing
// twice is a no-op error.
func (e *Engine) Undo(ctx context.Context) error {
	e.mu.Lock()
	id := e.undoID
	expired := id == "" || !e.clk.Now().Before(e.undoDeadline)
	snap := e.lastSnap
	hasSnap := e.hasSnap
	e.mu.Unlock()

	if expired {
		return pulseerrors.ErrUndoExpired
	}
	if err := e.store.Undo(ctx, id); err != nil {
		// The slot stays armed so the undo can be retried within the window.
		return fmt.Errorf("undo %s: %w", id, err)
	}

	// Disarm only once the store write has landed, and only if a newer
	// dismissal has not re-armed the slot in the meantime.
	e.mu.Lock()
	if e.undoID == id {
		e.undoID = ""
		e.undoDeadline = time.Time{}
	}
	e.mu.Unlock()

	if hasSnap {
		e.Regenerate(ctx, snap)
	}
	return nil
}

// ClearUndo disarms the undo slot early (the user dismissed the notice).
func (e *Engine) ClearUndo() {
	e.mu.Lock()
	e.undoID = ""
	e.undoDeadline = time.Time{}
	e.mu.Unlock()
}

// HandleAction routes a nudge's action to the configured Router. The
// switch is exhaustive over the closed action set; an unknown action is an
// error, never a silent fallthrough. After a successful non-navigational
// action the nudge is dismissed automatically.
func (e *Engine) HandleAction(ctx context.Context, n domain.Nudge) error {
	if e.router == nil {
		return fmt.Errorf("action %s: %w", n.ActionType, pulseerrors.ErrUnknownAction)
	}

	var err error
	autoDismiss := true
	switch n.ActionType {
	case constants.ActionSendReminder:
		err = e.router.SendReminder(ctx, n.RelatedID)
	case constants.ActionReassign:
		err = e.router.OpenReassign(ctx, n.RelatedID)
	case constants.ActionExtendDeadline:
		err = e.router.OpenExtendDeadline(ctx, n.RelatedID)
	case constants.ActionReview:
		autoDismiss = false
		err = e.router.Navigate(ctx, n.RelatedID)
	default:
		return fmt.Errorf("action %q: %w", n.ActionType, pulseerrors.ErrUnknownAction)
	}
	if err != nil {
		return fmt.Errorf("action %s for %s: %w", n.ActionType, n.RelatedID, err)
	}

	if autoDismiss {
		return e.Dismiss(ctx, n.ID)
	}
	return nil
}

// removeActiveLocked drops one nudge from the active list. Caller holds mu.
func (e *Engine) removeActiveLocked(nudgeID string) {
	kept := e.active[:0]
	for _, n := range e.active {
		if n.ID != nudgeID {
			kept = append(kept, n)
		}
	}
	e.active = kept
}

// dedupe keeps the first nudge for each stable id.
func dedupe(nudges []domain.Nudge) []domain.Nudge {
	seen := make(map[string]struct{}, len(nudges))
	out := nudges[:0]
	for _, n := range nudges {
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out
}
