package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qntmpulse/pulse/internal/constants"
	pulseerrors "github.com/qntmpulse/pulse/internal/errors"
)

// fakeSub records unsubscribe calls.
type fakeSub struct {
	unsubscribed atomic.Int32
}

func (s *fakeSub) Unsubscribe() {
	s.unsubscribed.Add(1)
}

// fakeSource hands out subscriptions and lets tests push events.
type fakeSource struct {
	mu       sync.Mutex
	handlers map[string]Handler
	filters  map[string]Filter
	subs     map[string]*fakeSub
	failFor  map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		handlers: make(map[string]Handler),
		filters:  make(map[string]Filter),
		subs:     make(map[string]*fakeSub),
		failFor:  make(map[string]error),
	}
}

func (s *fakeSource) Subscribe(_ context.Context, table string, filter Filter, onEvent Handler, onStatus StatusHandler) (Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[table]; err != nil {
		return nil, err
	}
	s.handlers[table] = onEvent
	s.filters[table] = filter
	sub := &fakeSub{}
	s.subs[table] = sub
	if onStatus != nil {
		onStatus(constants.ConnectionConnected)
	}
	return sub, nil
}

func (s *fakeSource) push(table string, kind EventKind) {
	s.mu.Lock()
	h := s.handlers[table]
	s.mu.Unlock()
	if h != nil {
		h(Event{Kind: kind, Table: table})
	}
}

// recorder counts reloads and recomputes.
type recorder struct {
	mu         sync.Mutex
	reloads    []string
	recomputes int
	reloadErr  error
}

func (r *recorder) reload(_ context.Context, table string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reloadErr != nil {
		return r.reloadErr
	}
	r.reloads = append(r.reloads, table)
	return nil
}

func (r *recorder) recompute(_ context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recomputes++
}

func (r *recorder) reloadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reloads)
}

func (r *recorder) recomputeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recomputes
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func startCoordinator(t *testing.T, source *fakeSource, rec *recorder, delay time.Duration) *Coordinator {
	t.Helper()
	c := NewCoordinator(source, rec.reload, rec.recompute, zerolog.Nop(), WithDebounceDelay(delay))
	require.NoError(t, c.Start(context.Background(), "ws-acme"))
	t.Cleanup(c.Close)
	return c
}

func TestCoordinatorStart(t *testing.T) {
	t.Run("opens three subscriptions with workspace filters", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		c := startCoordinator(t, source, rec, 20*time.Millisecond)

		source.mu.Lock()
		defer source.mu.Unlock()
		require.Len(t, source.subs, 3)
		assert.Equal(t, Filter{Column: "workspace_id", Value: "ws-acme"}, source.filters[constants.TableDecisions])
		assert.Equal(t, Filter{Column: "workspace_id", Value: "ws-acme"}, source.filters[constants.TableTasks])
		assert.Equal(t, Filter{}, source.filters[constants.TableVotes], "votes are filtered globally")
		assert.Equal(t, constants.ConnectionConnected, c.Status())
	})

	t.Run("requires workspace id", func(t *testing.T) {
		c := NewCoordinator(newFakeSource(), (&recorder{}).reload, (&recorder{}).recompute, zerolog.Nop())
		assert.ErrorIs(t, c.Start(context.Background(), ""), pulseerrors.ErrWorkspaceRequired)
	})

	t.Run("rejects double start", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		c := startCoordinator(t, source, rec, 20*time.Millisecond)
		assert.ErrorIs(t, c.Start(context.Background(), "ws-acme"), pulseerrors.ErrCoordinatorStarted)
	})

	t.Run("subscription failure folds to error status", func(t *testing.T) {
		source := newFakeSource()
		source.failFor[constants.TableVotes] = errors.New("channel refused")
		rec := &recorder{}
		c := startCoordinator(t, source, rec, 20*time.Millisecond)

		assert.Equal(t, constants.ConnectionError, c.Status())
		source.mu.Lock()
		defer source.mu.Unlock()
		assert.Len(t, source.subs, 2, "remaining subscriptions still open")
	})
}

func TestCoordinatorDebounce(t *testing.T) {
	t.Run("burst of events recomputes exactly once", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		startCoordinator(t, source, rec, 50*time.Millisecond)

		for i := 0; i < 5; i++ {
			source.push(constants.TableDecisions, EventUpdate)
			source.push(constants.TableVotes, EventInsert)
		}

		waitFor(t, func() bool { return rec.recomputeCount() == 1 })
		// Quiet period: no second recompute stacks up.
		time.Sleep(120 * time.Millisecond)
		assert.Equal(t, 1, rec.recomputeCount())
		assert.GreaterOrEqual(t, rec.reloadCount(), 2, "both touched families reloaded")
	})

	t.Run("reload completes before recompute", func(t *testing.T) {
		source := newFakeSource()
		var order []string
		var mu sync.Mutex
		reload := func(_ context.Context, table string) error {
			mu.Lock()
			order = append(order, "reload:"+table)
			mu.Unlock()
			return nil
		}
		recompute := func(_ context.Context) {
			mu.Lock()
			order = append(order, "recompute")
			mu.Unlock()
		}
		c := NewCoordinator(source, reload, recompute, zerolog.Nop(), WithDebounceDelay(20*time.Millisecond))
		require.NoError(t, c.Start(context.Background(), "ws-acme"))
		defer c.Close()

		source.push(constants.TableTasks, EventInsert)
		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return len(order) == 2
		})

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"reload:tasks", "recompute"}, order)
	})

	t.Run("new event during window restarts the timer", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		startCoordinator(t, source, rec, 80*time.Millisecond)

		source.push(constants.TableDecisions, EventUpdate)
		time.Sleep(40 * time.Millisecond)
		source.push(constants.TableDecisions, EventUpdate)
		time.Sleep(60 * time.Millisecond)
		// Second event restarted the window, so nothing has fired yet.
		assert.Zero(t, rec.recomputeCount())

		waitFor(t, func() bool { return rec.recomputeCount() == 1 })
	})

	t.Run("separate bursts recompute separately", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		startCoordinator(t, source, rec, 20*time.Millisecond)

		source.push(constants.TableTasks, EventInsert)
		waitFor(t, func() bool { return rec.recomputeCount() == 1 })

		source.push(constants.TableTasks, EventDelete)
		waitFor(t, func() bool { return rec.recomputeCount() == 2 })
	})

	t.Run("reload failure does not stop recompute scheduling", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{reloadErr: errors.New("store down")}
		startCoordinator(t, source, rec, 20*time.Millisecond)

		source.push(constants.TableDecisions, EventUpdate)
		waitFor(t, func() bool { return rec.recomputeCount() == 1 })
	})
}

func TestCoordinatorClose(t *testing.T) {
	t.Run("unsubscribes all channels", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		c := startCoordinator(t, source, rec, 20*time.Millisecond)
		c.Close()

		source.mu.Lock()
		defer source.mu.Unlock()
		for table, sub := range source.subs {
			assert.Equal(t, int32(1), sub.unsubscribed.Load(), table)
		}
		assert.Equal(t, constants.ConnectionDisconnected, c.Status())
	})

	t.Run("no recompute fires after close", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		c := startCoordinator(t, source, rec, 50*time.Millisecond)

		source.push(constants.TableDecisions, EventUpdate)
		// Close lands inside the debounce window.
		time.Sleep(10 * time.Millisecond)
		c.Close()

		before := rec.recomputeCount()
		time.Sleep(120 * time.Millisecond)
		assert.Equal(t, before, rec.recomputeCount())
	})

	t.Run("events after close are ignored", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		c := startCoordinator(t, source, rec, 20*time.Millisecond)
		c.Close()

		source.push(constants.TableTasks, EventInsert)
		time.Sleep(60 * time.Millisecond)
		assert.Zero(t, rec.recomputeCount())
		assert.Zero(t, rec.reloadCount())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		c := startCoordinator(t, source, rec, 20*time.Millisecond)
		c.Close()
		c.Close()
	})

	t.Run("start after close is rejected", func(t *testing.T) {
		c := NewCoordinator(newFakeSource(), (&recorder{}).reload, (&recorder{}).recompute, zerolog.Nop())
		c.Close()
		assert.ErrorIs(t, c.Start(context.Background(), "ws-acme"), pulseerrors.ErrCoordinatorClosed)
	})

	t.Run("close racing start settles cleanly", func(t *testing.T) {
		source := newFakeSource()
		rec := &recorder{}
		c := NewCoordinator(source, rec.reload, rec.recompute, zerolog.Nop(), WithDebounceDelay(20*time.Millisecond))

		errCh := make(chan error, 1)
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			errCh <- c.Start(context.Background(), "ws-acme")
		}()
		go func() {
			defer wg.Done()
			c.Close()
		}()
		wg.Wait()

		if err := <-errCh; err != nil {
			assert.ErrorIs(t, err, pulseerrors.ErrCoordinatorClosed)
		}
		c.Close()
		assert.Equal(t, constants.ConnectionDisconnected, c.Status())
	})
}
