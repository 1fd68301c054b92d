package runtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// ServerState is everything the runtime keeps in memory for a connector: the
// immutable configuration, the metrics registry, and the lazily-initialized
// connector state.
type ServerState[Configuration, State any] struct {
	configuration *Configuration
	metrics       *prometheus.Registry
	cell          stateCell[State]
	init          func(ctx context.Context) (*State, error)
}

// NewServerState wires a configuration to a state initializer. init receives
// the registry stored here so connectors can register their own collectors.
func NewServerState[Configuration, State any](
	configuration *Configuration,
	metrics *prometheus.Registry,
	init func(ctx context.Context) (*State, error),
) *ServerState[Configuration, State] {
	return &ServerState[Configuration, State]{
		configuration: configuration,
		metrics:       metrics,
		init:          init,
	}
}

// Configuration returns the validated connector configuration.
func (s *ServerState[Configuration, State]) Configuration() *Configuration {
	return s.configuration
}

// Metrics returns the registry shared between the runtime and the connector.
func (s *ServerState[Configuration, State]) Metrics() *prometheus.Registry {
	return s.metrics
}

// State returns the connector state, initializing it on first use. Failed
// initialization is surfaced to the caller and retried by the next caller; a
// transient failure never requires a process restart.
func (s *ServerState[Configuration, State]) State(ctx context.Context) (*State, error) {
	return s.cell.getOrInit(ctx, s.init)
}

// Peek returns the state if it is already initialized, without triggering
// initialization. The health route relies on this never blocking.
func (s *ServerState[Configuration, State]) Peek() *State {
	return s.cell.ready.Load()
}

// stateCell is a lazily-initialized, shared, fallible holder. It collapses N
// concurrent first callers into one initialization attempt and broadcasts the
// outcome to all of them. A failed attempt resets the cell so the next wave
// of callers retries, bounding wasted work to one attempt in flight at a
// time.
type stateCell[State any] struct {
	ready atomic.Pointer[State]

	mu       sync.Mutex
	inflight *initAttempt[State]
}

// initAttempt is one wave of initialization. done is closed when the winning
// caller has published state or err.
type initAttempt[State any] struct {
	done  chan struct{}
	state *State
	err   error
}

func (c *stateCell[State]) getOrInit(ctx context.Context, init func(ctx context.Context) (*State, error)) (*State, error) {
	if state := c.ready.Load(); state != nil {
		return state, nil
	}

	c.mu.Lock()
	// Re-check under the lock: a winner may have published between the fast
	// path and here.
	if state := c.ready.Load(); state != nil {
		c.mu.Unlock()
		return state, nil
	}
	if attempt := c.inflight; attempt != nil {
		c.mu.Unlock()
		return attempt.wait(ctx)
	}
	attempt := &initAttempt[State]{done: make(chan struct{})}
	c.inflight = attempt
	c.mu.Unlock()

	attempt.state, attempt.err = init(ctx)

	c.mu.Lock()
	if attempt.err == nil {
		c.ready.Store(attempt.state)
	}
	c.inflight = nil
	c.mu.Unlock()
	close(attempt.done)

	return attempt.state, attempt.err
}

// wait blocks until the attempt completes or the waiter's own request is
// cancelled. A cancelled waiter does not disturb the attempt; the winner
// still publishes its outcome for everyone else.
func (a *initAttempt[State]) wait(ctx context.Context) (*State, error) {
	select {
	case <-a.done:
		return a.state, a.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
