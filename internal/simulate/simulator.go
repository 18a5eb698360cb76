// Package simulate provides an in-memory query.Handle that transitions
// Queued -> Running -> Finished on a timer, standing in for the real
// execution engine so the demo binary and integration tests can drive
// the admission core end to end without a query planner or worker
// fleet.
package simulate

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/palantircloud/resourcegroups/query"
	"github.com/palantircloud/resourcegroups/scalar"
)

// Query is a simulated query.Handle. Start launches a goroutine that
// sleeps for a random duration within [minRuntime, maxRuntime) and
// then transitions to StateFinished, notifying every listener
// registered by that point — listeners added after Start has already
// finished never fire, matching the already-terminal race a real
// engine's callback can hit.
//
// Its resource footprint is a scalar.Usage: the admission core only
// ever reads MemoryBytes (the only gated dimension), but CPUMillis
// rides along so callers driving the simulator can report a fuller
// picture than the engine itself gates on.
type Query struct {
	mu         sync.Mutex
	id         string
	usage      scalar.Usage
	minRuntime time.Duration
	maxRuntime time.Duration
	rand       *rand.Rand

	state     query.State
	listeners []query.StateChangeListener
}

// Options configures a simulated Query's runtime and resource footprint.
type Options struct {
	MemoryBytes int64
	CPUMillis   int64
	MinRuntime  time.Duration
	MaxRuntime  time.Duration
}

// New returns a Query in StateQueued, identified by a fresh UUID.
func New(o Options) *Query {
	if o.MaxRuntime <= o.MinRuntime {
		o.MaxRuntime = o.MinRuntime + time.Millisecond
	}
	return &Query{
		id:         uuid.NewString(),
		usage:      scalar.Usage{MemoryBytes: o.MemoryBytes, CPUMillis: o.CPUMillis},
		minRuntime: o.MinRuntime,
		maxRuntime: o.MaxRuntime,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
		state:      query.StateQueued,
	}
}

// Usage returns the query's simulated resource footprint.
func (q *Query) Usage() scalar.Usage {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.usage
}

func (q *Query) ID() string { return q.id }

func (q *Query) State() query.State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Query) AddStateChangeListener(fn query.StateChangeListener) {
	q.mu.Lock()
	q.listeners = append(q.listeners, fn)
	q.mu.Unlock()
}

func (q *Query) TotalMemoryReservationBytes() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.usage.MemoryBytes
}

// Start transitions q to StateRunning and schedules its completion.
// It is safe to call more than once; only the first call schedules
// anything.
func (q *Query) Start(ctx context.Context) {
	q.mu.Lock()
	if q.state != query.StateQueued {
		q.mu.Unlock()
		return
	}
	q.state = query.StateRunning
	runtime := q.minRuntime + time.Duration(q.rand.Int63n(int64(q.maxRuntime-q.minRuntime)))
	q.mu.Unlock()

	go func() {
		timer := time.NewTimer(runtime)
		defer timer.Stop()
		select {
		case <-timer.C:
			q.finish(query.StateFinished)
		case <-ctx.Done():
			q.finish(query.StateCancelled)
		}
	}()
}

func (q *Query) finish(state query.State) {
	q.mu.Lock()
	if q.state.IsDone() {
		q.mu.Unlock()
		return
	}
	q.state = state
	listeners := append([]query.StateChangeListener(nil), q.listeners...)
	q.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}
