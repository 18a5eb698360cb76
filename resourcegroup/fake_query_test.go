package resourcegroup

import (
	"context"
	"sync"

	"github.com/palantircloud/resourcegroups/executor"
	"github.com/palantircloud/resourcegroups/query"
)

// fakeQuery is a synchronous, test-only query.Handle. Unlike a real
// engine, Start transitions straight to running and does no work of
// its own; tests call finish explicitly to control timing.
type fakeQuery struct {
	mu        sync.Mutex
	id        string
	state     query.State
	memory    int64
	listeners []query.StateChangeListener
	started   int

	// finishOnStart, if set, is the terminal state Start transitions
	// straight to instead of StateRunning, with no listener notified:
	// this is how tests reproduce a query finishing before the
	// admission core has had a chance to register its listener.
	finishOnStart query.State

	// onStart, if set, is called after Start transitions the query,
	// letting a test record the order in which queries were dispatched.
	onStart func()
}

func newFakeQuery(id string, memory int64) *fakeQuery {
	return &fakeQuery{id: id, state: query.StateQueued, memory: memory}
}

func (q *fakeQuery) ID() string { return q.id }

func (q *fakeQuery) Start(ctx context.Context) {
	q.mu.Lock()
	q.started++
	if q.finishOnStart != query.StateQueued {
		q.state = q.finishOnStart
	} else {
		q.state = query.StateRunning
	}
	onStart := q.onStart
	q.mu.Unlock()
	if onStart != nil {
		onStart()
	}
}

func (q *fakeQuery) State() query.State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *fakeQuery) AddStateChangeListener(fn query.StateChangeListener) {
	q.mu.Lock()
	q.listeners = append(q.listeners, fn)
	q.mu.Unlock()
}

func (q *fakeQuery) TotalMemoryReservationBytes() int64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.memory
}

// finish transitions q to state and synchronously notifies every
// listener registered so far, mirroring an engine that fires the
// callback inline on its own completion path.
func (q *fakeQuery) finish(state query.State) {
	q.mu.Lock()
	q.state = state
	listeners := append([]query.StateChangeListener(nil), q.listeners...)
	q.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// finishedQuery returns a fakeQuery whose Start immediately transitions
// to a terminal state with no listener notified, for exercising the
// already-terminal-by-the-time-we-registered race.
func finishedQuery(id string, memory int64, state query.State) *fakeQuery {
	q := newFakeQuery(id, memory)
	q.finishOnStart = state
	return q
}

// inertSubmitter runs the job synchronously on the caller's goroutine,
// so admission-core tests observe Start's effect immediately without
// needing to synchronize with a background worker.
type inertSubmitter struct{}

func (inertSubmitter) Submit(job executor.Job) {
	job(context.Background())
}
