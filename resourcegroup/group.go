// Package resourcegroup implements a hierarchical resource-group
// admission and scheduling core: a tree of groups, each enforcing
// per-group limits on running queries, queued queries, and soft
// memory usage, with a fair round-robin dispatch order across
// eligible siblings.
//
// A single lock, held by the root of each tree, guards every node in
// that tree. Every exported method acquires it for its full duration;
// every "Locked"-suffixed private helper asserts that it is held.
package resourcegroup

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/uber-go/tally"

	"github.com/palantircloud/resourcegroups/executor"
	"github.com/palantircloud/resourcegroups/query"
)

// Group is a node in a resource-group tree. A Group with any
// sub-groups is internal and holds no queries; a Group with no
// sub-groups is a leaf and is the only kind that holds queries. See
// Root for the distinct entry point that owns the tree's lock and
// exposes the driver tick.
type Group struct {
	id     ID
	parent *Group
	root   *Group // == the Group itself, for a root

	mu        sync.Mutex // meaningful only on root; children defer to root.mu
	submitter executor.Submitter
	scope     tally.Scope

	subGroups map[string]*Group

	softMemoryLimitBytes int64
	maxRunningQueries    int
	maxQueuedQueries     int

	queuedQueries  *linkedSet[query.Handle]
	runningQueries map[query.Handle]struct{}

	eligibleSubGroups *linkedSet[*Group]
	dirtySubGroups    map[*Group]struct{}

	descendantRunningQueries int
	descendantQueuedQueries  int
	cachedMemoryUsageBytes   int64

	metrics *Metrics
}

// Root is the distinct entry point into a resource-group tree. Only a
// Root may run a driver tick (ProcessQueuedQueries); this mirrors the
// original's RootResourceGroup subclass restricting that method to the
// root, as a compile-time guarantee rather than a runtime check.
type Root struct {
	*Group
}

// CreateRoot creates the root of a new resource-group tree.
func CreateRoot(
	name string,
	maxRunningQueries int,
	maxQueuedQueries int,
	softMemoryLimitBytes int64,
	submitter executor.Submitter,
	scope tally.Scope,
) (*Root, error) {
	if name == "" {
		return nil, ErrInvalidArgument
	}
	if maxRunningQueries < 0 || maxQueuedQueries < 0 || softMemoryLimitBytes < 0 {
		return nil, ErrInvalidArgument
	}
	if submitter == nil {
		return nil, ErrInvalidArgument
	}
	if scope == nil {
		scope = tally.NoopScope
	}
	groupScope := scope.Tagged(map[string]string{"group": name})

	g := &Group{
		id:                   RootID(name),
		submitter:            submitter,
		scope:                groupScope,
		subGroups:            make(map[string]*Group),
		softMemoryLimitBytes: softMemoryLimitBytes,
		maxRunningQueries:    maxRunningQueries,
		maxQueuedQueries:     maxQueuedQueries,
		queuedQueries:        newLinkedSet[query.Handle](),
		runningQueries:       make(map[query.Handle]struct{}),
		eligibleSubGroups:    newLinkedSet[*Group](),
		dirtySubGroups:       make(map[*Group]struct{}),
		metrics:              NewMetrics(groupScope),
	}
	g.root = g
	return &Root{Group: g}, nil
}

// ID returns the group's structural identifier.
func (g *Group) ID() ID {
	return g.id
}

// Name returns the group's own name segment.
func (g *Group) Name() string {
	return g.id.Name()
}

// Parent returns the group's parent, or nil for the root.
func (g *Group) Parent() *Group {
	return g.parent
}

// IsRoot reports whether g is the root of its tree.
func (g *Group) IsRoot() bool {
	return g.parent == nil
}

// IsLeaf reports whether g currently has no sub-groups.
func (g *Group) IsLeaf() bool {
	g.lock()
	defer g.unlock()
	return g.isLeafLocked()
}

func (g *Group) isLeafLocked() bool {
	return len(g.subGroups) == 0
}

func (g *Group) String() string {
	return "ResourceGroup{" + g.id.String() + "}"
}

func (g *Group) lock()   { g.root.mu.Lock() }
func (g *Group) unlock() { g.root.mu.Unlock() }

// assertLocked panics if the tree's root lock is not currently held by
// anyone. It is the Go shape of the original's checkState(Thread.holdsLock(root)).
func (g *Group) assertLocked(helper string) {
	if g.root.mu.TryLock() {
		g.root.mu.Unlock()
		lockNotHeld(helper)
	}
}

// --- limit setters (§4.2) ---

// SetMaxRunningQueries updates the group's running-query limit. If the
// change flips canRunMore, eligibility is recomputed up the spine.
func (g *Group) SetMaxRunningQueries(n int) error {
	if n < 0 {
		return ErrInvalidArgument
	}
	g.lock()
	defer g.unlock()
	before := g.canRunMoreLocked()
	g.maxRunningQueries = n
	if g.canRunMoreLocked() != before {
		g.updateEligibilityLocked()
	}
	return nil
}

// SetMaxQueuedQueries updates the group's queued-query limit. Per the
// original, this never recomputes eligibility: isEligibleToStartNext
// depends on canRunMore, not canQueueMore, so a queue-limit change can
// never flip it. See DESIGN.md Open Questions.
func (g *Group) SetMaxQueuedQueries(n int) error {
	if n < 0 {
		return ErrInvalidArgument
	}
	g.lock()
	defer g.unlock()
	g.maxQueuedQueries = n
	return nil
}

// SetSoftMemoryLimit updates the group's advisory memory limit. If the
// change flips canRunMore, eligibility is recomputed up the spine.
func (g *Group) SetSoftMemoryLimit(bytes int64) error {
	if bytes < 0 {
		return ErrInvalidArgument
	}
	g.lock()
	defer g.unlock()
	before := g.canRunMoreLocked()
	g.softMemoryLimitBytes = bytes
	if g.canRunMoreLocked() != before {
		g.updateEligibilityLocked()
	}
	return nil
}

// --- group construction (§4.2) ---

// GetOrCreateSubGroup returns the named child of g, creating it with
// the given limits if it does not already exist. If a child with that
// name already exists, it is returned unchanged: the limits passed to
// this call are ignored. See DESIGN.md, "GetOrCreateSubGroup
// idempotency and limits-on-existing-group".
func (g *Group) GetOrCreateSubGroup(name string, maxRunningQueries, maxQueuedQueries int, softMemoryLimitBytes int64) (*Group, error) {
	if name == "" {
		return nil, ErrInvalidArgument
	}
	if maxRunningQueries < 0 || maxQueuedQueries < 0 || softMemoryLimitBytes < 0 {
		return nil, ErrInvalidArgument
	}

	g.lock()
	defer g.unlock()

	if len(g.runningQueries) > 0 || !g.queuedQueries.empty() {
		return nil, ErrGroupNotLeaf
	}
	if existing, ok := g.subGroups[name]; ok {
		return existing, nil
	}

	childScope := g.scope.Tagged(map[string]string{"group": g.id.Child(name).String()})
	child := &Group{
		id:                   g.id.Child(name),
		parent:               g,
		root:                 g.root,
		submitter:            g.submitter,
		scope:                childScope,
		subGroups:            make(map[string]*Group),
		softMemoryLimitBytes: softMemoryLimitBytes,
		maxRunningQueries:    maxRunningQueries,
		maxQueuedQueries:     maxQueuedQueries,
		queuedQueries:        newLinkedSet[query.Handle](),
		runningQueries:       make(map[query.Handle]struct{}),
		eligibleSubGroups:    newLinkedSet[*Group](),
		dirtySubGroups:       make(map[*Group]struct{}),
		metrics:              NewMetrics(childScope),
	}
	log.WithFields(log.Fields{
		"group":             child.id.String(),
		"maxRunningQueries": maxRunningQueries,
		"maxQueuedQueries":  maxQueuedQueries,
		"softMemoryLimitMB": softMemoryLimitBytes / (1 << 20),
	}).Info("resourcegroup: created sub-group")
	g.subGroups[name] = child
	return child, nil
}

// --- admission (§4.3) ---

// Add attempts to admit query to g, which must be a leaf. It returns
// true if the query was accepted (started or enqueued), false if every
// admission path is closed. Once accepted, g releases its reference to
// the query exactly once, when it reports a terminal state.
func (g *Group) Add(ctx context.Context, q query.Handle) (bool, error) {
	g.lock()
	defer g.unlock()

	if !g.isLeafLocked() {
		return false, ErrGroupNotLeaf
	}

	canQueue := true
	canRun := true
	for n := g; ; n = n.parent {
		canQueue = canQueue && n.canQueueMoreLocked()
		canRun = canRun && n.canRunMoreLocked()
		if n.parent == nil {
			break
		}
	}

	if !canQueue && !canRun {
		g.metrics.Rejected.Inc(1)
		return false, nil
	}

	if canRun {
		g.startInBackgroundLocked(ctx, q)
	} else {
		g.enqueueLocked(q)
	}

	q.AddStateChangeListener(func(state query.State) {
		if state.IsDone() {
			g.QueryFinished(q)
		}
	})
	if q.State().IsDone() {
		g.queryFinishedLocked(q)
	}

	g.metrics.Admitted.Inc(1)
	return true, nil
}

func (g *Group) enqueueLocked(q query.Handle) {
	g.assertLocked("enqueue")
	g.queuedQueries.add(q)
	for a := g.parent; a != nil; a = a.parent {
		a.descendantQueuedQueries++
	}
	g.updateEligibilityLocked()
	g.metrics.QueuedSize.Update(float64(g.queuedQueries.size()))
}

func (g *Group) startInBackgroundLocked(ctx context.Context, q query.Handle) {
	g.assertLocked("startInBackground")
	g.runningQueries[q] = struct{}{}

	child := g
	for a := g.parent; a != nil; a = a.parent {
		a.descendantRunningQueries++
		a.dirtySubGroups[child] = struct{}{}
		child = a
	}
	g.updateEligibilityLocked()

	g.metrics.RunningSize.Update(float64(len(g.runningQueries)))
	g.metrics.Started.Inc(1)

	g.submitter.Submit(func(context.Context) {
		q.Start(ctx)
	})
}

// --- eligibility maintenance (§4.6) ---

func (g *Group) updateEligibilityLocked() {
	g.assertLocked("updateEligibility")
	if g.IsRoot() {
		return
	}
	p := g.parent
	if g.isEligibleLocked() {
		p.eligibleSubGroups.add(g)
	} else {
		p.eligibleSubGroups.remove(g)
	}
	p.metrics.EligibleSubGroups.Update(float64(p.eligibleSubGroups.size()))
	p.updateEligibilityLocked()
}

// --- completion (§4.7) ---

// QueryFinished is the idempotent terminal-state callback: it removes
// q from wherever it is tracked (running or queued) and propagates the
// decrement up the spine. Re-delivery after cleanup is a no-op.
func (g *Group) QueryFinished(q query.Handle) {
	g.lock()
	defer g.unlock()
	g.queryFinishedLocked(q)
}

func (g *Group) queryFinishedLocked(q query.Handle) {
	g.assertLocked("queryFinished")

	_, running := g.runningQueries[q]
	queued := g.queuedQueries.contains(q)
	if !running && !queued {
		return
	}

	if running {
		delete(g.runningQueries, q)
		for a := g.parent; a != nil; a = a.parent {
			a.descendantRunningQueries--
		}
	} else {
		g.queuedQueries.remove(q)
		for a := g.parent; a != nil; a = a.parent {
			a.descendantQueuedQueries--
		}
	}
	g.updateEligibilityLocked()

	g.metrics.Finished.Inc(1)
	g.metrics.RunningSize.Update(float64(len(g.runningQueries)))
	g.metrics.QueuedSize.Update(float64(g.queuedQueries.size()))
}

// --- memory refresh (§4.8) ---

func (g *Group) internalRefreshStatsLocked() {
	g.assertLocked("internalRefreshStats")

	if g.isLeafLocked() {
		var total int64
		for q := range g.runningQueries {
			total += q.TotalMemoryReservationBytes()
		}
		g.cachedMemoryUsageBytes = total
		g.metrics.CachedMemoryUsageBytes.Update(float64(total))
		return
	}

	dirty := make([]*Group, 0, len(g.dirtySubGroups))
	for c := range g.dirtySubGroups {
		dirty = append(dirty, c)
	}
	for _, c := range dirty {
		g.cachedMemoryUsageBytes -= c.cachedMemoryUsageBytes
		c.internalRefreshStatsLocked()
		g.cachedMemoryUsageBytes += c.cachedMemoryUsageBytes
		if !c.isDirtyLocked() {
			delete(g.dirtySubGroups, c)
		}
	}
	g.metrics.CachedMemoryUsageBytes.Update(float64(g.cachedMemoryUsageBytes))
	g.metrics.DirtySubGroups.Update(float64(len(g.dirtySubGroups)))
}

// --- dispatch (§4.9) ---

func (g *Group) internalStartNextLocked(ctx context.Context) bool {
	g.assertLocked("internalStartNext")

	if !g.canRunMoreLocked() {
		return false
	}

	if q, ok := g.queuedQueries.poll(); ok {
		g.metrics.QueuedSize.Update(float64(g.queuedQueries.size()))
		g.startInBackgroundLocked(ctx, q)
		return true
	}

	child, ok := g.eligibleSubGroups.poll()
	if !ok {
		return false
	}
	started := child.internalStartNextLocked(ctx)
	if !started {
		invariantViolated(child.id)
	}
	g.descendantQueuedQueries--
	// Do not call updateEligibility here: we're in a recursive call and
	// the leaf that actually started already updated its own ancestors
	// on the way up via startInBackgroundLocked.
	if child.isEligibleLocked() {
		g.eligibleSubGroups.add(child)
	}
	return true
}

// --- limit predicates (§3, invariants 5 & 6) ---

func (g *Group) canQueueMoreLocked() bool {
	g.assertLocked("canQueueMore")
	return g.descendantQueuedQueries+g.queuedQueries.size() < g.maxQueuedQueries
}

func (g *Group) canRunMoreLocked() bool {
	g.assertLocked("canRunMore")
	return len(g.runningQueries)+g.descendantRunningQueries < g.maxRunningQueries &&
		g.cachedMemoryUsageBytes < g.softMemoryLimitBytes
}

func (g *Group) isEligibleLocked() bool {
	g.assertLocked("isEligibleToStartNext")
	if !g.canRunMoreLocked() {
		return false
	}
	return !g.queuedQueries.empty() || !g.eligibleSubGroups.empty()
}

func (g *Group) isDirtyLocked() bool {
	g.assertLocked("isDirty")
	return len(g.runningQueries)+g.descendantRunningQueries > 0
}

// --- driver tick (§4.10), root only ---

// ProcessQueuedQueries refreshes memory accounting and then dispatches
// until no more queries in the tree can be started. It is safe to call
// concurrently with itself: the call is serialized on the root lock.
func (r *Root) ProcessQueuedQueries(ctx context.Context) {
	r.lock()
	defer r.unlock()

	r.internalRefreshStatsLocked()
	for r.internalStartNextLocked(ctx) {
	}
}
