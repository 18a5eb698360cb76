package resourcegroup

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/uber-go/tally"

	"github.com/palantircloud/resourcegroups/query"
)

// InvariantSuite drives randomized sequences of Add/QueryFinished/
// SetMaxRunningQueries/ProcessQueuedQueries against a small tree and,
// after every step, checks the structural invariants a resource-group
// tree must never violate regardless of call order.
type InvariantSuite struct {
	suite.Suite
	root    *Root
	a, b    *Group
	a1      *Group
	queries []*fakeQuery
}

func TestInvariantSuite(t *testing.T) {
	suite.Run(t, new(InvariantSuite))
}

func (s *InvariantSuite) SetupTest() {
	root, err := CreateRoot("global", 3, 20, 1<<30, inertSubmitter{}, tally.NoopScope)
	s.Require().NoError(err)
	a, err := root.GetOrCreateSubGroup("a", 2, 10, 1<<30)
	s.Require().NoError(err)
	b, err := root.GetOrCreateSubGroup("b", 2, 10, 1<<30)
	s.Require().NoError(err)
	// a1 sits two hops below root, so the randomized sequence below
	// exercises the ancestor walk (add/dispatch/finish) at depth >= 3,
	// not just the one-hop case root->leaf.
	a1, err := a.GetOrCreateSubGroup("a1", 2, 10, 1<<30)
	s.Require().NoError(err)
	s.root, s.a, s.b, s.a1 = root, a, b, a1
	s.queries = nil
}

// checkInvariants walks every group in the tree rooted at g and
// asserts the structural invariants spec.md §8.1 lists.
func (s *InvariantSuite) checkInvariants(g *Group) {
	g.lock()

	// 1: shape — a group with sub-groups holds no queries of its own.
	if !g.isLeafLocked() {
		s.Equal(0, len(g.runningQueries), "%s: internal group holds running queries", g.id)
		s.True(g.queuedQueries.empty(), "%s: internal group holds queued queries", g.id)
	}

	// 2: counter consistency — descendantRunningQueries/descendantQueuedQueries
	// equal the sum, over direct children, of that child's own count plus
	// its own descendant count. Holds trivially at leaves (no children).
	var wantRunning, wantQueued int
	for _, c := range g.subGroups {
		wantRunning += len(c.runningQueries) + c.descendantRunningQueries
		wantQueued += c.queuedQueries.size() + c.descendantQueuedQueries
	}
	s.Equal(wantRunning, g.descendantRunningQueries, "%s: descendantRunningQueries out of sync with children", g.id)
	s.Equal(wantQueued, g.descendantQueuedQueries, "%s: descendantQueuedQueries out of sync with children", g.id)

	// 6: canQueueMore — queued count (own + descendants) never exceeds
	// its configured limit. The analogous running-count check is
	// deliberately omitted: lowering maxRunningQueries via
	// SetMaxRunningQueries does not evict already-running queries, so a
	// transient over-limit running count is valid, not a bug.
	s.LessOrEqual(g.queuedQueries.size()+g.descendantQueuedQueries, g.maxQueuedQueries,
		"%s: queued count exceeds limit", g.id)

	// 3: eligibility membership — a group is eligible only if it can run
	// more and has something to run, and every group parked in a
	// parent's eligibleSubGroups is actually eligible right now.
	eligible := g.isEligibleLocked()
	hasWork := !g.queuedQueries.empty() || !g.eligibleSubGroups.empty()
	if eligible {
		s.True(g.canRunMoreLocked(), "%s: marked eligible without run capacity", g.id)
		s.True(hasWork, "%s: marked eligible with no work", g.id)
	}
	g.eligibleSubGroups.each(func(c *Group) {
		s.True(c.isEligibleLocked(), "%s: %s listed eligible but isn't", g.id, c.id)
	})

	// 4: dirty membership — a child with any running query anywhere in
	// its subtree must be parked in dirtySubGroups. The flag is pruned
	// lazily during refresh, so only this direction holds in general: a
	// child that drained since the last refresh may still linger in the
	// set.
	for _, c := range g.subGroups {
		if c.isDirtyLocked() {
			_, present := g.dirtySubGroups[c]
			s.True(present, "%s: %s is dirty but missing from dirtySubGroups", g.id, c.id)
		}
	}

	// The tree shares one non-reentrant lock, so release it before
	// descending into the children.
	children := make([]*Group, 0, len(g.subGroups))
	for _, c := range g.subGroups {
		children = append(children, c)
	}
	g.unlock()

	for _, c := range children {
		s.checkInvariants(c)
	}
}

func (s *InvariantSuite) randomGroup(r *rand.Rand) *Group {
	switch r.Intn(2) {
	case 0:
		return s.a1
	default:
		return s.b
	}
}

func (s *InvariantSuite) TestRandomizedSequencePreservesInvariants() {
	r := rand.New(rand.NewSource(42))
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		switch r.Intn(4) {
		case 0: // admit a new query to a random leaf
			g := s.randomGroup(r)
			q := newFakeQuery("seq", int64(r.Intn(1<<20)))
			_, err := g.Add(ctx, q)
			s.Require().NoError(err)
			s.queries = append(s.queries, q)
		case 1: // finish a random in-flight query
			if len(s.queries) > 0 {
				idx := r.Intn(len(s.queries))
				q := s.queries[idx]
				if !q.State().IsDone() {
					q.finish(query.StateFinished)
				}
			}
		case 2: // reconfigure a random group's running limit
			g := s.randomGroup(r)
			_ = g.SetMaxRunningQueries(r.Intn(4))
		case 3: // drive the dispatcher
			s.root.ProcessQueuedQueries(ctx)
		}
		s.checkInvariants(s.root.Group)
	}

	// 5: round-trip to zero — draining every outstanding query and
	// running the dispatcher to quiescence returns every counter and
	// collection in the tree to its zero value, regardless of how
	// tangled the preceding random sequence was.
	for _, q := range s.queries {
		if !q.State().IsDone() {
			q.finish(query.StateFinished)
		}
	}
	s.root.ProcessQueuedQueries(ctx)
	s.checkInvariants(s.root.Group)
	s.assertFullyDrained(s.root.Group)
}

// assertFullyDrained asserts every counter and collection in the tree
// rooted at g is back to its zero value.
func (s *InvariantSuite) assertFullyDrained(g *Group) {
	g.lock()
	s.Equal(0, len(g.runningQueries), "%s: running queries left after full drain", g.id)
	s.True(g.queuedQueries.empty(), "%s: queued queries left after full drain", g.id)
	s.Equal(0, g.descendantRunningQueries, "%s: descendantRunningQueries not zero after full drain", g.id)
	s.Equal(0, g.descendantQueuedQueries, "%s: descendantQueuedQueries not zero after full drain", g.id)
	s.True(g.eligibleSubGroups.empty(), "%s: eligibleSubGroups not empty after full drain", g.id)
	s.Equal(0, len(g.dirtySubGroups), "%s: dirtySubGroups not empty after full drain", g.id)
	children := make([]*Group, 0, len(g.subGroups))
	for _, c := range g.subGroups {
		children = append(children, c)
	}
	g.unlock()

	for _, c := range children {
		s.assertFullyDrained(c)
	}
}
