package resourcegroup

import "github.com/uber-go/tally"

// Metrics is a placeholder for the in-process counters and gauges kept
// per group. This is ordinary observability instrumentation, not the
// out-of-scope metrics-export transport: nothing here talks to a
// reporter, a registry, or the network.
type Metrics struct {
	Admitted tally.Counter
	Rejected tally.Counter
	Started  tally.Counter
	Finished tally.Counter

	QueuedSize  tally.Gauge
	RunningSize tally.Gauge

	CachedMemoryUsageBytes tally.Gauge
	DirtySubGroups         tally.Gauge
	EligibleSubGroups      tally.Gauge
}

// NewMetrics returns a new Metrics scoped to the given group path.
func NewMetrics(scope tally.Scope) *Metrics {
	admissionScope := scope.SubScope("admission")
	queueScope := scope.SubScope("queue")

	return &Metrics{
		Admitted: admissionScope.Counter("admitted"),
		Rejected: admissionScope.Counter("rejected"),
		Started:  admissionScope.Counter("started"),
		Finished: admissionScope.Counter("finished"),

		QueuedSize:  queueScope.Gauge("queued_size"),
		RunningSize: queueScope.Gauge("running_size"),

		CachedMemoryUsageBytes: scope.Gauge("cached_memory_usage_bytes"),
		DirtySubGroups:         scope.Gauge("dirty_sub_groups"),
		EligibleSubGroups:      scope.Gauge("eligible_sub_groups"),
	}
}
