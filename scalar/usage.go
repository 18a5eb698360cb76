// Package scalar holds small value types for resource accounting: a
// named vector of memory and CPU usage. It is used by the query
// simulator and the demo binary; the admission core keeps its cached
// memory usage as a bare int64 and does not use this package. Only
// memory gates admission; CPU is carried without any gate.
package scalar

// Usage is a non-thread-safe value type holding cached resource usage
// for a group or a single query.
type Usage struct {
	MemoryBytes int64
	CPUMillis   int64
}

// Add returns the element-wise sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		MemoryBytes: u.MemoryBytes + other.MemoryBytes,
		CPUMillis:   u.CPUMillis + other.CPUMillis,
	}
}

// Subtract returns the element-wise difference u - other.
func (u Usage) Subtract(other Usage) Usage {
	return Usage{
		MemoryBytes: u.MemoryBytes - other.MemoryBytes,
		CPUMillis:   u.CPUMillis - other.CPUMillis,
	}
}

// LessThan reports whether u.MemoryBytes is strictly less than limit,
// the only gate the admission core evaluates.
func (u Usage) LessThan(limitMemoryBytes int64) bool {
	return u.MemoryBytes < limitMemoryBytes
}
