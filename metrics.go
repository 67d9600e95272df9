package arena

// Occupied returns the number of bytes below the allocation cursor,
// including alignment padding.
func (a *Arena) Occupied() int {
	if a.data == nil {
		return 0
	}
	return a.begin
}

// Available returns the bytes left between the cursor and the lowest live
// scratch window.
func (a *Arena) Available() int {
	if a.data == nil {
		return 0
	}
	return a.end - a.begin
}

// Capacity returns the size of the arena's buffer in bytes.
func (a *Arena) Capacity() int {
	return len(a.data)
}

// Reserved returns the bytes currently lent to scratch arenas.
func (a *Arena) Reserved() int {
	if a.data == nil {
		return 0
	}
	return len(a.data) - a.end
}

// Peak returns the highest value the cursor has reached. Reset does not
// lower it.
func (a *Arena) Peak() int {
	return a.peak
}

// Allocs returns the number of successful allocations, in-place resizes
// included.
func (a *Arena) Allocs() int {
	return a.allocs
}

// Scratches returns the number of live scratch arenas carved from a.
func (a *Arena) Scratches() int {
	return a.scratches
}

// Utilization returns the ratio of occupied bytes to capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.Occupied()) / float64(capacity)
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() Metrics {
	return Metrics{
		Occupied:    a.Occupied(),
		Available:   a.Available(),
		Reserved:    a.Reserved(),
		Capacity:    a.Capacity(),
		Peak:        a.Peak(),
		Allocs:      a.Allocs(),
		Scratches:   a.Scratches(),
		Utilization: a.Utilization(),
	}
}

// Metrics contains statistical information about an arena.
type Metrics struct {
	Occupied    int     // Bytes below the cursor
	Available   int     // Bytes still allocatable
	Reserved    int     // Bytes held by scratch arenas
	Capacity    int     // Total capacity in bytes
	Peak        int     // High-water mark of Occupied
	Allocs      int     // Successful allocations
	Scratches   int     // Live scratch arenas
	Utilization float64 // Ratio of occupied to total capacity (0.0-1.0)
}

// MetricsSource is anything that can report arena metrics.
type MetricsSource interface {
	Metrics() Metrics
}
