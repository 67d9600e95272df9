package arena

import (
	"sync"
)

// SafeArena is a mutex-protected wrapper around Arena for concurrent access.
// Arena itself does no locking; this is the external lock for callers that
// must share one region between goroutines.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

// NewSafeArena creates a new thread-safe arena owning capacity bytes.
func NewSafeArena(capacity int, opts ...Option) *SafeArena {
	return &SafeArena{a: NewArena(capacity, opts...)}
}

// Alloc thread-safely reserves count*size bytes aligned to align.
func (s *SafeArena) Alloc(count, size, align int, flags Flags) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Alloc(count, size, align, flags)
}

// Dup thread-safely copies src into the arena.
func (s *SafeArena) Dup(src []byte, align int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Dup(src, align)
}

// Realloc thread-safely resizes b. In-place growth only applies when no
// other goroutine allocated since b was returned.
func (s *SafeArena) Realloc(b []byte, count, size, align int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Realloc(b, count, size, align)
}

// Fits thread-safely reports whether an allocation would succeed.
func (s *SafeArena) Fits(count, size, align int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Fits(count, size, align)
}

// Do runs fn with exclusive access to the underlying arena, for multi-step
// work such as building a dictionary. fn must not retain a.
func (s *SafeArena) Do(fn func(a *Arena)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.a)
}

// Reset thread-safely rewinds the arena for reuse.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release thread-safely drops the buffer and makes the arena unusable.
func (s *SafeArena) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Release()
}

// SafeAlloc thread-safely returns a pointer to a zeroed T stored inside the arena.
func SafeAlloc[T any](s *SafeArena) *T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.a)
}

// SafeAllocSlice thread-safely allocates a slice of n elements of type T.
func SafeAllocSlice[T any](s *SafeArena, n int) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.a, n)
}

// SafeAllocSliceZeroed thread-safely allocates a slice of n zeroed elements.
func SafeAllocSliceZeroed[T any](s *SafeArena, n int) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSliceZeroed[T](s.a, n)
}

// Occupied thread-safely returns the bytes below the cursor.
func (s *SafeArena) Occupied() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Occupied()
}

// Available thread-safely returns the bytes still allocatable.
func (s *SafeArena) Available() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Available()
}

// Metrics thread-safely returns a snapshot of arena statistics.
func (s *SafeArena) Metrics() Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}
