// Package arena implements a fixed-capacity bump allocator (memory arena) for Go.
//
// # Overview
//
// An arena owns one buffer allocated up front and hands out pieces of it by
// advancing a cursor. Nothing is freed individually; the whole region is
// dropped at once. This is particularly useful for:
//
//   - Building many small objects whose lifetimes end together
//   - Index-linked data structures that never move once written
//   - Temporary working memory with strict LIFO discipline
//
// # Basic Usage
//
//	a := arena.NewArena(1 << 20) // 1 MiB, allocated once
//	defer a.Release()
//
//	// Raw bytes: count, element size, alignment, flags
//	buf := a.Alloc(16, 8, 8, 0)
//
//	// Typed values
//	ptr := arena.Alloc[MyStruct](a)
//	slice := arena.AllocSlice[int64](a, 100)
//
//	// Grow the most recent allocation in place
//	slice = arena.Grow(a, slice, 200)
//
// # Memory Layout
//
//	data                 begin              end            len(data)
//	|--- allocations ---->|---- available ---->|<-- scratch --|
//
// Allocations advance begin toward end. Scratch arenas are carved from the
// top by moving end down and are handed back in reverse order of creation,
// so temporary work never fragments the permanent region below.
//
//	scratch := a.Scratch(64 << 10)
//	defer scratch.Release()
//
// # Reallocation
//
// The arena remembers its most recent allocation. Realloc on that
// allocation resizes it in place. Realloc on anything older allocates anew
// and copies up to the distance between the old region and the most recent
// allocation, because per-allocation sizes are not recorded.
//
// # Failure Model
//
// The arena is a fixed budget. Running out of space, overflowing a size
// computation, passing a bad alignment, releasing scratch arenas out of
// order and using a released arena all panic with an error wrapping one of
// the Err* sentinels. Use Fits to check before allocating when running out
// of space must be handled gracefully.
//
// # Thread Safety
//
// Arena is not thread-safe. Share one through SafeArena, or give each
// worker its own region with Partition or Parallel:
//
//	err := a.Parallel(ctx, 4, func(ctx context.Context, worker int, sub *arena.Arena) error {
//		// sub belongs to this worker alone
//		return nil
//	})
//
// # Metrics and Monitoring
//
//	m := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", m.Utilization*100)
//	prometheus.MustRegister(arena.NewCollector("app", safeArena, nil))
package arena
