package arena

import (
	"github.com/cockroachdb/errors"
)

// Scratch carves capacity bytes off the top of the available space and
// returns them as an independent arena. The parent cannot allocate into the
// window until the scratch arena is released. Scratch arenas form a stack:
// they must be released in the reverse order of creation.
func (a *Arena) Scratch(capacity int) *Arena {
	a.panicIfReleased()
	if capacity < 0 {
		a.fatal(errors.Wrapf(ErrOverflow, "scratch capacity %d", capacity))
	}
	if capacity > a.end-a.begin {
		a.fatal(errors.Wrapf(ErrOutOfMemory, "scratch of %d bytes, %d available",
			capacity, a.end-a.begin))
	}

	a.end -= capacity
	a.scratches++
	s := &Arena{
		data:   a.data[a.end : a.end+capacity : a.end+capacity],
		end:    capacity,
		last:   -1,
		parent: a,
		origin: a.end,
		seq:    a.scratches,
		log:    a.log,
	}
	a.log.Debug("scratch created", "capacity", capacity, "depth", a.scratches, "end", a.end)
	return s
}

// ReleaseScratch returns s's window to a. s must be the most recently
// created scratch arena of a that is still live.
func (a *Arena) ReleaseScratch(s *Arena) {
	a.panicIfReleased()
	if s == nil || s.parent != a || s.data == nil || s.seq != a.scratches || s.origin != a.end {
		a.violation(errors.Wrapf(ErrScratchOrder, "%d scratch arenas live", a.scratches))
	}

	a.end += len(s.data)
	a.scratches--
	s.data = nil
	s.begin, s.end, s.last = 0, 0, -1
	a.log.Debug("scratch released", "depth", a.scratches, "end", a.end)
}

// Partition splits the available space into n disjoint arenas of equal
// capacity. The parent's cursors do not move, so the partitions are only
// valid while nothing else is allocated from the parent. Each partition must
// be owned by exactly one goroutine.
func (a *Arena) Partition(n int) []*Arena {
	a.panicIfReleased()
	if n <= 0 {
		a.violation(errors.Newf("arena: partition into %d parts", n))
	}

	size := (a.end - a.begin) / n
	parts := make([]*Arena, n)
	for i := range parts {
		lo := a.begin + i*size
		parts[i] = &Arena{
			data: a.data[lo : lo+size : lo+size],
			end:  size,
			last: -1,
			log:  a.log,
		}
	}
	a.log.Debug("arena partitioned", "parts", n, "capacity", size)
	return parts
}
