// Package arena implements a fixed-capacity bump allocator (memory arena).
// Typical usage: create one arena for a unit of work, allocate many objects
// from it, then drop the whole region at once with Reset() or Release().
package arena

import (
	"log/slog"
	"math"
	"math/bits"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// DefaultAlign is the alignment used by callers with no stronger requirement.
const DefaultAlign = int(unsafe.Sizeof(uintptr(0)))

// Flags modify the behaviour of Alloc.
type Flags uint8

const (
	// NoZero leaves the returned region with whatever bytes it held before.
	NoZero Flags = 1 << iota
)

// Arena is a bump allocator over a single fixed buffer. Allocations grow
// begin toward end; scratch arenas are carved off the top by moving end down.
// Not goroutine-safe. Use SafeArena for concurrent access.
type Arena struct {
	data  []byte // backing memory, nil after Release
	begin int    // first unused byte
	end   int    // exclusive bound of usable space
	last  int    // offset of the most recent allocation, -1 if none

	peak   int
	allocs int

	// scratch bookkeeping
	parent    *Arena
	origin    int // offset of data inside parent.data
	seq       int // position in the parent's scratch stack
	scratches int // live scratch arenas carved from this one

	log *slog.Logger
}

// NewArena creates an Arena owning capacity bytes.
func NewArena(capacity int, opts ...Option) *Arena {
	a := &Arena{last: -1, log: discard}
	for _, opt := range opts {
		opt(a)
	}
	if capacity < 0 {
		a.fatal(errors.Wrapf(ErrOverflow, "capacity %d", capacity))
	}
	a.data = make([]byte, capacity)
	a.end = capacity
	return a
}

// Alloc reserves count elements of size bytes each, aligned to align, and
// returns them as a slice into the arena's buffer. The region is zeroed
// unless flags contains NoZero. Running out of space, overflowing
// count*size, or passing an alignment that is not a power of two panics.
func (a *Arena) Alloc(count, size, align int, flags Flags) []byte {
	off := a.alloc(count, size, align, flags)
	return a.data[off:a.begin:a.begin]
}

// Calloc is Alloc with zero fill.
func (a *Arena) Calloc(count, size, align int) []byte {
	return a.Alloc(count, size, align, 0)
}

// Malloc is Alloc without zero fill.
func (a *Arena) Malloc(count, size, align int) []byte {
	return a.Alloc(count, size, align, NoZero)
}

// Dup copies src into a new allocation aligned to align.
func (a *Arena) Dup(src []byte, align int) []byte {
	dst := a.Malloc(len(src), 1, align)
	copy(dst, src)
	return dst
}

// Realloc resizes b to count*size bytes.
//
// An empty b is a plain allocation. If b is the most recent allocation it is
// resized in place: the cursor moves back to b and forward again by the new
// size, so no bytes are copied. Any other b gets a fresh region and receives
// min(count*size, distance from b to the most recent allocation) bytes. The
// arena does not record allocation sizes, so that distance is only an upper
// bound on b's original length and may drag along trailing bytes of
// neighbouring allocations.
func (a *Arena) Realloc(b []byte, count, size, align int) []byte {
	a.panicIfReleased()
	if len(b) == 0 {
		return a.Malloc(count, size, align)
	}

	off := a.offsetOf(b)
	if off >= 0 && off == a.last {
		prevBegin := a.begin
		a.begin = a.last
		if !a.Fits(count, size, align) {
			// leave the cursor intact for the panic below
			a.begin = prevBegin
		}
		n := a.alloc(count, size, align, NoZero)
		if n != off {
			// a stricter alignment moved the region
			copy(a.data[n:a.begin], a.data[off:prevBegin])
		}
		return a.data[n:a.begin:a.begin]
	}

	if off < 0 || off >= a.last {
		a.violation(errors.Wrapf(ErrForeign, "realloc of %d bytes", len(b)))
	}
	last := a.last
	dst := a.Malloc(count, size, align)
	copy(dst, a.data[off:last])
	return dst
}

// Fits reports whether Alloc(count, size, align, ...) would succeed.
func (a *Arena) Fits(count, size, align int) bool {
	a.panicIfReleased()
	if !validAlign(align) || count < 0 || size < 0 {
		return false
	}
	hi, total := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || total > math.MaxInt {
		return false
	}
	padding := a.padding(align)
	available := a.end - a.begin
	return padding <= available && int(total) <= available-padding
}

// Reset rewinds the allocation cursor to the start of the buffer. Scratch
// arenas carved from the top stay reserved.
func (a *Arena) Reset() {
	a.panicIfReleased()
	a.begin = 0
	a.last = -1
}

// Release drops the backing buffer and makes the arena unusable.
// Releasing a scratch arena returns its window to the parent, which must
// follow the same LIFO order as ReleaseScratch.
func (a *Arena) Release() {
	if a.data == nil {
		return
	}
	if a.parent != nil {
		a.parent.ReleaseScratch(a)
		return
	}
	a.data = nil
	a.begin, a.end, a.last = 0, 0, -1
}

// alloc is the single allocation primitive. It returns the offset of the
// new region; the region ends at a.begin.
func (a *Arena) alloc(count, size, align int, flags Flags) int {
	a.panicIfReleased()
	if !validAlign(align) {
		a.violation(errors.Wrapf(ErrBadAlign, "align %d", align))
	}
	if count < 0 || size < 0 {
		a.fatal(errors.Wrapf(ErrOverflow, "count %d, size %d", count, size))
	}
	hi, total := bits.Mul64(uint64(count), uint64(size))
	if hi != 0 || total > math.MaxInt {
		a.fatal(errors.Wrapf(ErrOverflow, "count %d, size %d", count, size))
	}

	padding := a.padding(align)
	available := a.end - a.begin
	if padding > available || int(total) > available-padding {
		a.fatal(errors.Wrapf(ErrOutOfMemory, "need %d bytes (+%d padding), %d available",
			total, padding, available))
	}

	off := a.begin + padding
	a.last = off
	a.begin = off + int(total)
	a.allocs++
	if a.begin > a.peak {
		a.peak = a.begin
	}
	if flags&NoZero == 0 {
		clear(a.data[off:a.begin])
	}
	return off
}

// padding returns the bytes needed to move begin's absolute address to a
// multiple of align.
func (a *Arena) padding(align int) int {
	addr := a.base() + uintptr(a.begin)
	return int(-addr & uintptr(align-1))
}

func (a *Arena) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(a.data)))
}

// offsetOf locates b inside the arena's buffer, or returns -1.
func (a *Arena) offsetOf(b []byte) int {
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	base := a.base()
	if p < base || p >= base+uintptr(len(a.data)) {
		return -1
	}
	return int(p - base)
}

// panicIfReleased panics if the arena has been released.
func (a *Arena) panicIfReleased() {
	if a.data == nil {
		a.violation(ErrReleased)
	}
}

func validAlign(align int) bool {
	return align > 0 && align&(align-1) == 0
}
