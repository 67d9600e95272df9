package arena

import (
	"github.com/cockroachdb/errors"
)

// Fatal conditions. The arena never returns these; it panics with an error
// that wraps one of them, so callers that recover can match with errors.Is.
var (
	ErrOutOfMemory  = errors.New("arena: out of memory")
	ErrOverflow     = errors.New("arena: size overflow")
	ErrBadAlign     = errors.New("arena: alignment must be a positive power of two")
	ErrScratchOrder = errors.New("arena: scratch released out of order")
	ErrReleased     = errors.New("arena: use after Release()")
	ErrForeign      = errors.New("arena: slice does not belong to this arena")
	ErrPointerType  = errors.New("arena: type contains Go pointers")
)

// fatal logs err and panics with it.
func (a *Arena) fatal(err error) {
	a.log.Error("arena fatal", "error", err, "occupied", a.begin, "available", a.end-a.begin)
	panic(err)
}

// violation marks err as a programming error before panicking.
func (a *Arena) violation(err error) {
	a.fatal(errors.WithAssertionFailure(err))
}
