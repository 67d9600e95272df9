package arena

import (
	"io"
	"log/slog"
)

// discard is the logger used until WithLogger supplies one.
var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Option configures an Arena at construction.
type Option func(*Arena)

// WithLogger routes the arena's lifecycle records to l. Scratch and
// partition events are logged at debug level; fatal conditions are logged
// at error level just before the arena panics. A nil l is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(a *Arena) {
		if l != nil {
			a.log = l
		}
	}
}

// Logger returns the logger the arena reports to.
func (a *Arena) Logger() *slog.Logger { return a.log }
