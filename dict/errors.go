package dict

import (
	"github.com/cockroachdb/errors"

	arena "github.com/pavanmanishd/regionkit"
)

// ErrValueSize is the panic value for a value whose length does not match
// the dictionary's value size.
var ErrValueSize = errors.New("dict: value size mismatch")

// violation logs err through a's logger as a programming error and panics.
func violation(a *arena.Arena, err error) {
	err = errors.WithAssertionFailure(err)
	if a != nil {
		a.Logger().Error("dict fatal", "error", err)
	}
	panic(err)
}
