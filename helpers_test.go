package arena

import (
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// requirePanicIs runs fn and requires it to panic with an error matching target.
func requirePanicIs(t require.TestingT, target error, fn func()) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic wrapping %v", target)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, target), "panic %v does not wrap %v", err, target)
	}()
	fn()
}

func addr(b []byte) uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(b)))
}

func sameStart(t *testing.T, want, got []byte) {
	t.Helper()
	require.Equal(t, addr(want), addr(got), "region moved")
}
