package dict

import (
	"iter"
	"unsafe"

	"github.com/cockroachdb/errors"

	arena "github.com/pavanmanishd/regionkit"
)

// Typed is a Dict with string keys and values of type V stored by value in
// the arena. V must not contain Go pointers.
type Typed[V any] struct {
	d *Dict
}

// NewTyped returns an empty Typed dictionary backed by a.
func NewTyped[V any](a *arena.Arena, opts ...Option) *Typed[V] {
	if !arena.PointerFree[V]() {
		var zero V
		panic(errors.WithAssertionFailure(errors.Wrapf(arena.ErrPointerType, "%T", zero)))
	}
	var zero V
	opts = append([]Option{WithValueAlign(int(unsafe.Alignof(zero)))}, opts...)
	return &Typed[V]{d: New(a, int(unsafe.Sizeof(zero)), opts...)}
}

// Insert stores v under key unless key is present. It returns a pointer to
// the stored value and whether the key was added.
func (t *Typed[V]) Insert(key string, v V) (*V, bool) {
	b, ok := t.d.Insert(stringBytes(key), valueBytes(&v))
	return valuePtr[V](b), ok
}

// Put stores v under key, overwriting any previous value.
func (t *Typed[V]) Put(key string, v V) (*V, bool) {
	b, ok := t.d.Put(stringBytes(key), valueBytes(&v))
	return valuePtr[V](b), ok
}

// Find returns a pointer to the value stored under key. Writes through the
// pointer update the dictionary.
func (t *Typed[V]) Find(key string) (*V, bool) {
	b, ok := t.d.Find(stringBytes(key))
	if !ok {
		return nil, false
	}
	return valuePtr[V](b), true
}

// Remove deletes key and returns the value it held.
func (t *Typed[V]) Remove(key string) (V, bool) {
	b, ok := t.d.Remove(stringBytes(key))
	if !ok {
		var zero V
		return zero, false
	}
	return *valuePtr[V](b), true
}

// Len returns the number of entries.
func (t *Typed[V]) Len() int { return t.d.Len() }

// Clone copies the entries into target, or into the same arena if nil.
func (t *Typed[V]) Clone(target *arena.Arena) *Typed[V] {
	return &Typed[V]{d: t.d.Clone(target)}
}

// All yields entries in insertion order. Keys share memory with the arena.
func (t *Typed[V]) All() iter.Seq2[string, *V] {
	return func(yield func(string, *V) bool) {
		for k, v := range t.d.All() {
			if !yield(unsafe.String(unsafe.SliceData(k), len(k)), valuePtr[V](v)) {
				return
			}
		}
	}
}

// Dict returns the underlying byte-oriented dictionary.
func (t *Typed[V]) Dict() *Dict { return t.d }

func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func valueBytes[V any](v *V) []byte {
	size := int(unsafe.Sizeof(*v))
	if size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), size)
}

func valuePtr[V any](b []byte) *V {
	if len(b) == 0 {
		return new(V)
	}
	return (*V)(unsafe.Pointer(unsafe.SliceData(b)))
}
