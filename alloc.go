package arena

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/cockroachdb/errors"
)

// The garbage collector does not scan arena memory, so typed helpers only
// accept types without Go pointers (no strings, slices, maps, interfaces,
// channels, funcs or pointers). Violations panic with ErrPointerType.

// Alloc returns a pointer to a zeroed T stored inside the arena.
// The returned pointer is valid as long as the arena hasn't been released.
func Alloc[T any](a *Arena) *T {
	return alloc[T](a, 0)
}

// AllocZeroed is identical to Alloc - provided for API consistency.
func AllocZeroed[T any](a *Arena) *T {
	return Alloc[T](a)
}

// AllocUninitialized returns a *T located in the arena without zeroing memory.
// Ensure proper initialization before use.
func AllocUninitialized[T any](a *Arena) *T {
	return alloc[T](a, NoZero)
}

// AllocSlice allocates a slice of n elements of type T inside the arena.
// The slice elements are not initialized. Returns nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) []T {
	return allocSlice[T](a, n, NoZero)
}

// AllocSliceZeroed allocates a slice of n zeroed elements of type T.
func AllocSliceZeroed[T any](a *Arena, n int) []T {
	return allocSlice[T](a, n, 0)
}

// DupSlice copies src into the arena.
func DupSlice[T any](a *Arena, src []T) []T {
	dst := AllocSlice[T](a, len(src))
	copy(dst, src)
	return dst
}

// Grow resizes s to n elements with Realloc semantics: growing the most
// recent allocation happens in place, anything else is copied. Elements past
// len(s) are not initialized.
func Grow[T any](a *Arena, s []T, n int) []T {
	checkPointerFree[T](a)
	var zero T
	size := int(unsafe.Sizeof(zero))
	align := int(unsafe.Alignof(zero))
	if size == 0 {
		return make([]T, n)
	}

	var b []byte
	if len(s) > 0 {
		b = unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*size)
	}
	b = a.Realloc(b, n, size, align)
	if len(b) == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

// String copies s into the arena.
func String(a *Arena, s string) string {
	b := a.Dup(unsafe.Slice(unsafe.StringData(s), len(s)), 1)
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Concat appends s2 to s1, which must have been allocated from a. When s1
// is the most recent allocation it is extended in place.
func Concat(a *Arena, s1, s2 string) string {
	var b []byte
	if len(s1) > 0 {
		b = unsafe.Slice(unsafe.StringData(s1), len(s1))
	}
	b = a.Realloc(b, len(s1)+len(s2), 1, 1)
	copy(b[len(s1):], s2)
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// At returns the T stored at byte offset off of the arena's buffer. It is
// how index-linked structures turn a stored offset back into a value.
func At[T any](a *Arena, off int) *T {
	a.panicIfReleased()
	checkPointerFree[T](a)
	var zero T
	size := int(unsafe.Sizeof(zero))
	if off < 0 || size > len(a.data)-off ||
		(a.base()+uintptr(off))%unsafe.Alignof(zero) != 0 {
		a.violation(errors.Wrapf(ErrForeign, "offset %d for %T", off, zero))
	}
	return (*T)(unsafe.Pointer(unsafe.Add(unsafe.Pointer(unsafe.SliceData(a.data)), off)))
}

// Offset returns the byte offset of b inside the arena's buffer, or -1 if b
// is empty or lies elsewhere.
func (a *Arena) Offset(b []byte) int {
	a.panicIfReleased()
	if len(b) == 0 {
		return -1
	}
	return a.offsetOf(b)
}

// Bytes returns the n bytes at offset off.
func (a *Arena) Bytes(off, n int) []byte {
	a.panicIfReleased()
	if off < 0 || n < 0 || n > len(a.data)-off {
		a.violation(errors.Wrapf(ErrForeign, "bytes [%d:%d]", off, off+n))
	}
	return a.data[off : off+n : off+n]
}

func alloc[T any](a *Arena, flags Flags) *T {
	checkPointerFree[T](a)
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return new(T)
	}
	b := a.Alloc(1, size, int(unsafe.Alignof(zero)), flags)
	return (*T)(unsafe.Pointer(unsafe.SliceData(b)))
}

func allocSlice[T any](a *Arena, n int, flags Flags) []T {
	if n <= 0 {
		return nil
	}
	checkPointerFree[T](a)
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 {
		return make([]T, n)
	}
	b := a.Alloc(n, size, int(unsafe.Alignof(zero)), flags)
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

var pointerFreeCache sync.Map // reflect.Type -> bool

// PointerFree reports whether values of type T may be stored in arena memory.
func PointerFree[T any]() bool {
	t := reflect.TypeFor[T]()
	ok, hit := pointerFreeCache.Load(t)
	if !hit {
		ok, _ = pointerFreeCache.LoadOrStore(t, pointerFree(t))
	}
	return ok.(bool)
}

func checkPointerFree[T any](a *Arena) {
	if !PointerFree[T]() {
		a.violation(errors.Wrapf(ErrPointerType, "%s", reflect.TypeFor[T]()))
	}
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
