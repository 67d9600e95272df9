package dict

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"testing"
	"unsafe"

	"github.com/cockroachdb/errors"
	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arena "github.com/pavanmanishd/regionkit"
)

var numbers = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

func le(v int64) []byte {
	return binary.LittleEndian.AppendUint64(nil, uint64(v))
}

func keys(d *Dict) []string {
	var out []string
	for k := range d.Keys() {
		out = append(out, string(k))
	}
	return out
}

func zeroHash([]byte) uint64 { return 0 }

func requirePanicIs(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic wrapping %v", target)
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.True(t, errors.Is(err, target), "panic %v does not wrap %v", err, target)
	}()
	fn()
}

func TestDictScenario(t *testing.T) {
	a := arena.NewArena(1 << 16)
	defer a.Release()

	d := New(a, 8)
	for i, k := range numbers {
		_, added := d.Insert([]byte(k), le(int64(i)))
		require.True(t, added, k)
	}

	b := d.Clone(nil)
	_, ok := b.Remove([]byte("six"))
	require.True(t, ok)
	_, added := b.Insert([]byte("ten"), le(10))
	require.True(t, added)

	assert.Equal(t, numbers, keys(d))
	assert.Equal(t, []string{"zero", "one", "two", "three", "four", "five",
		"seven", "eight", "nine", "ten"}, keys(b))
	assert.Equal(t, 10, d.Len())
	assert.Equal(t, 10, b.Len())

	assert.True(t, d.Contains([]byte("six")))
	assert.False(t, b.Contains([]byte("six")))
	assert.False(t, d.Contains([]byte("ten")))

	v, ok := b.Find([]byte("ten"))
	require.True(t, ok)
	assert.Equal(t, le(10), v)

	for i, it := range d.Items(nil) {
		assert.Equal(t, numbers[i], string(it.Key))
		assert.Equal(t, le(int64(i)), it.Value)
	}
}

func TestDictEmpty(t *testing.T) {
	a := arena.NewArena(1024)
	d := New(a, 8)

	assert.Equal(t, 0, d.Len())
	assert.False(t, d.Contains([]byte("x")))
	_, ok := d.Find([]byte("x"))
	assert.False(t, ok)
	_, ok = d.Remove([]byte("x"))
	assert.False(t, ok)
	assert.Empty(t, d.Items(nil))
	assert.Nil(t, keys(d))
	assert.Equal(t, 0, a.Occupied(), "an empty dict allocates nothing")
}

func TestDictInsertKeepsExisting(t *testing.T) {
	a := arena.NewArena(1024)
	d := New(a, 8)

	v1, added := d.Insert([]byte("k"), le(1))
	require.True(t, added)
	v2, added := d.Insert([]byte("k"), le(2))
	assert.False(t, added)
	assert.Equal(t, le(1), v2)
	assert.Same(t, &v1[0], &v2[0], "existing value storage is returned")
	assert.Equal(t, 1, d.Len())

	v3, added := d.Put([]byte("k"), le(3))
	assert.False(t, added)
	assert.Equal(t, le(3), v3)
	assert.Same(t, &v1[0], &v3[0], "Put overwrites in place")

	_, added = d.Put([]byte("new"), le(4))
	assert.True(t, added)
	assert.Equal(t, 2, d.Len())
}

func TestDictNilValueStoresZeroes(t *testing.T) {
	a := arena.NewArena(1024)
	d := New(a, 8)

	v, _ := d.Insert([]byte("k"), le(-1))
	d.Put([]byte("k"), nil)
	assert.Equal(t, make([]byte, 8), v)

	v, _ = d.Insert([]byte("z"), nil)
	assert.Equal(t, make([]byte, 8), v)
}

func TestDictValueWriteThrough(t *testing.T) {
	a := arena.NewArena(1024)
	d := New(a, 8)
	d.Insert([]byte("counter"), nil)

	for i := 0; i < 5; i++ {
		v, ok := d.Find([]byte("counter"))
		require.True(t, ok)
		binary.LittleEndian.PutUint64(v, binary.LittleEndian.Uint64(v)+1)
	}
	v, _ := d.Find([]byte("counter"))
	assert.Equal(t, uint64(5), binary.LittleEndian.Uint64(v))
}

func TestDictValueSize(t *testing.T) {
	a := arena.NewArena(1024)
	d := New(a, 8)

	requirePanicIs(t, ErrValueSize, func() { d.Insert([]byte("k"), []byte{1, 2, 3}) })
	requirePanicIs(t, ErrValueSize, func() { New(a, -1) })
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, 8, d.ValueSize())

	keysOnly := New(a, 0)
	v, added := keysOnly.Insert([]byte("k"), nil)
	assert.True(t, added)
	assert.Empty(t, v)
	requirePanicIs(t, ErrValueSize, func() { keysOnly.Insert([]byte("j"), []byte{1}) })
}

func TestDictValueSizeLogged(t *testing.T) {
	var buf bytes.Buffer
	a := arena.NewArena(1024, arena.WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	d := New(a, 8)

	defer func() {
		err, ok := recover().(error)
		require.True(t, ok)
		assert.True(t, errors.Is(err, ErrValueSize))
		assert.True(t, errors.HasAssertionFailure(err))
		assert.Contains(t, buf.String(), "dict fatal")
	}()
	d.Insert([]byte("k"), []byte{1})
}

func TestDictEmptyKey(t *testing.T) {
	a := arena.NewArena(1024)
	d := New(a, 8)

	_, added := d.Insert(nil, le(7))
	require.True(t, added)
	_, added = d.Insert([]byte{}, le(8))
	assert.False(t, added, "nil and empty keys are the same key")

	v, ok := d.Find([]byte(""))
	require.True(t, ok)
	assert.Equal(t, le(7), v)

	_, ok = d.Remove(nil)
	assert.True(t, ok)
	assert.False(t, d.Contains(nil))
}

func TestDictRemove(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 8)
	for i, k := range numbers {
		d.Insert([]byte(k), le(int64(i)))
	}

	v, ok := d.Remove([]byte("three"))
	require.True(t, ok)
	assert.Equal(t, le(3), v, "removed value stays readable")
	_, ok = d.Remove([]byte("three"))
	assert.False(t, ok)

	assert.Equal(t, 9, d.Len())
	assert.Equal(t, 10, d.Nodes())
	assert.Equal(t, 1, d.Tombstones())
	for _, k := range numbers {
		assert.Equal(t, k != "three", d.Contains([]byte(k)), k)
	}

	// re-inserting appends at the end of the order
	d.Insert([]byte("three"), le(33))
	assert.Equal(t, []string{"zero", "one", "two", "four", "five", "six",
		"seven", "eight", "nine", "three"}, keys(d))
}

func TestDictTailTombstoneReuse(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 8)

	d.Insert([]byte("only"), le(1))
	d.Remove([]byte("only"))
	occupied := a.Occupied()

	_, added := d.Insert([]byte("next"), le(2))
	require.True(t, added)
	assert.Equal(t, 1, d.Nodes(), "the root tombstone is the tail and on every path")
	assert.Equal(t, 0, d.Tombstones())
	assert.GreaterOrEqual(t, a.Occupied(), occupied+len("next")+8, "the key and a fresh value are allocated")

	v, ok := d.Find([]byte("next"))
	require.True(t, ok)
	assert.Equal(t, le(2), v)
}

func TestDictRemovedValueSurvivesReuse(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 8, WithHasher(zeroHash))

	d.Insert([]byte("a"), le(1))
	d.Insert([]byte("b"), le(2))
	old, ok := d.Remove([]byte("b"))
	require.True(t, ok)

	// b is the tail tombstone, so c takes its node
	d.Insert([]byte("c"), le(99))
	require.Equal(t, 2, d.Nodes())

	assert.Equal(t, le(2), old)
	v, ok := d.Find([]byte("c"))
	require.True(t, ok)
	assert.Equal(t, le(99), v)
	assert.NotEqual(t, a.Offset(old), a.Offset(v))
}

func TestDictTombstoneReuseKeepsOrder(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 8, WithHasher(zeroHash))

	for _, k := range []string{"a", "b", "c"} {
		d.Insert([]byte(k), nil)
	}

	// c is the tail and lies on every path
	d.Remove([]byte("c"))
	d.Insert([]byte("d"), nil)
	assert.Equal(t, 3, d.Nodes())
	assert.Equal(t, []string{"a", "b", "d"}, keys(d))

	// a is a tombstone in the middle of the chain and is not reused
	d.Remove([]byte("a"))
	d.Insert([]byte("e"), nil)
	assert.Equal(t, 4, d.Nodes())
	assert.Equal(t, 1, d.Tombstones())
	assert.Equal(t, []string{"b", "d", "e"}, keys(d))

	// a live key is still found when the tail is a tombstone
	d.Remove([]byte("e"))
	_, added := d.Insert([]byte("d"), nil)
	assert.False(t, added)
	assert.Equal(t, 2, d.Len())
}

func TestDictDepth(t *testing.T) {
	a := arena.NewArena(1 << 16)
	d := New(a, 0, WithHasher(zeroHash))

	const n = 40 // past the 32 levels a 64-bit hash can select
	for i := 0; i < n; i++ {
		d.Insert([]byte(fmt.Sprint(i)), nil)
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, i+1, d.Depth([]byte(fmt.Sprint(i))))
	}
	assert.Equal(t, -1, d.Depth([]byte("absent")))
	assert.Equal(t, n, d.Len())
}

func TestDictDepthBalanced(t *testing.T) {
	a := arena.NewArena(1 << 20)
	d := New(a, 0, WithHasher(XXHash))

	const n = 4096
	for i := 0; i < n; i++ {
		d.Insert([]byte(fmt.Sprintf("key-%d", i)), nil)
	}
	deepest := 0
	for i := 0; i < n; i++ {
		deepest = max(deepest, d.Depth([]byte(fmt.Sprintf("key-%d", i))))
	}
	// log4(4096) is 6
	assert.Less(t, deepest, 24)
}

func TestDictHashers(t *testing.T) {
	for name, h := range map[string]Hasher{
		"fnv1a":  FNV1a,
		"djb2":   DJB2,
		"sdbm":   SDBM,
		"xxhash": XXHash,
		"zero":   zeroHash,
	} {
		t.Run(name, func(t *testing.T) {
			a := arena.NewArena(1 << 16)
			d := New(a, 8, WithHasher(h))
			for i, k := range numbers {
				d.Insert([]byte(k), le(int64(i)))
			}
			for i, k := range numbers {
				v, ok := d.Find([]byte(k))
				require.True(t, ok, k)
				assert.Equal(t, le(int64(i)), v)
			}
			assert.Equal(t, numbers, keys(d))

			c := d.Clone(nil)
			c.Insert([]byte("eleven"), nil)
			assert.True(t, c.Contains([]byte("eleven")), "clones keep the hasher")
		})
	}
}

func TestDictClone(t *testing.T) {
	src := arena.NewArena(1 << 20)
	d := New(src, 8)

	var ks []string
	fuzz.NewWithSeed(42).NilChance(0).NumElements(1, 200).Fuzz(&ks)
	seen := map[string]bool{}
	for i, k := range ks {
		if !seen[k] {
			seen[k] = true
			d.Insert([]byte(k), le(int64(i)))
		}
	}
	want := keys(d)

	dst := arena.NewArena(1 << 20)
	c := d.Clone(dst)
	assert.Same(t, dst, c.Arena())
	assert.Equal(t, want, keys(c))

	for i, k := range want {
		if i%2 == 0 {
			c.Remove([]byte(k))
		}
	}
	assert.Equal(t, want, keys(d), "source is unaffected by changes to the clone")

	// the clone owns its storage
	src.Release()
	for i, k := range want {
		assert.Equal(t, i%2 == 1, c.Contains([]byte(k)))
	}
}

func TestDictCloneDropsTombstones(t *testing.T) {
	a := arena.NewArena(1 << 16)
	d := New(a, 8)
	for _, k := range numbers {
		d.Insert([]byte(k), nil)
	}
	for _, k := range numbers[:5] {
		d.Remove([]byte(k))
	}

	c := d.Clone(nil)
	assert.Equal(t, 5, c.Len())
	assert.Equal(t, 5, c.Nodes())
	assert.Equal(t, 0, c.Tombstones())
	assert.Equal(t, numbers[5:], keys(c))
}

func TestDictItemsTarget(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 8)
	for i, k := range numbers[:3] {
		d.Insert([]byte(k), le(int64(i)))
	}

	shared := d.Items(nil)
	require.Len(t, shared, 3)
	assert.GreaterOrEqual(t, a.Offset(shared[0].Key), 0)

	target := arena.NewArena(4096)
	copied := d.Items(target)
	require.Len(t, copied, 3)
	for i, it := range copied {
		assert.Equal(t, -1, a.Offset(it.Key))
		assert.GreaterOrEqual(t, target.Offset(it.Key), 0)
		assert.Equal(t, numbers[i], string(it.Key))
		assert.Equal(t, le(int64(i)), it.Value)
	}

	a.Reset()
	assert.Equal(t, "zero", string(copied[0].Key), "copies survive a reset of the source")
}

func TestDictItemsTargetKeysOnly(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 0)
	for _, k := range []string{"w", "x", "y", "z"} {
		d.Insert([]byte(k), nil)
	}

	target := arena.NewArena(4096)
	items := d.Items(target)
	require.Len(t, items, 4)
	assert.Equal(t, 4, target.Occupied(), "only the keys are copied")
	assert.Equal(t, 4, target.Allocs())
	for _, it := range items {
		assert.Empty(t, it.Value)
	}
}

func TestNodePointerFree(t *testing.T) {
	assert.True(t, arena.PointerFree[node]())
}

func TestDictIterationBreak(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 8)
	for _, k := range numbers {
		d.Insert([]byte(k), nil)
	}

	var got []string
	for k := range d.All() {
		got = append(got, string(k))
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, numbers[:3], got)
}

func TestDictRemoveDuringIteration(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 8)
	for _, k := range numbers {
		d.Insert([]byte(k), nil)
	}

	var got []string
	for k := range d.Keys() {
		got = append(got, string(k))
		d.Remove(k)
	}
	assert.Equal(t, numbers, got)
	assert.Equal(t, 0, d.Len())
}

func TestDictValueAlign(t *testing.T) {
	a := arena.NewArena(4096)
	d := New(a, 16, WithValueAlign(16))
	for _, k := range numbers {
		v, _ := d.Insert([]byte(k), nil)
		assert.Zero(t, uintptr(unsafe.Pointer(&v[0]))%16)
	}
}

func TestDictArenaExhausted(t *testing.T) {
	a := arena.NewArena(256)
	d := New(a, 8)
	requirePanicIs(t, arena.ErrOutOfMemory, func() {
		for i := 0; ; i++ {
			d.Insert([]byte(fmt.Sprint(i)), nil)
		}
	})
}

func TestDictSafeArena(t *testing.T) {
	s := arena.NewSafeArena(1 << 16)

	var got []string
	s.Do(func(a *arena.Arena) {
		d := New(a, 8)
		for i, k := range numbers {
			d.Insert([]byte(k), le(int64(i)))
		}
		got = keys(d)
	})
	assert.Equal(t, numbers, got)
	assert.Positive(t, s.Occupied())
}

func TestDictParallel(t *testing.T) {
	a := arena.NewArena(1 << 20)
	const workers = 4
	lens := make([]int, workers)

	err := a.Parallel(context.Background(), workers, func(ctx context.Context, worker int, sub *arena.Arena) error {
		d := New(sub, 8)
		for i := 0; i < 100*(worker+1); i++ {
			d.Insert([]byte(fmt.Sprintf("w%d-%d", worker, i)), le(int64(i)))
		}
		for i := 0; i < 100*(worker+1); i++ {
			if !d.Contains([]byte(fmt.Sprintf("w%d-%d", worker, i))) {
				return fmt.Errorf("worker %d lost key %d", worker, i)
			}
		}
		lens[worker] = d.Len()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{100, 200, 300, 400}, lens)
	assert.Equal(t, 1<<20, a.Available())
}

func BenchmarkDictInsert(b *testing.B) {
	ks := make([][]byte, 1024)
	for i := range ks {
		ks[i] = []byte(fmt.Sprintf("key-%d", i))
	}
	a := arena.NewArena(1 << 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Reset()
		d := New(a, 8)
		for _, k := range ks {
			d.Insert(k, nil)
		}
	}
}

func BenchmarkDictFind(b *testing.B) {
	a := arena.NewArena(1 << 20)
	d := New(a, 8)
	ks := make([][]byte, 1024)
	for i := range ks {
		ks[i] = []byte(fmt.Sprintf("key-%d", i))
		d.Insert(ks[i], nil)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Find(ks[i%len(ks)])
	}
}
