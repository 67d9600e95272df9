package dict

import (
	"bytes"
	"iter"
	"unsafe"

	"github.com/cockroachdb/errors"

	arena "github.com/pavanmanishd/regionkit"
)

const (
	// hashShift is the number of hash bits consumed per tree level.
	hashShift = 2
	// hashSelect moves the top hashShift bits down to a child index.
	hashSelect = 64 - hashShift
)

// ref is an arena offset plus one, so that zeroed memory reads as nil.
type ref uint64

// span locates bytes in the arena.
type span struct {
	off int
	len int
}

// node is stored in arena memory and must stay free of Go pointers.
type node struct {
	key   span
	value span
	next  ref
	child [1 << hashShift]ref
	live  bool
}

var (
	nodeSize  = int(unsafe.Sizeof(node{}))
	nodeAlign = int(unsafe.Alignof(node{}))
)

// Dict is an insertion-ordered hash dictionary stored in an arena.
// Not goroutine-safe.
type Dict struct {
	arena      *arena.Arena
	valueSize  int
	valueAlign int
	hash       Hasher

	length int // live entries
	nodes  int // live entries plus tombstones
	begin  ref // chain head and tree root
	end    ref // chain tail
}

// Item is one live entry of a Dict.
type Item struct {
	Key   []byte
	Value []byte
}

// New returns an empty Dict whose storage comes from a. Values are copied
// into the arena as valueSize bytes each; a valueSize of zero stores keys
// only, which turns the Dict into a set.
func New(a *arena.Arena, valueSize int, opts ...Option) *Dict {
	if valueSize < 0 {
		violation(a, errors.Wrapf(ErrValueSize, "value size %d", valueSize))
	}
	d := &Dict{
		arena:      a,
		valueSize:  valueSize,
		valueAlign: arena.DefaultAlign,
		hash:       FNV1a,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Insert adds key with value if key is absent and reports true. If key is
// already present its stored value is returned untouched along with false.
// value must be nil or exactly ValueSize bytes; nil stores zeroes.
func (d *Dict) Insert(key, value []byte) ([]byte, bool) {
	return d.insert(key, value, false)
}

// Put is Insert that overwrites the value of an existing key in place.
func (d *Dict) Put(key, value []byte) ([]byte, bool) {
	return d.insert(key, value, true)
}

// Remove turns key's node into a tombstone and returns the value it held.
// The value bytes stay readable until the arena is reset or released.
func (d *Dict) Remove(key []byte) ([]byte, bool) {
	n := d.lookup(key)
	if n == nil {
		return nil, false
	}
	n.live = false
	d.length--
	return d.valueOf(n), true
}

// Find returns the value stored under key.
func (d *Dict) Find(key []byte) ([]byte, bool) {
	n := d.lookup(key)
	if n == nil {
		return nil, false
	}
	return d.valueOf(n), true
}

// Contains reports whether key is present.
func (d *Dict) Contains(key []byte) bool {
	return d.lookup(key) != nil
}

// Clone returns a new Dict in target holding the live entries of d in
// insertion order. A nil target means d's own arena. Tombstones are not
// carried over, so the clone's tree is as shallow as a fresh build.
func (d *Dict) Clone(target *arena.Arena) *Dict {
	c := d.Empty(target)
	for k, v := range d.All() {
		c.insert(k, v, false)
	}
	return c
}

// Empty returns a Dict with d's configuration and no entries, backed by
// target or by d's arena if target is nil.
func (d *Dict) Empty(target *arena.Arena) *Dict {
	if target == nil {
		target = d.arena
	}
	return &Dict{
		arena:      target,
		valueSize:  d.valueSize,
		valueAlign: d.valueAlign,
		hash:       d.hash,
	}
}

// Items returns the live entries in insertion order. With a nil target the
// keys and values point into d's arena; otherwise they are copied into
// target.
func (d *Dict) Items(target *arena.Arena) []Item {
	items := make([]Item, 0, d.length)
	for k, v := range d.All() {
		if target != nil {
			k = target.Dup(k, 1)
			if d.valueSize > 0 {
				v = target.Dup(v, d.valueAlign)
			}
		}
		items = append(items, Item{Key: k, Value: v})
	}
	return items
}

// All yields the live entries in insertion order. Entries inserted during
// iteration after the current tail are not visited.
func (d *Dict) All() iter.Seq2[[]byte, []byte] {
	return func(yield func([]byte, []byte) bool) {
		for r := d.begin; r != 0; {
			n := d.node(r)
			r = n.next
			if !n.live {
				continue
			}
			if !yield(d.keyOf(n), d.valueOf(n)) {
				return
			}
		}
	}
}

// Keys yields the live keys in insertion order.
func (d *Dict) Keys() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for k := range d.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Len returns the number of live entries.
func (d *Dict) Len() int { return d.length }

// Nodes returns the number of nodes ever linked, tombstones included.
func (d *Dict) Nodes() int { return d.nodes }

// Tombstones returns the number of removed entries still linked.
func (d *Dict) Tombstones() int { return d.nodes - d.length }

// ValueSize returns the fixed size of stored values.
func (d *Dict) ValueSize() int { return d.valueSize }

// Arena returns the arena holding d's storage.
func (d *Dict) Arena() *arena.Arena { return d.arena }

// Depth returns the number of nodes visited to reach key, counting key's
// own node, or -1 if key is absent.
func (d *Dict) Depth(key []byte) int {
	depth := 0
	for r, h := d.begin, d.hash(key); r != 0; h <<= hashShift {
		n := d.node(r)
		depth++
		if n.live && d.keyEquals(n, key) {
			return depth
		}
		r = n.child[h>>hashSelect]
	}
	return -1
}

func (d *Dict) insert(key, value []byte, overwrite bool) ([]byte, bool) {
	if len(value) != 0 && len(value) != d.valueSize {
		violation(d.arena, errors.Wrapf(ErrValueSize, "got %d bytes, want %d", len(value), d.valueSize))
	}

	slot := &d.begin
	var reuse ref
	for h := d.hash(key); *slot != 0; h <<= hashShift {
		n := d.node(*slot)
		if n.live {
			if d.keyEquals(n, key) {
				v := d.valueOf(n)
				if overwrite {
					d.storeValue(v, value)
				}
				return v, false
			}
		} else if *slot == d.end {
			// The tail tombstone can take the key without breaking
			// insertion order; it is already on this key's path.
			reuse = *slot
		}
		slot = &n.child[h>>hashSelect]
	}

	r := reuse
	if r == 0 {
		r = d.newNode()
		*slot = r
	}
	n := d.node(r)
	n.key = d.dup(key, 1)
	// A reused tombstone gets fresh value storage: the slice Remove
	// returned for it must keep the removed value.
	if d.valueSize > 0 {
		b := d.arena.Malloc(1, d.valueSize, d.valueAlign)
		n.value = span{off: d.arena.Offset(b), len: d.valueSize}
	}
	d.storeValue(d.valueOf(n), value)
	n.live = true
	d.length++
	return d.valueOf(n), true
}

// newNode allocates a zeroed node and appends it to the chain.
func (d *Dict) newNode() ref {
	b := d.arena.Calloc(1, nodeSize, nodeAlign)
	r := ref(d.arena.Offset(b) + 1)
	if d.end != 0 {
		d.node(d.end).next = r
	}
	d.end = r
	d.nodes++
	return r
}

func (d *Dict) lookup(key []byte) *node {
	for r, h := d.begin, d.hash(key); r != 0; h <<= hashShift {
		n := d.node(r)
		if n.live && d.keyEquals(n, key) {
			return n
		}
		r = n.child[h>>hashSelect]
	}
	return nil
}

// node resolves r. Nodes are allocated with nodeAlign, so only the bounds
// need checking.
func (d *Dict) node(r ref) *node {
	b := d.arena.Bytes(int(r-1), nodeSize)
	return (*node)(unsafe.Pointer(unsafe.SliceData(b)))
}

func (d *Dict) keyOf(n *node) []byte {
	return d.arena.Bytes(n.key.off, n.key.len)
}

func (d *Dict) valueOf(n *node) []byte {
	return d.arena.Bytes(n.value.off, n.value.len)
}

func (d *Dict) keyEquals(n *node, key []byte) bool {
	return n.key.len == len(key) && bytes.Equal(d.keyOf(n), key)
}

func (d *Dict) storeValue(dst, value []byte) {
	if len(value) == 0 {
		clear(dst)
		return
	}
	copy(dst, value)
}

func (d *Dict) dup(b []byte, align int) span {
	if len(b) == 0 {
		return span{}
	}
	c := d.arena.Dup(b, align)
	return span{off: d.arena.Offset(c), len: len(c)}
}
