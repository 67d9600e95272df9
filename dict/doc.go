// Package dict implements an insertion-ordered hash dictionary whose nodes,
// keys and values all live in an arena.
//
// # Layout
//
// Every node sits on two structures at once:
//
//   - a singly linked chain in insertion order, used for iteration
//   - a hashed quaternary tree: a node's four children are selected by
//     successive 2-bit windows of the 64-bit hash of the key
//
// The first node is both the head of the chain and the root of the tree.
// Lookup walks down from the root consuming two hash bits per level, so the
// structure grows one node at a time and never needs a resize or rehash,
// which suits an allocator that cannot free or move memory.
//
// # Removal
//
// Remove marks a node as a tombstone instead of unlinking it, because other
// nodes may hang below it in the tree. Tombstones are skipped by lookup and
// iteration and dropped by Clone.
//
// # Basic Usage
//
//	a := arena.NewArena(1 << 20)
//	defer a.Release()
//
//	d := dict.New(a, 8)
//	d.Insert([]byte("answer"), binary.LittleEndian.AppendUint64(nil, 42))
//	v, ok := d.Find([]byte("answer"))
//
// Keys and values returned by the dictionary point into the arena and are
// valid until the arena is reset or released. They must not be modified,
// except for value bytes, which callers may write through.
package dict
