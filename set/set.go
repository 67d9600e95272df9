// Package set implements an arena-backed, insertion-ordered set of byte
// strings on top of package dict.
package set

import (
	"iter"

	arena "github.com/pavanmanishd/regionkit"
	"github.com/pavanmanishd/regionkit/dict"
)

// Set is a dictionary without values. Insert never replaces an existing
// member, so inserting is idempotent.
type Set struct {
	d *dict.Dict
}

// New returns an empty Set backed by a.
func New(a *arena.Arena, opts ...dict.Option) *Set {
	return &Set{d: dict.New(a, 0, opts...)}
}

// Insert adds key and reports whether it was not already a member.
func (s *Set) Insert(key []byte) bool {
	_, added := s.d.Insert(key, nil)
	return added
}

// Remove deletes key and reports whether it was a member.
func (s *Set) Remove(key []byte) bool {
	_, ok := s.d.Remove(key)
	return ok
}

// Contains reports whether key is a member.
func (s *Set) Contains(key []byte) bool {
	return s.d.Contains(key)
}

// Len returns the number of members.
func (s *Set) Len() int { return s.d.Len() }

// Arena returns the arena holding the set's storage.
func (s *Set) Arena() *arena.Arena { return s.d.Arena() }

// Clone copies the members into target, or into the same arena if nil.
func (s *Set) Clone(target *arena.Arena) *Set {
	return &Set{d: s.d.Clone(target)}
}

// Items returns the members in insertion order, copied into target when it
// is non-nil.
func (s *Set) Items(target *arena.Arena) [][]byte {
	items := make([][]byte, 0, s.d.Len())
	for _, it := range s.d.Items(target) {
		items = append(items, it.Key)
	}
	return items
}

// All yields the members in insertion order.
func (s *Set) All() iter.Seq[[]byte] {
	return s.d.Keys()
}

// Union returns the members of s followed by the members of other that s
// lacks. The result lives in target, or in s's arena if target is nil.
func (s *Set) Union(other *Set, target *arena.Arena) *Set {
	u := s.Clone(target)
	for k := range other.All() {
		u.Insert(k)
	}
	return u
}

// Intersection returns the members of s that are also in other.
func (s *Set) Intersection(other *Set, target *arena.Arena) *Set {
	return s.filter(target, func(k []byte) bool { return other.Contains(k) })
}

// Difference returns the members of s that are not in other.
func (s *Set) Difference(other *Set, target *arena.Arena) *Set {
	return s.filter(target, func(k []byte) bool { return !other.Contains(k) })
}

// SymmetricDifference returns the members of exactly one of s and other,
// those of s first.
func (s *Set) SymmetricDifference(other *Set, target *arena.Arena) *Set {
	r := s.Difference(other, target)
	for k := range other.All() {
		if !s.Contains(k) {
			r.Insert(k)
		}
	}
	return r
}

// IsSubset reports whether every member of s is in other.
func (s *Set) IsSubset(other *Set) bool {
	if s.Len() > other.Len() {
		return false
	}
	for k := range s.All() {
		if !other.Contains(k) {
			return false
		}
	}
	return true
}

// IsSuperset reports whether every member of other is in s.
func (s *Set) IsSuperset(other *Set) bool {
	return other.IsSubset(s)
}

// Equal reports whether s and other have the same members.
func (s *Set) Equal(other *Set) bool {
	return s.Len() == other.Len() && s.IsSubset(other)
}

func (s *Set) filter(target *arena.Arena, keep func([]byte) bool) *Set {
	r := &Set{d: s.d.Empty(target)}
	for k := range s.All() {
		if keep(k) {
			r.Insert(k)
		}
	}
	return r
}
