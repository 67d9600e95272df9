package dict

import (
	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to the 64-bit hash whose bits select tree branches,
// most significant bits first.
type Hasher func(key []byte) uint64

const (
	fnvOffset64 = 0xcbf29ce484222325
	fnvPrime64  = 0x00000100000001b3
)

// FNV1a is the 64-bit Fowler-Noll-Vo 1a hash. It is the default.
func FNV1a(key []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range key {
		h ^= uint64(c)
		h *= fnvPrime64
	}
	return h
}

// DJB2 is Daniel J. Bernstein's multiplicative string hash.
func DJB2(key []byte) uint64 {
	h := uint64(5381)
	for _, c := range key {
		h = h<<5 + h + uint64(c)
	}
	return h
}

// SDBM is the hash from the sdbm database library.
func SDBM(key []byte) uint64 {
	var h uint64
	for _, c := range key {
		h = uint64(c) + h<<6 + h<<16 - h
	}
	return h
}

// XXHash is xxHash64 with seed 0.
func XXHash(key []byte) uint64 {
	return xxhash.Sum64(key)
}
