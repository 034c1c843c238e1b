// Package hashutil computes content-addressed ids for gitlet objects.
package hashutil

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
)

// IDLen is the length in hex characters of a full object id.
const IDLen = 40

// ShortIDLen is the length in hex characters of an abbreviated object id.
const ShortIDLen = 8

// Hash computes a 40-character hex digest over an ordered sequence of byte
// strings. Each part is length-prefixed so that no part can be confused
// with a boundary in an adjacent part, e.g. Hash([]byte("a"), []byte("bc"))
// never collides with Hash([]byte("ab"), []byte("c")).
func Hash(parts ...[]byte) string {
	h := sha1.New()
	var lenBuf [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// HashStrings is a convenience wrapper over Hash for string-typed parts.
func HashStrings(parts ...string) string {
	b := make([][]byte, len(parts))
	for i, p := range parts {
		b[i] = []byte(p)
	}
	return Hash(b...)
}

// Valid reports whether id looks like a full 40-hex object id.
func Valid(id string) bool {
	if len(id) != IDLen {
		return false
	}
	_, err := hex.DecodeString(id)
	return err == nil
}
