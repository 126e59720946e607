package cildiff

import (
	"crypto/sha256"
	"encoding"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/pkg/errors"
)

// Hash is a 32-byte cryptographic digest identifying a construct for
// exact equality (full hash) or merge-key equality (partial hash). The
// zero Hash is the null hash and sorts before every non-null hash.
type Hash [32]byte

// Hex renders a hash the way report output wants it: lowercase hex.
func (h Hash) Hex() string { return hex.EncodeToString(h[:]) }

func (h Hash) String() string { return h.Hex() }

// IsNull reports whether h is the zero hash.
func (h Hash) IsNull() bool { return h == Hash{} }

// compareHash orders two hashes lexicographically; the null hash sorts
// before any non-null hash.
func compareHash(a, b Hash) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// lessHash reports whether a sorts before b.
func lessHash(a, b Hash) bool { return compareHash(a, b) < 0 }

// emptySetHash is the well-known sentinel hash for an empty set.
var emptySetHash = sha256.Sum256([]byte("<empty-set>"))

// anonymousLevelSentinel and friends are the literal sentinels anonymous
// inline constructs absorb instead of a name, so two anonymous forms
// with identical fields collide on purpose.
const (
	anonymousLevelSentinel      = "<anonymous::level>"
	anonymousLevelRangeSentinel = "<anonymous::levelrange>"
	anonymousContextSentinel    = "<anonymous::context>"
)

// hashState is an incremental digest that can be opened with a flavor
// tag, fed bytes or NUL-terminated strings, snapshotted at the
// partial/full boundary, and finished into a Hash. SHA-256 is used
// because it is the standard library's only hash whose digest
// implements encoding.BinaryMarshaler/Unmarshaler: clone by marshaling
// the absorbed-so-far state and replaying it into a fresh digest.
type hashState struct {
	h hash.Hash
}

// beginHash opens a new hash state, prefixed with a flavor tag so that
// distinct constructs whose payloads happen to coincide produce
// distinct digests.
func beginHash(flavor Flavor) *hashState {
	hs := &hashState{h: sha256.New()}
	hs.updateString(flavor.String())
	return hs
}

// update absorbs raw bytes into the hash state.
func (hs *hashState) update(b []byte) {
	hs.h.Write(b)
}

// updateString absorbs s including its terminating NUL, so that "ab" and
// "a\x00b" cannot collide.
func (hs *hashState) updateString(s string) {
	hs.h.Write([]byte(s))
	hs.h.Write([]byte{0})
}

// updateUint64 absorbs a fixed-width integer field as raw little-endian
// bytes. Consistency within one run is sufficient; the tool produces no
// cross-machine output.
func (hs *hashState) updateUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	hs.h.Write(buf[:])
}

// updateBool absorbs a boolean field as a single byte.
func (hs *hashState) updateBool(v bool) {
	if v {
		hs.h.Write([]byte{1})
	} else {
		hs.h.Write([]byte{0})
	}
}

// updateHash folds an already-computed Hash into the state, used when
// absorbing the result of a nested or recursive data-hasher call.
func (hs *hashState) updateHash(h Hash) {
	hs.h.Write(h[:])
}

// copy snapshots the state so absorption can continue independently on
// both the clone and the original. The clone becomes a partial_hash once
// finished; the original keeps absorbing toward the full_hash.
func (hs *hashState) copy() *hashState {
	marshaler, ok := hs.h.(encoding.BinaryMarshaler)
	if !ok {
		panic(errors.New("cildiff: sha256 digest does not support state copy"))
	}
	state, err := marshaler.MarshalBinary()
	if err != nil {
		panic(errors.Wrap(err, "cildiff: marshal hash state"))
	}
	clone := sha256.New()
	unmarshaler, ok := clone.(encoding.BinaryUnmarshaler)
	if !ok {
		panic(errors.New("cildiff: sha256 digest does not support state restore"))
	}
	if err := unmarshaler.UnmarshalBinary(state); err != nil {
		panic(errors.Wrap(err, "cildiff: restore hash state"))
	}
	return &hashState{h: clone}
}

// finish produces the 32-byte digest for everything absorbed so far.
func (hs *hashState) finish() Hash {
	var out Hash
	copy(out[:], hs.h.Sum(nil))
	return out
}
