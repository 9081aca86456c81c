// Package smrand provides deterministic random number generation for
// the render pipeline: a master-seed-plus-stage-name SHA-256
// derivation yielding a private, reproducible stream per rule, so
// re-running the same config against the same data is deterministic
// end to end.
package smrand

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand"
)

// RNG is a deterministic, stage-scoped random source.
type RNG struct {
	seed   uint64
	source *rand.Rand
}

// New derives a sub-seed from masterSeed, a stage name (conventionally
// the rule ID or action name that owns this stream), and a config
// hash.
func New(masterSeed uint64, stage string, configHash []byte) *RNG {
	h := sha256.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], masterSeed)
	h.Write(buf[:])
	h.Write([]byte(stage))
	h.Write(configHash)
	sum := h.Sum(nil)
	seed := binary.BigEndian.Uint64(sum[:8])
	return &RNG{seed: seed, source: rand.New(rand.NewSource(int64(seed)))}
}

// Seed returns the derived seed, useful for logging which stream a rule used.
func (r *RNG) Seed() uint64 { return r.seed }

// IntRange returns a pseudo-random integer in [lo, hi].
func (r *RNG) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.source.Intn(hi-lo+1)
}

// Float64Range returns a pseudo-random float64 in [lo, hi).
func (r *RNG) Float64Range(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.source.Float64()*(hi-lo)
}
