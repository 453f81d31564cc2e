// Package seqgen generates the arbitrary-length integer sequences (and
// occasional injected error positions) the property tests for spec.md §8
// P1-P5 use, seeded for reproducibility.
//
// Adapted from aryszka-cast's race-domain generator (gen.go): same
// seeded *rand.Rand-wrapper-with-between-helpers shape, repurposed from
// car numbers and stage layouts to plain integer test sequences.
package seqgen

import "math/rand"

// Gen wraps a seeded PRNG with the small helpers sequence generation
// needs.
type Gen struct{ rand *rand.Rand }

// New builds a Gen seeded deterministically from seed.
func New(seed int64) *Gen {
	return &Gen{rand: rand.New(rand.NewSource(seed))}
}

// Between returns a pseudo-random int in [min, max).
func (g *Gen) Between(min, max int) int {
	if max <= min {
		return min
	}
	return min + g.rand.Intn(max-min)
}

// Ints generates a sequence of n pseudo-random ints in [min, max).
func (g *Gen) Ints(n, min, max int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = g.Between(min, max)
	}
	return out
}

// IntsAsAny is Ints boxed to []any, the shape the node graph's onNext
// payloads travel as.
func (g *Gen) IntsAsAny(n, min, max int) []any {
	out := make([]any, n)
	for i := range out {
		out[i] = g.Between(min, max)
	}
	return out
}

// AsAnySlice boxes an already-generated []int into the []any shape
// PushSource.OfferMany and the node graph's onNext payloads expect.
func AsAnySlice(ints []int) []any {
	out := make([]any, len(ints))
	for i, v := range ints {
		out[i] = v
	}
	return out
}

// ErrorPosition picks an index in [0, n) at which a property test (P2)
// should inject a failure, or -1 if n is 0.
func (g *Gen) ErrorPosition(n int) int {
	if n <= 0 {
		return -1
	}
	return g.rand.Intn(n)
}

// Lengths generates count sequence lengths in [min, max], used to build
// the `[S_0, S_1, ...]` stream-of-streams inputs FlattenConcat's P4
// exercises.
func (g *Gen) Lengths(count, min, max int) []int {
	return g.Ints(count, min, max+1)
}
