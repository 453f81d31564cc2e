package reactstream

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aryszka/reactstream/internal/seqgen"
)

// innerSource builds a tiny push-source-backed inner stream for an
// adapter function, preloaded and already complete.
func innerSource(elems ...any) *Node {
	ps := NewPushSource(4, 8, nil, nil)
	ps.OfferMany(elems)
	ps.Complete()
	return ps.Node
}

// TestFlattenConcatPreservesOrder covers P4: inner streams are
// concatenated in outer arrival order, never interleaved, regardless of
// parallelism pre-subscribing more than one ahead.
func TestFlattenConcatPreservesOrder(t *testing.T) {
	outer := NewPushSource(4, 8, nil, nil)
	outer.OfferMany(anySlice(1, 2, 3))
	outer.Complete()

	fc := NewFlattenConcat(2, func(elem any) *Node {
		n := elem.(int)
		return innerSource(n*10, n*10+1)
	})
	mustConnect(t, outer.Node.Out(0), fc.In(0))

	c := newCollector()
	mustConnect(t, fc.Out(0), c.sink().In(0))

	runAndWait(t, c, outer.Node)

	require.Equal(t, []any{10, 11, 20, 21, 30, 31}, c.elems)
	require.NoError(t, c.err)
}

// TestFlattenConcatPreservesOrderProperty covers P4 across a random
// number of inner streams of random length and random parallelism: the
// flattened output must equal the straightforward concatenation of the
// inner streams in outer arrival order, whatever the pre-subscription
// depth.
func TestFlattenConcatPreservesOrderProperty(t *testing.T) {
	gen := seqgen.New(4)
	for trial := 0; trial < 10; trial++ {
		numInner := gen.Between(1, 6)
		lengths := gen.Lengths(numInner, 0, 4)
		parallelism := uint32(gen.Between(1, 4))

		inner := make([][]any, numInner)
		var want []any
		for i, length := range lengths {
			inner[i] = seqgen.AsAnySlice(gen.Ints(length, 0, 1000))
			want = append(want, inner[i]...)
		}

		outer := NewPushSource(8, 32, nil, nil)
		idx := 0
		for range inner {
			outer.Offer(idx)
			idx++
		}
		outer.Complete()

		fc := NewFlattenConcat(parallelism, func(elem any) *Node {
			return innerSource(inner[elem.(int)]...)
		})
		mustConnect(t, outer.Node.Out(0), fc.In(0))

		c := newCollector()
		mustConnect(t, fc.Out(0), c.sink().In(0))

		runAndWait(t, c, outer.Node)

		requireSliceEqual(t, want, c.elems,
			"trial %d: lengths=%v parallelism=%d", trial, lengths, parallelism)
		require.NoError(t, c.err)
	}
}
