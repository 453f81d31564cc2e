package reactstream

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/aryszka/reactstream/internal/seqgen"
)

// TestMapIncrement covers seed scenario S1: map(+1) over [1,2,3].
func TestMapIncrement(t *testing.T) {
	ps := NewPushSource(4, 8, nil, nil)
	ps.OfferMany(anySlice(1, 2, 3))
	ps.Complete()

	m := NewMap(func(e any) (any, error) { return e.(int) + 1, nil })
	mustConnect(t, ps.Node.Out(0), m.In(0))

	c := newCollector()
	mustConnect(t, m.Out(0), c.sink().In(0))

	runAndWait(t, c, ps.Node)

	if diff := cmp.Diff(anySlice(2, 3, 4), c.elems); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
	require.NoError(t, c.err)
}

// TestMapUserErrorCancelsUpstream covers P2: a thrown error truncates
// the output and cancels upstream exactly once.
func TestMapUserErrorCancelsUpstream(t *testing.T) {
	var cancelled int
	ps := NewPushSource(4, 8, nil, func() { cancelled++ })
	ps.OfferMany(anySlice(1, 2, 3, 4))

	boom := errors.New("boom")
	m := NewMap(func(e any) (any, error) {
		if e.(int) == 3 {
			return nil, boom
		}
		return e, nil
	})
	mustConnect(t, ps.Node.Out(0), m.In(0))

	c := newCollector()
	mustConnect(t, m.Out(0), c.sink().In(0))

	runAndWait(t, c, ps.Node)

	require.Equal(t, anySlice(1, 2), c.elems)
	require.Error(t, c.err)
	require.Equal(t, 1, cancelled)
}

// TestMapIncrementProperty covers P1's shape with f = +1 instead of the
// identity, for arbitrary-length inputs, not just the seed scenario's
// fixed [1,2,3]: mapping with +1 always yields the element-wise
// incremented sequence, whatever the input length.
func TestMapIncrementProperty(t *testing.T) {
	gen := seqgen.New(1)
	for trial := 0; trial < 20; trial++ {
		n := gen.Between(0, 30)
		in := gen.Ints(n, -100, 100)

		want := make([]any, n)
		for i, v := range in {
			want[i] = v + 1
		}

		ps := NewPushSource(4, 64, nil, nil)
		ps.OfferMany(seqgen.AsAnySlice(in))
		ps.Complete()

		m := NewMap(func(e any) (any, error) { return e.(int) + 1, nil })
		mustConnect(t, ps.Node.Out(0), m.In(0))

		c := newCollector()
		mustConnect(t, m.Out(0), c.sink().In(0))

		runAndWait(t, c, ps.Node)

		requireSliceEqual(t, want, c.elems, "trial %d: input %v", trial, in)
		require.NoError(t, c.err)
	}
}

// TestMapUserErrorCancelsUpstreamProperty covers P2 across random input
// lengths and random error positions: whatever element the callback
// throws on, the output truncates to exactly the elements before it and
// upstream is cancelled exactly once.
func TestMapUserErrorCancelsUpstreamProperty(t *testing.T) {
	gen := seqgen.New(2)
	boom := errors.New("boom")

	for trial := 0; trial < 20; trial++ {
		n := gen.Between(1, 20)
		errPos := gen.ErrorPosition(n)
		seen := 0

		var cancelled int
		ps := NewPushSource(4, 64, nil, func() { cancelled++ })
		ps.OfferMany(seqgen.AsAnySlice(gen.Ints(n, 0, 1000)))

		m := NewMap(func(e any) (any, error) {
			if seen == errPos {
				seen++
				return nil, boom
			}
			seen++
			return e, nil
		})
		mustConnect(t, ps.Node.Out(0), m.In(0))

		c := newCollector()
		mustConnect(t, m.Out(0), c.sink().In(0))

		runAndWait(t, c, ps.Node)

		require.Len(t, c.elems, errPos, "trial %d: n=%d errPos=%d", trial, n, errPos)
		require.Error(t, c.err, "trial %d: n=%d errPos=%d", trial, n, errPos)
		require.Equal(t, 1, cancelled, "trial %d: n=%d errPos=%d", trial, n, errPos)
	}
}
