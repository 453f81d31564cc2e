package reactstream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// collector drains a node's output into a plain slice and signals done
// once the upstream reaches terminal, in the teacher's select+time.After
// style rather than a bare channel read that can hang a test forever.
type collector struct {
	elems []any
	err   error
	done  chan struct{}
}

func newCollector() *collector {
	return &collector{done: make(chan struct{})}
}

func (c *collector) sink() *Node {
	return NewSink(
		func(e any) { c.elems = append(c.elems, e) },
		func(err error) {
			c.err = err
			close(c.done)
		},
	)
}

func (c *collector) waitDone(t *testing.T) {
	t.Helper()
	select {
	case <-c.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for terminal")
	}
}

func mustConnect(t *testing.T, out *OutPort, in *InPort) {
	t.Helper()
	if err := Connect(out, in); err != nil {
		t.Fatalf("Connect: %v", err)
	}
}

func runAndWait(t *testing.T, c *collector, roots ...*Node) {
	t.Helper()
	h := RunGraph(roots...)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	c.waitDone(t)
}

// requireSliceEqual compares two []any slices by content only, treating a
// nil slice and a non-nil empty slice as equal — collectors leave elems
// nil until the first append, while a freshly built want slice or a
// zero-length reslice is non-nil, and neither difference is meaningful.
func requireSliceEqual(t *testing.T, want, got []any, msgAndArgs ...any) {
	t.Helper()
	if len(want) == 0 && len(got) == 0 {
		return
	}
	require.Equal(t, want, got, msgAndArgs...)
}

func anySlice(xs ...any) []any {
	out := make([]any, len(xs))
	copy(out, xs)
	return out
}
