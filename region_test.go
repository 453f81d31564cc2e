package reactstream

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestAsyncBoundaryPreservesFIFOOrder covers spec.md §4.7/§5: a node
// marked async lives in its own region and hands signals off through the
// mailbox instead of running inline with its neighbors, but elements
// still arrive downstream in the exact order they were produced.
func TestAsyncBoundaryPreservesFIFOOrder(t *testing.T) {
	ps := NewPushSource(8, 16, nil, nil)
	ps.OfferMany(anySlice(1, 2, 3, 4, 5))
	ps.Complete()

	m := NewMap(func(e any) (any, error) { return e, nil })
	MarkAsync(m, nil)
	mustConnect(t, ps.Node.Out(0), m.In(0))

	c := newCollector()
	mustConnect(t, m.Out(0), c.sink().In(0))

	runAndWait(t, c, ps.Node)

	require.Equal(t, anySlice(1, 2, 3, 4, 5), c.elems)
	require.NoError(t, c.err)
}

// TestNewPoolExecutorRunsAllWork covers the bounded worker-pool Executor:
// every submitted unit of work eventually runs, even when more work is
// submitted than the pool's worker count.
func TestNewPoolExecutorRunsAllWork(t *testing.T) {
	exec := NewPoolExecutor(2)

	var mu sync.Mutex
	seen := map[int]bool{}
	var wg sync.WaitGroup
	wg.Add(5)
	for i := 0; i < 5; i++ {
		i := i
		exec.Run(func() {
			defer wg.Done()
			mu.Lock()
			seen[i] = true
			mu.Unlock()
		})
	}

	waitOrTimeout(t, &wg)
	require.Len(t, seen, 5)
}

// TestTimeoutExecutorReportsResourceErrorOnSlowDrain covers SPEC_FULL.md
// §A.3 item 2: a drain that outruns Timeout is reported to OnSlow as a
// *ResourceError carrying the async-boundary node's identity, rather
// than the region hanging silently.
func TestTimeoutExecutorReportsResourceErrorOnSlowDrain(t *testing.T) {
	n := newNode(KindMap, 1, 1)

	var reported error
	done := make(chan struct{})
	exec := &TimeoutExecutor{
		Timeout: 10 * time.Millisecond,
		Node:    n,
		OnSlow: func(err error) {
			reported = err
			close(done)
		},
	}
	exec.Run(func() { time.Sleep(100 * time.Millisecond) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("OnSlow never fired")
	}

	var re *ResourceError
	require.ErrorAs(t, reported, &re)
	require.Equal(t, n.id, re.NodeID)
}

// TestMarkAsyncAttachesNodeToTimeoutExecutor covers the MarkAsync wiring
// seam: a *TimeoutExecutor with no Node set gets one filled in so its
// eventual ResourceError is attributable.
func TestMarkAsyncAttachesNodeToTimeoutExecutor(t *testing.T) {
	n := newNode(KindMap, 1, 1)
	te := &TimeoutExecutor{Timeout: time.Second}
	MarkAsync(n, te)
	require.Same(t, n, te.Node)
}

func waitOrTimeout(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pool work")
	}
}
