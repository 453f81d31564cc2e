package reactstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCancelTravelsThroughMapChain covers P7: cancelling downstream of a
// chain of Map nodes reaches the original source exactly once, regardless
// of chain length.
func TestCancelTravelsThroughMapChain(t *testing.T) {
	var cancelled int
	ps := NewPushSource(4, 8, nil, func() { cancelled++ })

	identity := func(e any) (any, error) { return e, nil }
	m1 := NewMap(identity)
	m2 := NewMap(identity)
	m3 := NewMap(identity)

	mustConnect(t, ps.Node.Out(0), m1.In(0))
	mustConnect(t, m1.Out(0), m2.In(0))
	mustConnect(t, m2.Out(0), m3.In(0))

	sink := NewSink(func(any) {}, nil)
	mustConnect(t, m3.Out(0), sink.In(0))

	RunGraph(ps.Node)
	sink.In(0).Cancel()

	require.Equal(t, 1, cancelled)
	require.True(t, m1.Terminal())
	require.True(t, m2.Terminal())
	require.True(t, m3.Terminal())
}

// TestInterceptBuffersReentrantSignal covers spec.md §4.0: a signal that
// arrives for a node while it is already mid-dispatch is buffered in
// FIFO order instead of re-entering the state function.
func TestInterceptBuffersReentrantSignal(t *testing.T) {
	n := newNode(KindMap, 1, 1)
	n.intercept = true

	var order []string
	n.state = func(n *Node, sig Signal) State {
		order = append(order, sig.Payload.(string))
		if sig.Payload == "first" {
			// Re-enter while still dispatching "first": must be buffered,
			// not run immediately.
			n.dispatch(xEventSignal("reentrant"))
		}
		return nil
	}

	n.dispatch(xEventSignal("first"))

	require.Equal(t, []string{"first", "reentrant"}, order)
}

// TestNonInterceptingStateRunsReentrantSignalImmediately covers the
// opposite half of §4.0: when intercept is disabled (e.g. Map, Coupling),
// a reentrant signal runs through inline instead of queuing.
func TestNonInterceptingStateRunsReentrantSignalImmediately(t *testing.T) {
	n := newNode(KindMap, 1, 1)
	n.intercept = false

	var order []string
	n.state = func(n *Node, sig Signal) State {
		order = append(order, sig.Payload.(string))
		if sig.Payload == "first" {
			n.dispatch(xEventSignal("reentrant"))
			order = append(order, "after-reentrant")
		}
		return nil
	}

	n.dispatch(xEventSignal("first"))

	require.Equal(t, []string{"first", "reentrant", "after-reentrant"}, order)
}

// TestTerminalNodeIgnoresFurtherSignals covers the Node lifecycle rule:
// once terminal, inbound signals are ignored.
func TestTerminalNodeIgnoresFurtherSignals(t *testing.T) {
	n := newNode(KindMap, 1, 1)
	calls := 0
	n.state = func(n *Node, sig Signal) State {
		calls++
		return n.stop(nil)
	}

	n.dispatch(xEventSignal("a"))
	require.Equal(t, 1, calls)
	require.True(t, n.Terminal())

	n.dispatch(xEventSignal("b"))
	require.Equal(t, 1, calls, "terminal node must ignore further signals")
}
