package reactstream

import (
	"fmt"

	"github.com/inconshreveable/log15"
)

// State is the function value installed as a node's current behavior for
// the next signal. A state returns the state to install next, or nil to
// keep the current one (spec.md §9: CPS-like, each state returns the
// next state, rather than a recursive call chain).
type State func(n *Node, sig Signal) State

// Node is the atomic unit of the graph: a state machine with inbound and
// outbound ports, an intercept buffer, and a region membership (spec.md
// §3).
type Node struct {
	id   NodeID
	kind Kind

	ins  []*InPort
	outs []*OutPort

	state     State
	intercept bool

	dispatching bool
	pending     []Signal

	sealed   bool
	terminal bool
	termErr  error

	region *Region
	onSeal func(n *Node, r *Region)

	onTerminal func(error)

	asyncBoundary  bool
	customExecutor Executor

	// cancelAfterTerminal, when set, is invoked for a SigCancel that
	// arrives after the node has already gone terminal, instead of being
	// silently dropped at the terminal gate in dispatch. PushSource needs
	// this: notify_on_cancel must fire even if cancel arrives after the
	// source's queue drained and it already completed (spec.md §4.6).
	cancelAfterTerminal func()

	log log15.Logger

	// locals is an opaque pointer to the concrete node kind's private
	// state, kept only so Fatal errors can dump it for diagnostics.
	locals any
}

func newNode(kind Kind, nIn, nOut int) *Node {
	n := &Node{
		id:        newNodeID(),
		kind:      kind,
		intercept: true,
		pending:   make([]Signal, 0, interceptBufferPrealloc),
	}
	n.log = Log.New("node", string(n.id), "kind", string(kind))
	n.ins = make([]*InPort, nIn)
	for i := range n.ins {
		n.ins[i] = &InPort{id: i, owner: n}
	}
	n.outs = make([]*OutPort, nOut)
	for i := range n.outs {
		n.outs[i] = &OutPort{id: i, owner: n}
	}
	return n
}

// ID returns the node's stable diagnostic identifier.
func (n *Node) ID() NodeID { return n.id }

// Kind returns the node's structural tag. No runtime effect.
func (n *Node) Kind() Kind { return n.kind }

// In returns the i'th inbound port.
func (n *Node) In(i int) *InPort { return n.ins[i] }

// Out returns the i'th outbound port.
func (n *Node) Out(i int) *OutPort { return n.outs[i] }

// Terminal reports whether the node has reached its terminal state.
func (n *Node) Terminal() bool { return n.terminal }

// TerminalErr returns the error the node terminated with, if any.
func (n *Node) TerminalErr() error { return n.termErr }

// seal installs the node's region membership. Idempotent (spec.md §4.0).
func (n *Node) seal(r *Region) {
	if n.sealed {
		return
	}
	n.sealed = true
	n.region = r
	r.addMember(n)
	if n.onSeal != nil {
		n.onSeal(n, r)
	}
	n.log.Debug("sealed", "region", fmt.Sprintf("%p", r))
}

// receive is the single entry point peers use to hand this node a
// signal. It routes through the owning region, which decides whether to
// run inline (same thread, synchronous region) or hand off to an
// executor (asynchronous region).
func (n *Node) receive(sig Signal) {
	if n.region == nil {
		return
	}
	n.region.deliver(n, sig)
}

// dispatch implements the §4.0 intercept protocol: a signal arriving
// while the node is already dispatching is buffered in FIFO order unless
// the current state is marked non-intercepting, in which case it runs
// through immediately.
func (n *Node) dispatch(sig Signal) {
	if n.terminal {
		if sig.Type == SigCancel && n.cancelAfterTerminal != nil {
			n.cancelAfterTerminal()
		}
		return
	}

	if n.dispatching {
		if !n.intercept {
			n.runOne(sig)
			return
		}
		n.pending = append(n.pending, sig)
		return
	}

	n.dispatching = true
	n.runOne(sig)
	for len(n.pending) > 0 && !n.terminal {
		next := n.pending[0]
		n.pending = n.pending[1:]
		n.runOne(next)
	}
	n.dispatching = false
}

func (n *Node) runOne(sig Signal) {
	defer n.recoverPanic()
	if n.state == nil || n.terminal {
		return
	}
	next := n.state(n, sig)
	if next != nil {
		n.state = next
	}
}

func (n *Node) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}
	if f, ok := r.(*Fatal); ok {
		// Not recoverable locally: re-panic so the region boundary tears
		// the whole region down (spec.md §4.7).
		panic(f)
	}

	var err error
	switch v := r.(type) {
	case error:
		err = newUserError(n, v)
	default:
		err = newUserError(n, fmt.Errorf("%v", v))
	}
	n.propagateFailure(err, nil, nil)
}

// propagateFailure cancels every still-live upstream (inbound port) and
// emits onError on every still-live downstream (outbound port), except
// optionally the port the error itself arrived on, then marks the node
// terminal (spec.md §7).
func (n *Node) propagateFailure(err error, exceptIn *InPort, exceptOut *OutPort) {
	for _, p := range n.ins {
		if p == exceptIn || !p.Bound() {
			continue
		}
		p.Cancel()
	}
	for _, p := range n.outs {
		if p == exceptOut || !p.Bound() {
			continue
		}
		p.EmitError(err)
	}
	n.log.Error("terminal", "err", err)
	n.state = terminalState
	n.markTerminal(err)
}

func (n *Node) markTerminal(err error) {
	if n.terminal {
		return
	}
	n.terminal = true
	n.termErr = err
	if n.onTerminal != nil {
		n.onTerminal(err)
	}
}

// terminalState ignores every further signal, per the Node lifecycle
// (spec.md §3: "once terminal, inbound signals are ignored").
func terminalState(n *Node, sig Signal) State {
	return terminalState
}

// fail is a convenience used by concrete node state functions: propagate
// err wrapped as a UserError and transition terminal.
func (n *Node) fail(err error) State {
	n.propagateFailure(newUserError(n, err), nil, nil)
	return terminalState
}

// failExcept is fail but excludes the given ports from receiving the
// cancel/onError reflection, used when the error itself arrived on one
// of them.
func (n *Node) failExcept(err error, exceptIn *InPort, exceptOut *OutPort) State {
	n.propagateFailure(newUserError(n, err), exceptIn, exceptOut)
	return terminalState
}

// protocolFail is fail but tags the error as a ProtocolError (spec.md §7).
func (n *Node) protocolFail(invariant string, err error) State {
	n.propagateFailure(newProtocolError(n, invariant, err), nil, nil)
	return terminalState
}

// stop transitions the node terminal without running the cancel/onError
// reflection in propagateFailure, for states that have already forwarded
// the terminating signal themselves (e.g. Map forwarding onComplete).
func (n *Node) stop(err error) State {
	n.state = terminalState
	n.markTerminal(err)
	return terminalState
}
