package reactstream

import "sync/atomic"

// boolFlag is a tiny atomic latch used to coalesce NewAvailable xEvents
// so concurrent offerers never post more than one outstanding event.
type boolFlag struct{ v atomic.Bool }

func (f *boolFlag) trySet() bool { return f.v.CompareAndSwap(false, true) }
func (f *boolFlag) clear()       { f.v.Store(false) }

// PushSource is the public handle for a push-source node (spec.md §4.6):
// arbitrary external threads call Offer/OfferMany/Complete/ErrorComplete
// against it, while the node itself, running inside whatever region it
// was sealed into, is the queue's sole consumer.
type PushSource struct {
	Node *Node

	q          *mpscQueue
	posted     boolFlag
	onDequeued func(n int)
	onCancel   func()

	demand         uint64
	done           bool
	doneErr        error
	cancelNotified bool
}

type pushSourceAvailable struct{}
type pushSourceComplete struct{}
type pushSourceErrorComplete struct{ err error }

// NewPushSource builds a push-source node backed by a bounded lock-free
// MPSC queue. onDequeued and onCancel may be nil.
func NewPushSource(initialCapacity, maxCapacity uint64, onDequeued func(int), onCancel func()) *PushSource {
	ps := &PushSource{
		q:          newMPSCQueue(initialCapacity, maxCapacity),
		onDequeued: onDequeued,
		onCancel:   onCancel,
	}
	n := newNode(KindPushSource, 0, 1)
	n.locals = ps
	n.state = pushSourceDispatch
	n.cancelAfterTerminal = ps.notifyCancelOnce
	ps.Node = n
	return ps
}

// Offer attempts to enqueue elem, returning false only if the queue has
// reached max capacity and is full (spec.md §4.6).
func (ps *PushSource) Offer(elem any) bool {
	ok := ps.q.offer(elem)
	if ok {
		ps.postAvailable()
	}
	return ok
}

// OfferMany enqueues greedily up to the first rejection, returning the
// count actually enqueued.
func (ps *PushSource) OfferMany(elems []any) int {
	n := ps.q.offerMany(elems)
	if n > 0 {
		ps.postAvailable()
	}
	return n
}

// Complete marks the source as exhausted once its queue drains. Callers
// routinely preload a PushSource and call Complete before the node is
// even wired into a graph (let alone sealed into a region); Node.receive
// silently drops signals addressed to an unsealed node, so in that case
// the done flag is set directly instead of round-tripping through the
// dispatch mailbox, which only exists to serialize concurrent producers
// once the node is actually running.
func (ps *PushSource) Complete() {
	if ps.Node.region == nil {
		ps.done = true
		return
	}
	ps.Node.receive(xEventSignal(pushSourceComplete{}))
}

// ErrorComplete marks the source as failed once its queue drains. See
// Complete for why the unsealed case bypasses the dispatch mailbox.
func (ps *PushSource) ErrorComplete(err error) {
	if ps.Node.region == nil {
		ps.done = true
		ps.doneErr = err
		return
	}
	ps.Node.receive(xEventSignal(pushSourceErrorComplete{err: err}))
}

// QueueSize is an approximate, non-synchronized observer.
func (ps *PushSource) QueueSize() int { return ps.q.size() }

// AcceptsNext is an approximate, non-synchronized observer.
func (ps *PushSource) AcceptsNext() bool { return ps.q.acceptsNext() }

// postAvailable posts at most one outstanding NewAvailable xEvent at a
// time (SPEC_FULL.md §9 open question — the conservative reading).
func (ps *PushSource) postAvailable() {
	if ps.posted.trySet() {
		ps.Node.receive(xEventSignal(pushSourceAvailable{}))
	}
}

func (ps *PushSource) notifyCancelOnce() {
	if ps.cancelNotified {
		return
	}
	ps.cancelNotified = true
	if ps.onCancel != nil {
		ps.onCancel()
	}
}

func (ps *PushSource) drain(n *Node) {
	dequeued := 0
	for ps.demand > 0 {
		v, ok := ps.q.dequeue()
		if !ok {
			break
		}
		n.Out(0).EmitNext(v)
		ps.demand--
		dequeued++
	}
	if dequeued > 0 && ps.onDequeued != nil {
		ps.onDequeued(dequeued)
	}
}

// finish emits the terminal signal and stops the node once the source
// has been marked done and the queue has fully drained.
func pushSourceFinish(n *Node, ps *PushSource) (State, bool) {
	if !ps.done || ps.q.size() != 0 {
		return nil, false
	}
	if ps.doneErr != nil {
		n.Out(0).EmitError(ps.doneErr)
		return n.stop(ps.doneErr), true
	}
	n.Out(0).EmitComplete()
	return n.stop(nil), true
}

func pushSourceDispatch(n *Node, sig Signal) State {
	ps := n.locals.(*PushSource)

	switch sig.Type {
	case SigRequest:
		ps.demand += sig.N
		ps.drain(n)
		if next, done := pushSourceFinish(n, ps); done {
			return next
		}
		return pushSourceDispatch

	case SigCancel:
		ps.notifyCancelOnce()
		return n.stop(nil)

	case SigXEvent:
		switch payload := sig.Payload.(type) {
		case pushSourceAvailable:
			ps.posted.clear()
			ps.drain(n)
			if next, done := pushSourceFinish(n, ps); done {
				return next
			}
			if ps.q.size() > 0 {
				ps.postAvailable()
			}
			return pushSourceDispatch

		case pushSourceComplete:
			ps.done = true
			ps.drain(n)
			if next, done := pushSourceFinish(n, ps); done {
				return next
			}
			return pushSourceDispatch

		case pushSourceErrorComplete:
			ps.done = true
			ps.doneErr = payload.err
			ps.drain(n)
			if next, done := pushSourceFinish(n, ps); done {
				return next
			}
			return pushSourceDispatch

		default:
			return pushSourceDispatch
		}

	default:
		return pushSourceDispatch
	}
}
