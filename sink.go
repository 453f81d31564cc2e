package reactstream

import "math"

// NewSink builds a one-in/zero-out terminus that requests unbounded
// demand as soon as its region starts and hands every element to onNext,
// then reports completion or failure once via onDone(err) (nil err on a
// clean onComplete). It is not one of the four external interfaces
// listed in spec.md §6 — those describe how the core is built, not how a
// caller drains it — but every seed scenario in spec.md §8 ends in a
// "drain" step, and nothing in the core otherwise terminates a graph, so
// cmd/demo and the test suite both share this one minimal consumer
// rather than each hand-rolling their own.
func NewSink(onNext func(elem any), onDone func(err error)) *Node {
	n := newNode(KindSink, 1, 0)
	n.intercept = false
	n.state = sinkDispatch(onNext, onDone)
	return n
}

func sinkDispatch(onNext func(any), onDone func(error)) State {
	var self State
	self = func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigXStart:
			n.In(0).Request(math.MaxUint64)
			return self
		case SigOnNext:
			if onNext != nil {
				onNext(sig.Elem)
			}
			return self
		case SigOnComplete:
			if onDone != nil {
				onDone(nil)
			}
			return n.stop(nil)
		case SigOnError:
			if onDone != nil {
				onDone(sig.Err)
			}
			return n.stop(sig.Err)
		default:
			return self
		}
	}
	return self
}
