package reactstream

// PrefixAndTailResult is the single element PrefixAndTail pushes
// downstream: the assembled prefix plus a handle standing in for the
// remainder of the upstream stream (spec.md §4.2).
type PrefixAndTailResult struct {
	Prefix []any
	Tail   *Node
}

// NewPrefixAndTail builds an injecting node that buffers the first
// prefixSize upstream elements, emits them paired with a live tail
// sub-source, completes its own main downstream connection, and from
// then on relays every further upstream signal into the tail.
func NewPrefixAndTail(prefixSize uint32) *Node {
	if prefixSize == 0 {
		panic("reactstream: PrefixAndTail prefixSize must be > 0")
	}
	n := newNode(KindPrefixAndTail, 1, 1)
	n.state = ptAwaitingXStart(prefixSize)
	return n
}

func ptAwaitingXStart(prefixSize uint32) State {
	var self State
	self = func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigXStart:
			n.In(0).Request(uint64(prefixSize))
			return ptAssembling(prefixSize, nil, false)
		case SigCancel:
			n.In(0).Cancel()
			return n.stop(nil)
		default:
			return self
		}
	}
	return self
}

func ptAssembling(pending uint32, builder []any, mainRequested bool) State {
	return func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigRequest:
			return ptAssembling(pending, builder, true)

		case SigCancel:
			n.In(0).Cancel()
			return n.stop(nil)

		case SigOnNext:
			builder = append(builder, sig.Elem)
			pending--
			if pending == 0 {
				if mainRequested {
					return ptEmit(builder, n.In(0), false, nil)(n, sig)
				}
				return ptAwaitingDemand(builder)
			}
			return ptAssembling(pending, builder, mainRequested)

		case SigOnComplete:
			// Upstream ran dry before the prefix filled: emit the partial
			// prefix with an empty, already-complete tail (spec.md §4.2, P5).
			if mainRequested {
				return ptEmit(builder, nil, true, nil)(n, sig)
			}
			return ptEmit(builder, nil, true, nil)

		case SigOnError:
			n.Out(0).EmitError(sig.Err)
			return n.stop(sig.Err)

		default:
			return ptAssembling(pending, builder, mainRequested)
		}
	}
}

func ptAwaitingDemand(builder []any) State {
	return func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigRequest:
			return ptEmit(builder, n.In(0), false, nil)(n, sig)
		case SigCancel:
			n.In(0).Cancel()
			return n.stop(nil)
		case SigOnComplete:
			return ptEmit(builder, nil, true, nil)
		case SigOnError:
			n.Out(0).EmitError(sig.Err)
			return n.stop(sig.Err)
		default:
			return ptAwaitingDemand(builder)
		}
	}
}

// ptEmit builds the tail sub-source, pushes (prefix, tail) downstream,
// completes the main downstream connection, and moves to draining.
// The returned state does this work when it is invoked: states that
// already hold downstream demand invoke it at once, otherwise it is
// installed and runs on the node's next signal.
// parentUp is the real upstream port the tail should forward demand to;
// it is nil when upstream already completed, in which case the tail is
// born pre-completed.
func ptEmit(prefix []any, parentUp *InPort, upstreamDone bool, upstreamErr error) State {
	return func(n *Node, sig Signal) State {
		sub := newSubSource(parentUp, upstreamDone, upstreamErr)
		sealStandalone(sub)

		n.Out(0).EmitNext(PrefixAndTailResult{Prefix: prefix, Tail: sub})
		n.Out(0).EmitComplete()

		if upstreamDone {
			return n.stop(upstreamErr)
		}
		return ptDraining(sub)
	}
}

// ptDraining forwards every further signal arriving on the real upstream
// port into the tail sub-source, until upstream terminates.
func ptDraining(sub *Node) State {
	var self State
	self = func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigOnNext, SigOnComplete, SigOnError:
			sub.receive(sig)
			if sig.Type == SigOnNext {
				return self
			}
			return n.stop(sig.Err)
		default:
			return self
		}
	}
	return self
}

// newSubSource builds the proxy node standing in for the tail of a
// PrefixAndTail (or, pre-completed, for the empty-tail edge case).
// It owns no inbound port of its own: demand and cancellation are
// relayed directly onto parentUp, the original upstream port.
func newSubSource(parentUp *InPort, preTerminal bool, preErr error) *Node {
	n := newNode(KindSubSource, 0, 1)
	if preTerminal {
		n.state = subSourcePreTerminal(preErr)
	} else {
		n.state = subSourceActive(parentUp)
	}
	return n
}

func subSourceActive(parentUp *InPort) State {
	var self State
	self = func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigRequest:
			parentUp.Request(sig.N)
			return self
		case SigCancel:
			parentUp.Cancel()
			return n.stop(nil)
		case SigOnNext:
			n.Out(0).EmitNext(sig.Elem)
			return self
		case SigOnComplete:
			n.Out(0).EmitComplete()
			return n.stop(nil)
		case SigOnError:
			n.Out(0).EmitError(sig.Err)
			return n.stop(sig.Err)
		default:
			return self
		}
	}
	return self
}

func subSourcePreTerminal(err error) State {
	var self State
	self = func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigRequest:
			if err != nil {
				n.Out(0).EmitError(err)
				return n.stop(err)
			}
			n.Out(0).EmitComplete()
			return n.stop(nil)
		case SigCancel:
			return n.stop(nil)
		default:
			return self
		}
	}
	return self
}
