package reactstream

// NewCoupling builds a twinned inlet/outlet pair used to close a cycle
// in the graph builder: the inlet exposes the sole inbound port, the
// outlet the sole outbound port, and every signal that reaches one side
// is relayed to the other (spec.md §4.5). The two nodes are not linked
// by a Port — Coupling is precisely the escape hatch for topologies a
// Port pair cannot express, a cycle — so they forward directly through
// each other's receive(), which is safe whether or not they end up
// sealed into the same region.
func NewCoupling() (inlet, outlet *Node) {
	inlet = newNode(KindCouplingIn, 1, 0)
	outlet = newNode(KindCouplingOut, 0, 1)
	inlet.intercept = false
	outlet.intercept = false
	inlet.locals = outlet
	outlet.locals = inlet
	inlet.state = couplingInletDispatch
	outlet.state = couplingOutletDispatch
	return inlet, outlet
}

func couplingInletDispatch(n *Node, sig Signal) State {
	outlet := n.locals.(*Node)

	switch sig.Type {
	case SigOnNext:
		outlet.receive(sig)
		return couplingInletDispatch
	case SigOnComplete:
		outlet.receive(sig)
		return n.stop(nil)
	case SigOnError:
		outlet.receive(sig)
		return n.stop(sig.Err)
	case SigRequest:
		n.In(0).Request(sig.N)
		return couplingInletDispatch
	case SigCancel:
		n.In(0).Cancel()
		return n.stop(nil)
	default:
		return couplingInletDispatch
	}
}

func couplingOutletDispatch(n *Node, sig Signal) State {
	inlet := n.locals.(*Node)

	switch sig.Type {
	case SigOnNext:
		n.Out(0).EmitNext(sig.Elem)
		return couplingOutletDispatch
	case SigOnComplete:
		n.Out(0).EmitComplete()
		return n.stop(nil)
	case SigOnError:
		n.Out(0).EmitError(sig.Err)
		return n.stop(sig.Err)
	case SigRequest:
		inlet.receive(sig)
		return couplingOutletDispatch
	case SigCancel:
		inlet.receive(sig)
		return n.stop(nil)
	default:
		return couplingOutletDispatch
	}
}
