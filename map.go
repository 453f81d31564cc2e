package reactstream

// NewMap builds a one-in/one-out linear transformer node that applies f
// to every element (spec.md §4.1). f's error return is treated like a
// panic from a user callback: the node cancels upstream, emits onError
// downstream, and becomes terminal.
//
// Map is pass-through and never re-enters itself mid-transition (request
// in response to onNext, say, crosses to a different node), so its
// single state runs with interception disabled.
func NewMap(f func(elem any) (any, error)) *Node {
	n := newNode(KindMap, 1, 1)
	n.intercept = false
	n.state = mapDispatch(f)
	return n
}

func mapDispatch(f func(any) (any, error)) State {
	var self State
	self = func(n *Node, sig Signal) State {
		switch sig.Type {
		case SigRequest:
			n.In(0).Request(sig.N)
			return self

		case SigCancel:
			n.In(0).Cancel()
			return n.stop(nil)

		case SigOnNext:
			out, err := f(sig.Elem)
			if err != nil {
				n.In(0).Cancel()
				n.Out(0).EmitError(newUserError(n, err))
				return n.stop(err)
			}
			n.Out(0).EmitNext(out)
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
