package reactstream

// flattenSubEntry tracks one inner stream FlattenConcat has materialized:
// the sub-source node the adapter produced, the internal port flatten
// bound to its outlet, and whether onSubscribe has been processed yet.
type flattenSubEntry struct {
	node       *Node
	inPort     *InPort
	subscribed bool
}

type flattenState struct {
	parallelism  uint32
	adapter      func(elem any) *Node
	subs         []*flattenSubEntry
	remaining    uint64
	nextPortID   int
}

// NewFlattenConcat builds a one-in/one-out node that turns a stream of
// stream-valued elements into the concatenation of those inner streams,
// pre-subscribing up to parallelism of them ahead of demand without ever
// reordering output (spec.md §4.4).
func NewFlattenConcat(parallelism uint32, adapter func(elem any) *Node) *Node {
	if parallelism == 0 {
		panic("reactstream: FlattenConcat parallelism must be > 0")
	}
	n := newNode(KindFlattenConcat, 1, 1)
	n.locals = &flattenState{parallelism: parallelism, adapter: adapter}
	n.state = flattenAwaitingXStart
	return n
}

func flattenAwaitingXStart(n *Node, sig Signal) State {
	fs := n.locals.(*flattenState)
	switch sig.Type {
	case SigXStart:
		n.In(0).Request(uint64(fs.parallelism))
		return flattenActive
	case SigCancel:
		n.In(0).Cancel()
		return n.stop(nil)
	default:
		return flattenAwaitingXStart
	}
}

func flattenActive(n *Node, sig Signal) State {
	fs := n.locals.(*flattenState)

	switch sig.Type {
	case SigOnSubscribe:
		entry := findSubByPort(fs, sig.Port)
		if entry == nil {
			return flattenActive
		}
		entry.subscribed = true
		sealAndStartSubgraph(entry.node)
		if isHead(fs, entry) && fs.remaining > 0 {
			entry.inPort.Request(fs.remaining)
		}
		return flattenActive

	case SigRequest:
		fs.remaining += sig.N
		if head := headEntry(fs); head != nil && head.subscribed {
			head.inPort.Request(sig.N)
		}
		return flattenActive

	case SigCancel:
		n.In(0).Cancel()
		for _, e := range fs.subs {
			e.inPort.Cancel()
		}
		return n.stop(nil)

	case SigOnNext:
		if sig.Port == n.In(0) {
			entry := flattenSpawnSub(n, fs, sig.Elem)
			n.receive(onSubscribeSignal(entry.inPort, entry.node))
			return flattenActive
		}
		if head := headEntry(fs); head != nil && sig.Port == head.inPort {
			n.Out(0).EmitNext(sig.Elem)
			if fs.remaining > 0 {
				fs.remaining--
			}
		}
		return flattenActive

	case SigOnComplete:
		if sig.Port == n.In(0) {
			if len(fs.subs) == 0 {
				n.Out(0).EmitComplete()
				return n.stop(nil)
			}
			return flattenUpstreamCompleted
		}
		return flattenSubComplete(n, fs, sig.Port, flattenActive)

	case SigOnError:
		flattenTearDownOnError(n, fs, sig.Err)
		return n.stop(sig.Err)

	default:
		return flattenActive
	}
}

// flattenUpstreamCompleted behaves like flattenActive but upstream has
// already completed: no more elements or completion will arrive on
// n.In(0), so the node's only remaining job is to drain the subs it
// already has and finish (spec.md §4.4 "activeUpstreamCompleted").
func flattenUpstreamCompleted(n *Node, sig Signal) State {
	fs := n.locals.(*flattenState)

	switch sig.Type {
	case SigOnSubscribe:
		entry := findSubByPort(fs, sig.Port)
		if entry == nil {
			return flattenUpstreamCompleted
		}
		entry.subscribed = true
		sealAndStartSubgraph(entry.node)
		if isHead(fs, entry) && fs.remaining > 0 {
			entry.inPort.Request(fs.remaining)
		}
		return flattenUpstreamCompleted

	case SigRequest:
		fs.remaining += sig.N
		if head := headEntry(fs); head != nil && head.subscribed {
			head.inPort.Request(sig.N)
		}
		return flattenUpstreamCompleted

	case SigCancel:
		for _, e := range fs.subs {
			e.inPort.Cancel()
		}
		return n.stop(nil)

	case SigOnNext:
		if head := headEntry(fs); head != nil && sig.Port == head.inPort {
			n.Out(0).EmitNext(sig.Elem)
			if fs.remaining > 0 {
				fs.remaining--
			}
		}
		return flattenUpstreamCompleted

	case SigOnComplete:
		next := flattenSubComplete(n, fs, sig.Port, flattenUpstreamCompleted)
		if len(fs.subs) == 0 {
			n.Out(0).EmitComplete()
			return n.stop(nil)
		}
		return next

	case SigOnError:
		flattenTearDownOnError(n, fs, sig.Err)
		return n.stop(sig.Err)

	default:
		return flattenUpstreamCompleted
	}
}

// flattenSpawnSub materializes a new inner stream from elem via the
// adapter, wires an internal port to its outlet, and appends it as a
// pending (not yet subscribed) entry.
func flattenSpawnSub(n *Node, fs *flattenState, elem any) *flattenSubEntry {
	sub := fs.adapter(elem)
	in := &InPort{id: fs.nextPortID, owner: n}
	fs.nextPortID++
	if err := Connect(sub.Out(0), in); err != nil {
		panic(newFatal(n, err, fs))
	}
	entry := &flattenSubEntry{node: sub, inPort: in}
	fs.subs = append(fs.subs, entry)
	return entry
}

// flattenSubComplete handles onComplete arriving from one of the inner
// subs, distinguishing head (retarget demand, pull one more upstream
// element, drop) from non-head (simple removal) per spec.md §4.4.
func flattenSubComplete(n *Node, fs *flattenState, port any, current State) State {
	idx := -1
	for i, e := range fs.subs {
		if e.inPort == port {
			idx = i
			break
		}
	}
	if idx < 0 {
		return current
	}

	if idx == 0 {
		fs.subs = fs.subs[1:]
		if head := headEntry(fs); head != nil && head.subscribed && fs.remaining > 0 {
			head.inPort.Request(fs.remaining)
		}
		n.In(0).Request(1)
		return current
	}

	fs.subs = append(fs.subs[:idx], fs.subs[idx+1:]...)
	return current
}

func flattenTearDownOnError(n *Node, fs *flattenState, err error) {
	n.In(0).Cancel()
	for _, e := range fs.subs {
		e.inPort.Cancel()
	}
	n.Out(0).EmitError(err)
}

func findSubByPort(fs *flattenState, port any) *flattenSubEntry {
	for _, e := range fs.subs {
		if e.inPort == port {
			return e
		}
	}
	return nil
}

func headEntry(fs *flattenState) *flattenSubEntry {
	if len(fs.subs) == 0 {
		return nil
	}
	return fs.subs[0]
}

func isHead(fs *flattenState, e *flattenSubEntry) bool {
	return len(fs.subs) > 0 && fs.subs[0] == e
}
