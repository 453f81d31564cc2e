package reactstream

// fanOutState is the mutable ring state for a FanOut Round-Robin node,
// kept on Node.locals rather than threaded through State closures: the
// per-outlet demand/alive slices are fixed-length from construction, so
// in-place mutation is simpler than rebuilding them on every signal
// (spec.md §4.3).
type fanOutState struct {
	demands     []uint64
	alive       []bool
	cursor      int
	inFlight    bool
	eagerCancel bool
}

// NewFanOutRoundRobin builds a one-in/numOutlets-out node that hands
// upstream elements to its outlets in round-robin order, gated by each
// outlet's own demand (spec.md §4.3).
func NewFanOutRoundRobin(numOutlets int, eagerCancel bool) *Node {
	if numOutlets < 1 {
		panic("reactstream: FanOut requires at least one outlet")
	}
	n := newNode(KindFanOut, 1, numOutlets)
	fs := &fanOutState{
		demands:     make([]uint64, numOutlets),
		alive:       make([]bool, numOutlets),
		cursor:      -1,
		eagerCancel: eagerCancel,
	}
	for i := range fs.alive {
		fs.alive[i] = true
	}
	n.locals = fs
	n.state = fanOutDispatch
	return n
}

func fanOutDispatch(n *Node, sig Signal) State {
	fs := n.locals.(*fanOutState)

	switch sig.Type {
	case SigRequest:
		i := outIndex(n, sig.Port)
		if i >= 0 && fs.alive[i] {
			fs.demands[i] += sig.N
			maybeRequestUpstream(n, fs)
		}
		return fanOutDispatch

	case SigCancel:
		i := outIndex(n, sig.Port)
		if i >= 0 {
			fs.alive[i] = false
			fs.demands[i] = 0
		}
		if fs.eagerCancel || !anyAlive(fs) {
			n.In(0).Cancel()
			return n.stop(nil)
		}
		maybeRequestUpstream(n, fs)
		return fanOutDispatch

	case SigOnNext:
		fs.inFlight = false
		target := nextAlive(fs, fs.cursor)
		if target >= 0 {
			n.Out(target).EmitNext(sig.Elem)
			if fs.demands[target] > 0 {
				fs.demands[target]--
			}
			fs.cursor = target
		}
		maybeRequestUpstream(n, fs)
		return fanOutDispatch

	case SigOnComplete:
		for i, alive := range fs.alive {
			if alive {
				n.Out(i).EmitComplete()
			}
		}
		return n.stop(nil)

	case SigOnError:
		for i, alive := range fs.alive {
			if alive {
				n.Out(i).EmitError(sig.Err)
			}
		}
		return n.stop(sig.Err)

	default:
		return fanOutDispatch
	}
}

func outIndex(n *Node, port any) int {
	op, ok := port.(*OutPort)
	if !ok {
		return -1
	}
	for i, o := range n.outs {
		if o == op {
			return i
		}
	}
	return -1
}

func anyAlive(fs *fanOutState) bool {
	for _, a := range fs.alive {
		if a {
			return true
		}
	}
	return false
}

// nextAlive finds the next alive outlet strictly after `after` in
// insertion order, wrapping around; -1 if none.
func nextAlive(fs *fanOutState, after int) int {
	n := len(fs.alive)
	for step := 1; step <= n; step++ {
		i := (after + step) % n
		if fs.alive[i] {
			return i
		}
	}
	return -1
}

func minDemandAlive(fs *fanOutState) uint64 {
	min := uint64(0)
	seen := false
	for i, alive := range fs.alive {
		if !alive {
			continue
		}
		if !seen || fs.demands[i] < min {
			min = fs.demands[i]
			seen = true
		}
	}
	if !seen {
		return 0
	}
	return min
}

func maybeRequestUpstream(n *Node, fs *fanOutState) {
	if fs.inFlight {
		return
	}
	if !anyAlive(fs) {
		return
	}
	if minDemandAlive(fs) == 0 {
		return
	}
	fs.inFlight = true
	n.In(0).Request(1)
}
