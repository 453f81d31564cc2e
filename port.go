package reactstream

import "github.com/pkg/errors"

// InPort is an inbound, typed directional handle owned by exactly one
// node and bound to exactly one peer OutPort on another node.
type InPort struct {
	id    int
	owner *Node
	peer  *OutPort
}

// OutPort is an outbound, typed directional handle owned by exactly one
// node and bound to exactly one peer InPort on another node.
type OutPort struct {
	id    int
	owner *Node
	peer  *InPort
}

// ID returns the port's identifier, stable within its owning node, used
// for routing multi-port signals (e.g. which upstream fed an onNext into
// a fan-in).
func (p *InPort) ID() int { return p.id }
func (p *OutPort) ID() int { return p.id }

// Owner returns the node that owns this port.
func (p *InPort) Owner() *Node  { return p.owner }
func (p *OutPort) Owner() *Node { return p.owner }

// Bound reports whether the port has a live peer.
func (p *InPort) Bound() bool  { return p.peer != nil }
func (p *OutPort) Bound() bool { return p.peer != nil }

// Connect binds an outbound port on an upstream node to an inbound port
// on a downstream node, failing if either side is already bound.
func Connect(out *OutPort, in *InPort) error {
	if out.peer != nil {
		return errors.Errorf("reactstream: out port %d on node %s already bound", out.id, out.owner.id)
	}
	if in.peer != nil {
		return errors.Errorf("reactstream: in port %d on node %s already bound", in.id, in.owner.id)
	}
	out.peer = in
	in.peer = out
	return nil
}

// Request signals downstream->upstream demand across this inbound port.
// n must be > 0 (spec.md §3).
func (p *InPort) Request(n uint64) {
	if n == 0 || p.peer == nil {
		return
	}
	p.peer.owner.receive(reqSignal(p.peer, n))
}

// Cancel signals downstream->upstream cancellation across this inbound
// port.
func (p *InPort) Cancel() {
	if p.peer == nil {
		return
	}
	p.peer.owner.receive(cancelSignal(p.peer))
}

// EmitNext signals upstream->downstream data across this outbound port.
func (p *OutPort) EmitNext(elem any) {
	if p.peer == nil {
		return
	}
	p.peer.owner.receive(nextSignal(p.peer, elem))
}

// EmitComplete signals upstream->downstream normal termination across
// this outbound port.
func (p *OutPort) EmitComplete() {
	if p.peer == nil {
		return
	}
	p.peer.owner.receive(completeSignal(p.peer))
}

// EmitError signals upstream->downstream failure termination across this
// outbound port.
func (p *OutPort) EmitError(err error) {
	if p.peer == nil {
		return
	}
	p.peer.owner.receive(errorSignal(p.peer, err))
}
