package reactstream

import "github.com/google/uuid"

// Kind is a structural tag used for graph analysis and diagnostics only;
// it has no runtime effect on dispatch.
type Kind string

const (
	KindMap           Kind = "map"
	KindPrefixAndTail Kind = "prefixAndTail"
	KindSubSource     Kind = "subSource"
	KindFanOut        Kind = "fanOutRoundRobin"
	KindFlattenConcat Kind = "flattenConcat"
	KindCouplingIn    Kind = "couplingInlet"
	KindCouplingOut   Kind = "couplingOutlet"
	KindPushSource    Kind = "pushSource"
	KindSink          Kind = "sink"
)

// NodeID is a stable identifier assigned once at construction time, used
// by diagnostics and post-mortem error reports (spec.md §9).
type NodeID string

func newNodeID() NodeID {
	return NodeID(uuid.New().String())
}
