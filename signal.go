package reactstream

// SignalType enumerates the universe of messages a node may receive, per
// spec.md §3.
type SignalType int

const (
	// SigRequest travels downstream -> upstream; N > 0.
	SigRequest SignalType = iota
	// SigCancel travels downstream -> upstream.
	SigCancel
	// SigOnNext travels upstream -> downstream.
	SigOnNext
	// SigOnComplete travels upstream -> downstream; terminal.
	SigOnComplete
	// SigOnError travels upstream -> downstream; terminal.
	SigOnError
	// SigXStart is fired once by a region when it starts.
	SigXStart
	// SigXEvent is a free-form region-to-node extension event.
	SigXEvent
	// SigOnSubscribe is emitted by a newly spawned sub-node (flatten/split).
	SigOnSubscribe
)

func (t SignalType) String() string {
	switch t {
	case SigRequest:
		return "request"
	case SigCancel:
		return "cancel"
	case SigOnNext:
		return "onNext"
	case SigOnComplete:
		return "onComplete"
	case SigOnError:
		return "onError"
	case SigXStart:
		return "xStart"
	case SigXEvent:
		return "xEvent"
	case SigOnSubscribe:
		return "onSubscribe"
	default:
		return "unknown"
	}
}

// Signal is the single record type carried both across direct dispatch
// and through a region mailbox. Only the fields relevant to Type are
// meaningful; the rest are zero.
type Signal struct {
	Type SignalType

	// Port identifies which of the receiving node's ports this signal
	// arrived on (an *InPort for onNext/onComplete/onError/onSubscribe,
	// an *OutPort for request/cancel). Nil for xStart/xEvent.
	Port any

	N       uint64 // SigRequest: demand granted, N > 0
	Elem    any    // SigOnNext: the element
	Err     error  // SigOnError: the cause
	Payload any    // SigXEvent: free-form payload
	Sub     *Node  // SigOnSubscribe: the newly spawned sub-node
}

func reqSignal(port *OutPort, n uint64) Signal {
	return Signal{Type: SigRequest, Port: port, N: n}
}

func cancelSignal(port *OutPort) Signal {
	return Signal{Type: SigCancel, Port: port}
}

func nextSignal(port *InPort, elem any) Signal {
	return Signal{Type: SigOnNext, Port: port, Elem: elem}
}

func completeSignal(port *InPort) Signal {
	return Signal{Type: SigOnComplete, Port: port}
}

func errorSignal(port *InPort, err error) Signal {
	return Signal{Type: SigOnError, Port: port, Err: err}
}

func xEventSignal(payload any) Signal {
	return Signal{Type: SigXEvent, Payload: payload}
}

func onSubscribeSignal(port *InPort, sub *Node) Signal {
	return Signal{Type: SigOnSubscribe, Port: port, Sub: sub}
}
