package reactstream

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
)

// UserError wraps a panic or error raised by a user-supplied callback
// (e.g. a Map function). The node recovers locally: upstream cancel,
// downstream onError, node becomes terminal (spec.md §7).
type UserError struct {
	NodeID NodeID
	Kind   Kind
	cause  error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("reactstream: user error in node %s (%s): %v", e.NodeID, e.Kind, e.cause)
}

func (e *UserError) Cause() error  { return e.cause }
func (e *UserError) Unwrap() error { return e.cause }

func newUserError(n *Node, cause error) *UserError {
	return &UserError{NodeID: n.id, Kind: n.kind, cause: cause}
}

// ProtocolError flags that one of spec.md §3's invariants was observed to
// fail (demand went negative, onNext after onComplete, ...). Recovered
// exactly like UserError, but additionally flagged so a harness can
// reject the offending test run.
type ProtocolError struct {
	UserError
	Invariant string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("reactstream: protocol error in node %s (%s): invariant %s violated: %v",
		e.NodeID, e.Kind, e.Invariant, e.cause)
}

func newProtocolError(n *Node, invariant string, cause error) *ProtocolError {
	return &ProtocolError{UserError: UserError{NodeID: n.id, Kind: n.kind, cause: cause}, Invariant: invariant}
}

// ResourceError wraps a failure raised by a downstream resource signal
// (e.g. a sink rejecting a write). Same recovery as UserError, logged
// with extra context.
type ResourceError struct {
	UserError
	Context string
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("reactstream: resource error in node %s (%s) [%s]: %v",
		e.NodeID, e.Kind, e.Context, e.cause)
}

func newResourceError(n *Node, context string, cause error) *ResourceError {
	return &ResourceError{UserError: UserError{NodeID: n.id, Kind: n.kind, cause: cause}, Context: context}
}

// Fatal wraps a host-level unrecoverable condition. Never caught by a
// node's own recovery; it tears down the whole region.
type Fatal struct {
	NodeID NodeID
	Kind   Kind
	cause  error
	dump   string
}

func (e *Fatal) Error() string {
	return fmt.Sprintf("reactstream: fatal error in node %s (%s): %v\n%s", e.NodeID, e.Kind, e.cause, e.dump)
}

func (e *Fatal) Cause() error  { return e.cause }
func (e *Fatal) Unwrap() error { return e.cause }

func newFatal(n *Node, cause error, locals any) *Fatal {
	return &Fatal{NodeID: n.id, Kind: n.kind, cause: cause, dump: spew.Sdump(locals)}
}

// Cause unwraps the nearest reactstream error wrapper to its underlying
// cause, falling back to errors.Cause for transparently wrapped errors.
func Cause(err error) error {
	switch e := err.(type) {
	case *UserError:
		return e.cause
	case *ProtocolError:
		return e.cause
	case *ResourceError:
		return e.cause
	case *Fatal:
		return e.cause
	default:
		return errors.Cause(err)
	}
}

// IsProtocolError reports whether err is, or wraps, a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}
