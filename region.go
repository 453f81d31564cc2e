package reactstream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"
)

// RegionMode selects how a region drains its mailbox: inline on whichever
// goroutine wakes it (Sync) or handed off to an Executor (Async). A
// region's mode is fixed once at discovery time (spec.md §4.7).
type RegionMode int

const (
	ModeSync RegionMode = iota
	ModeAsync
)

// Executor runs a region's drain loop. An async region left without a
// custom Executor uses defaultAsyncExecutor (config.go), a bounded worker
// pool; goExecutor, which spawns a goroutine per wake-up, is the inner
// executor a TimeoutExecutor falls back to. A custom Executor can be
// attached to an async-boundary node via MarkAsync.
type Executor interface {
	Run(fn func())
}

type goExecutor struct{}

func (goExecutor) Run(fn func()) { go fn() }

var defaultExecutor Executor = goExecutor{}

// poolExecutor is a bounded worker-pool Executor: at most size goroutines
// run drain loops concurrently across however many regions share it,
// extras queueing on a buffered channel. Useful when many async regions
// would otherwise each spawn their own goroutine-per-wake-up.
type poolExecutor struct {
	work chan func()
}

// NewPoolExecutor starts a fixed-size worker pool and returns an Executor
// backed by it. size is typically Tunables.AsyncExecutorPoolSize.
func NewPoolExecutor(size int) Executor {
	if size < 1 {
		size = 1
	}
	p := &poolExecutor{work: make(chan func(), size*4)}
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *poolExecutor) worker() {
	for fn := range p.work {
		fn()
	}
}

func (p *poolExecutor) Run(fn func()) { p.work <- fn }

// TimeoutExecutor wraps another Executor and reports a slow drain (one
// that hasn't returned within Timeout) to OnSlow as a *ResourceError (a
// bare timeout error when Node is nil) instead of letting a stuck consumer silently stall the region forever
// (SPEC_FULL.md §A.3 item 2, adapted from aryszka-cast/node.go's
// timeoutBufferConnection). The drain itself keeps running to
// completion; OnSlow is purely diagnostic — there is no safe way to
// abort another goroutine. Node identifies the async-boundary node this
// executor was attached to via MarkAsync, so the reported error carries
// a real NodeID/Kind instead of being anonymous.
type TimeoutExecutor struct {
	Inner   Executor
	Timeout time.Duration
	Node    *Node
	OnSlow  func(err error)
}

func (e *TimeoutExecutor) Run(fn func()) {
	inner := e.Inner
	if inner == nil {
		inner = defaultExecutor
	}
	if e.Timeout <= 0 {
		inner.Run(fn)
		return
	}
	done := make(chan struct{})
	inner.Run(func() {
		defer close(done)
		fn()
	})
	go func() {
		select {
		case <-done:
		case <-time.After(e.Timeout):
			if e.OnSlow != nil {
				e.OnSlow(e.slowDrainErr())
			}
		}
	}()
}

func (e *TimeoutExecutor) slowDrainErr() error {
	cause := errors.Errorf("drain exceeded timeout of %s", e.Timeout)
	if e.Node == nil {
		return cause
	}
	return newResourceError(e.Node, "async region drain", cause)
}

type pendingEvent struct {
	node *Node
	sig  Signal
}

// Region is a maximal set of nodes that dispatch cooperatively: at most
// one signal is ever being processed by the region's members at a time.
// Nodes connected only through an async-boundary node live in separate
// regions and hand off signals through that node's mailbox instead of a
// direct call (spec.md §4.7, wake-once mailbox).
type Region struct {
	mode    RegionMode
	members []*Node

	mu       sync.Mutex
	pending  []pendingEvent
	draining bool

	executor Executor

	torndown bool
	tornErr  error

	log log15.Logger
}

func newRegion(mode RegionMode, exec Executor) *Region {
	if exec == nil {
		if mode == ModeAsync {
			exec = defaultAsyncExecutor
		} else {
			exec = defaultExecutor
		}
	}
	return &Region{mode: mode, executor: exec, log: Log.New("component", "region")}
}

func (r *Region) addMember(n *Node) {
	r.members = append(r.members, n)
}

// deliver enqueues sig for n and, if nothing is currently draining this
// region's mailbox, starts a drain — inline for a sync region, via the
// executor for an async one. This is the region's only entry point for
// signals, so at most one dispatch is ever in flight per region (I4).
func (r *Region) deliver(n *Node, sig Signal) {
	r.mu.Lock()
	if r.torndown {
		r.mu.Unlock()
		return
	}
	r.pending = append(r.pending, pendingEvent{node: n, sig: sig})
	if r.draining {
		r.mu.Unlock()
		return
	}
	r.draining = true
	r.mu.Unlock()

	if r.mode == ModeAsync {
		r.executor.Run(r.drainLoop)
	} else {
		r.drainLoop()
	}
}

func (r *Region) drainLoop() {
	for {
		r.mu.Lock()
		if len(r.pending) == 0 || r.torndown {
			r.draining = false
			r.mu.Unlock()
			return
		}
		ev := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()

		r.runSafely(ev.node, ev.sig)
	}
}

// runSafely dispatches one signal to one member, catching a re-panicked
// *Fatal (node.recoverPanic lets Fatal escape on purpose) and tearing the
// whole region down instead of just the one node (spec.md §4.7).
func (r *Region) runSafely(n *Node, sig Signal) {
	defer func() {
		if rec := recover(); rec != nil {
			f, ok := rec.(*Fatal)
			if !ok {
				f = newFatal(n, errAsError(rec), n.locals)
			}
			r.tearDown(f)
		}
	}()
	n.dispatch(sig)
}

func errAsError(v any) error {
	if err, ok := v.(error); ok {
		return err
	}
	return &panicValue{v}
}

type panicValue struct{ v any }

func (p *panicValue) Error() string { return fmt.Sprintf("%v", p.v) }

// tearDown marks every member of the region terminal with f, without
// running their ordinary per-port cancel/onError reflection: a Fatal
// means the region's invariants can no longer be trusted, so members are
// simply stopped (spec.md §4.7). Inbound ports of still-running members
// that are bound to a node in another region are cancelled first.
func (r *Region) tearDown(f *Fatal) {
	r.mu.Lock()
	if r.torndown {
		r.mu.Unlock()
		return
	}
	r.torndown = true
	r.tornErr = f
	members := r.members
	r.pending = nil
	r.draining = false
	r.mu.Unlock()

	r.log.Error("region torn down", "err", f)
	for _, n := range members {
		if !n.terminal {
			for _, p := range n.ins {
				if p.peer != nil && p.peer.owner.region != r {
					p.Cancel()
				}
			}
		}
		n.markTerminal(f)
	}
}

// Start dispatches SigXStart once to every member, in membership order;
// states with no start-time work (push sources, sub-sources, Map) ignore
// it.
func (r *Region) Start() {
	for _, n := range r.members {
		r.deliver(n, Signal{Type: SigXStart})
	}
}

// discoverRegions partitions nodes into regions by connectivity, treating
// any node flagged asyncBoundary as its own singleton async region (a
// simplifying reading of spec.md §4.7: async boundaries are themselves
// the hand-off point, so they never share a region with a neighbor).
func discoverRegions(nodes []*Node) []*Region {
	visited := make(map[*Node]bool, len(nodes))
	var regions []*Region

	for _, n := range nodes {
		if visited[n] {
			continue
		}
		if n.asyncBoundary {
			visited[n] = true
			r := newRegion(ModeAsync, n.customExecutor)
			n.seal(r)
			regions = append(regions, r)
			continue
		}

		comp := collectComponent(n, visited)
		r := newRegion(ModeSync, nil)
		for _, m := range comp {
			m.seal(r)
		}
		regions = append(regions, r)
	}
	return regions
}

// collectComponent BFS-walks the connected, non-async-boundary component
// containing start, stopping at (but not through) async-boundary nodes,
// which are never absorbed into a neighbor's region.
func collectComponent(start *Node, visited map[*Node]bool) []*Node {
	queue := []*Node{start}
	visited[start] = true
	var comp []*Node

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		comp = append(comp, n)

		for _, neighbor := range neighbors(n) {
			if visited[neighbor] {
				continue
			}
			if neighbor.asyncBoundary {
				continue
			}
			visited[neighbor] = true
			queue = append(queue, neighbor)
		}
	}
	return comp
}

func neighbors(n *Node) []*Node {
	var out []*Node
	for _, p := range n.ins {
		if p.peer != nil {
			out = append(out, p.peer.owner)
		}
	}
	for _, p := range n.outs {
		if p.peer != nil {
			out = append(out, p.peer.owner)
		}
	}
	return out
}

// reachable collects every node transitively connected to roots via bound
// ports, used by RunGraph to discover the full node set to seal.
func reachable(roots []*Node) []*Node {
	visited := make(map[*Node]bool)
	queue := append([]*Node{}, roots...)
	for _, n := range roots {
		visited[n] = true
	}
	var all []*Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		all = append(all, n)
		for _, neighbor := range neighbors(n) {
			if visited[neighbor] {
				continue
			}
			visited[neighbor] = true
			queue = append(queue, neighbor)
		}
	}
	return all
}

// RunHandle observes a graph run started by RunGraph: it completes when
// every root node the caller asked to watch has gone terminal.
type RunHandle struct {
	mu       sync.Mutex
	pending  int
	firstErr error
	done     chan struct{}
}

func (h *RunHandle) onRootTerminal(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil && h.firstErr == nil {
		h.firstErr = err
	}
	h.pending--
	if h.pending == 0 {
		close(h.done)
	}
}

// Wait blocks until every watched root has reached a terminal state, or
// ctx is done. It returns the first non-nil terminal error observed
// among the roots, if any.
func (h *RunHandle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		h.mu.Lock()
		defer h.mu.Unlock()
		return h.firstErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether every watched root has already gone terminal,
// without blocking.
func (h *RunHandle) Ready() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// RunGraph discovers regions across the full graph reachable from roots,
// seals every node into its region, starts every region, and returns a
// handle that completes once all of roots have gone terminal (spec.md
// §6 item 3, supplemented per SPEC_FULL.md §A.3.1 — the base spec leaves
// "how a caller observes completion" unspecified).
func RunGraph(roots ...*Node) *RunHandle {
	nodes := reachable(roots)
	h := &RunHandle{pending: len(roots), done: make(chan struct{})}
	if len(roots) == 0 {
		close(h.done)
		return h
	}

	for _, n := range roots {
		n.onTerminal = h.onRootTerminal
	}

	regions := discoverRegions(nodes)
	for _, r := range regions {
		r.Start()
	}
	return h
}

// sealStandalone seals a single detached node (no bound peers yet, or
// peers that will be bound after the fact, e.g. PrefixAndTail's tail)
// into its own fresh synchronous region. Used for proxy nodes that are
// spawned mid-run rather than discovered from a caller's RunGraph roots.
func sealStandalone(n *Node) {
	r := newRegion(ModeSync, nil)
	n.seal(r)
}

// sealAndStartSubgraph discovers regions across everything reachable
// from root (a sub-source subgraph materialized mid-run by FlattenConcat
// or a similar operator, per spec.md §4.4's "seal its sub-region") and
// starts each of them, mirroring RunGraph but without an external
// RunHandle — completion of a mid-run subgraph is observed through the
// operator's own onSubscribe/onComplete signal handling instead.
func sealAndStartSubgraph(root *Node) {
	nodes := reachable([]*Node{root})
	for _, r := range discoverRegions(nodes) {
		r.Start()
	}
}

// MarkAsync flags n as an async boundary: at discovery time it becomes
// the sole member of its own async region, and signals crossing into or
// out of it hand off through the region mailbox instead of running
// inline with a neighbor. An optional custom Executor replaces the
// default worker pool (defaultAsyncExecutor).
func MarkAsync(n *Node, exec Executor) {
	n.asyncBoundary = true
	if te, ok := exec.(*TimeoutExecutor); ok && te.Node == nil {
		te.Node = n
	}
	n.customExecutor = exec
}
