package reactstream

import "sync/atomic"

// mpscQueue is a bounded, lock-free multi-producer/single-consumer queue
// backed by a power-of-two ring buffer allocated once at maxCapacity.
// "Growth" from initialCapacity to maxCapacity (spec.md §4.6) is modeled
// as raising an effective-capacity ceiling below the physical buffer
// size, rather than reallocating — reallocating a ring a concurrent
// producer might be mid-claim on is not lock-free.
type mpscQueue struct {
	buf     []mpscSlot
	mask    uint64
	maxCap  uint64
	effCap  atomic.Uint64
	head    atomic.Uint64
	tail    atomic.Uint64
}

type mpscSlot struct {
	ready atomic.Uint32
	val   any
}

func nextPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}

// newMPSCQueue builds a queue whose effective capacity starts at
// initialCapacity (>=2) rounded up to a power of two, and may grow, a doubling at a time, up to
// maxCapacity (>=4, rounded up to a power of two strictly greater than
// initialCapacity), per spec.md §4.6.
func newMPSCQueue(initialCapacity, maxCapacity uint64) *mpscQueue {
	if initialCapacity < 2 {
		initialCapacity = 2
	}
	if maxCapacity < 4 {
		maxCapacity = 4
	}
	maxCapacity = nextPow2(maxCapacity)
	if maxCapacity <= initialCapacity {
		maxCapacity = nextPow2(initialCapacity + 1)
	}
	q := &mpscQueue{
		buf:    make([]mpscSlot, maxCapacity),
		mask:   maxCapacity - 1,
		maxCap: maxCapacity,
	}
	q.effCap.Store(nextPow2(initialCapacity))
	return q
}

// offer attempts to enqueue elem. It returns false only once the queue
// has actually reached maxCapacity and is full — never as a result of a
// growth step, per the "rejected, never dropped silently" contract.
func (q *mpscQueue) offer(elem any) bool {
	for {
		head := q.head.Load()
		tail := q.tail.Load()
		eff := q.effCap.Load()

		if tail-head >= eff {
			if eff < q.maxCap {
				grown := eff * 2
				if grown > q.maxCap {
					grown = q.maxCap
				}
				q.effCap.CompareAndSwap(eff, grown)
				continue
			}
			return false
		}

		if q.tail.CompareAndSwap(tail, tail+1) {
			slot := &q.buf[tail&q.mask]
			slot.val = elem
			slot.ready.Store(1)
			return true
		}
	}
}

// offerMany enqueues greedily up to the first rejection and returns the
// count actually enqueued (spec.md §4.6).
func (q *mpscQueue) offerMany(elems []any) int {
	n := 0
	for _, e := range elems {
		if !q.offer(e) {
			break
		}
		n++
	}
	return n
}

// dequeue removes and returns the oldest element, if any. Only the
// region that owns this push-source's node may call dequeue; the single-
// consumer half of the contract is enforced by callers, not by the
// queue itself.
func (q *mpscQueue) dequeue() (any, bool) {
	head := q.head.Load()
	tail := q.tail.Load()
	if head >= tail {
		return nil, false
	}
	slot := &q.buf[head&q.mask]
	for slot.ready.Load() == 0 {
		// A producer has claimed this slot (advanced tail) but not yet
		// published its value; this window is always brief.
	}
	val := slot.val
	slot.val = nil
	slot.ready.Store(0)
	q.head.Store(head + 1)
	return val, true
}

// size is an approximate, non-synchronized observer (spec.md §4.6).
func (q *mpscQueue) size() int {
	tail := q.tail.Load()
	head := q.head.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// acceptsNext is an approximate, non-synchronized observer: true unless
// the queue looks full at its current effective capacity.
func (q *mpscQueue) acceptsNext() bool {
	return uint64(q.size()) < q.effCap.Load()
}
