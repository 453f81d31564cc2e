package reactstream

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMPSCQueueFIFO(t *testing.T) {
	q := newMPSCQueue(2, 8)
	require.True(t, q.offer(1))
	require.True(t, q.offer(2))
	require.True(t, q.offer(3))

	v, ok := q.dequeue()
	require.True(t, ok)
	require.Equal(t, 1, v)

	v, ok = q.dequeue()
	require.True(t, ok)
	require.Equal(t, 2, v)

	v, ok = q.dequeue()
	require.True(t, ok)
	require.Equal(t, 3, v)

	_, ok = q.dequeue()
	require.False(t, ok)
}

// TestMPSCQueueGrowsThenRejects covers spec.md §4.6: effective capacity
// grows in doublings up to maxCapacity, then offer starts returning
// false rather than dropping silently.
func TestMPSCQueueGrowsThenRejects(t *testing.T) {
	q := newMPSCQueue(2, 4)
	accepted := 0
	for i := 0; i < 6; i++ {
		if q.offer(i) {
			accepted++
		}
	}
	require.Equal(t, 4, accepted)
	require.Equal(t, 4, q.size())
}

func TestMPSCQueueDequeueFreesCapacity(t *testing.T) {
	q := newMPSCQueue(2, 4)
	for i := 0; i < 4; i++ {
		require.True(t, q.offer(i))
	}
	require.False(t, q.offer(100))

	_, ok := q.dequeue()
	require.True(t, ok)

	require.True(t, q.offer(100))
}
