package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreservesSubmissionOrderDespiteCompletionOrder(t *testing.T) {
	p := New[int](4, 16)
	tasks := make([]Task[int], 8)
	for i := range tasks {
		i := i
		delay := time.Duration(len(tasks)-i) * time.Millisecond
		tasks[i] = Task[int]{Index: i, Run: func() (int, error) {
			time.Sleep(delay)
			return i * 10, nil
		}}
	}

	results, err := p.Run(context.Background(), tasks)
	require.NoError(t, err)
	require.Len(t, results, len(tasks))
	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, i*10, r.Value)
		assert.False(t, r.Cancelled)
	}
}

func TestRunReturnsFirstErrorWithAResultPerTask(t *testing.T) {
	p := New[int](2, 16)
	boom := errors.New("boom")
	tasks := []Task[int]{
		{Index: 0, Run: func() (int, error) { return 0, boom }},
		{Index: 1, Run: func() (int, error) {
			time.Sleep(50 * time.Millisecond)
			return 1, nil
		}},
	}

	results, err := p.Run(context.Background(), tasks)
	require.Error(t, err)
	assert.Equal(t, boom, err)
	require.Len(t, results, 2)
}

func TestOverflowRejectFailsFastWhenQueueFull(t *testing.T) {
	block := make(chan struct{})
	p := New[int](1, 1, WithOverflowStrategy[int](OverflowReject))
	tasks := []Task[int]{
		{Index: 0, Run: func() (int, error) { <-block; return 0, nil }},
		{Index: 1, Run: func() (int, error) { return 1, nil }},
		{Index: 2, Run: func() (int, error) { return 2, nil }},
		{Index: 3, Run: func() (int, error) { return 3, nil }},
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		close(block)
	}()

	results, _ := p.Run(context.Background(), tasks)
	require.Len(t, results, 4)
	rejected := 0
	for _, r := range results {
		var rejErr ErrRejected
		if errors.As(r.Err, &rejErr) {
			rejected++
		}
	}
	// One worker plus a single queue slot can hold at most 2 of the 4
	// submitted tasks while task 0 blocks; the rest must be rejected
	// outright by OverflowReject, regardless of scheduling order.
	assert.GreaterOrEqual(t, rejected, 2)
}

func TestOverflowDropOldestInvokesEvictionNotice(t *testing.T) {
	var evicted []int
	p := New[int](1, 1,
		WithOverflowStrategy[int](OverflowDropOldest),
		WithEvictionNotice[int](func(index int) { evicted = append(evicted, index) }),
	)
	block := make(chan struct{})
	tasks := []Task[int]{
		{Index: 0, Run: func() (int, error) { <-block; return 0, nil }},
		{Index: 1, Run: func() (int, error) { return 1, nil }},
		{Index: 2, Run: func() (int, error) { return 2, nil }},
	}
	go func() {
		time.Sleep(30 * time.Millisecond)
		close(block)
	}()

	results, _ := p.Run(context.Background(), tasks)
	require.Len(t, results, 3)
	// One worker plus a single queue slot can hold at most 2 of the 3
	// submitted tasks while task 0 blocks; at least one must be evicted by
	// OverflowDropOldest, and WithEvictionNotice must be told about it.
	require.NotEmpty(t, evicted, "WithEvictionNotice must fire when drop-oldest discards a queued task")
	for _, idx := range evicted {
		var evErr ErrEvicted
		assert.ErrorAs(t, results[idx].Err, &evErr)
		assert.True(t, results[idx].Cancelled)
	}
}

func TestPriorityOrderingDrainsLowestPriorityFirst(t *testing.T) {
	p := New[int](1, 16, WithPriority[int](true))
	var order []int
	start := make(chan struct{})
	tasks := []Task[int]{
		{Index: 0, Priority: 5, Run: func() (int, error) { <-start; order = append(order, 5); return 5, nil }},
		{Index: 1, Priority: 1, Run: func() (int, error) { order = append(order, 1); return 1, nil }},
		{Index: 2, Priority: 3, Run: func() (int, error) { order = append(order, 3); return 3, nil }},
	}
	go func() { time.Sleep(10 * time.Millisecond); close(start) }()

	_, err := p.Run(context.Background(), tasks)
	require.NoError(t, err)
	// Task 1 is queued before task 2 and has the lower Priority value, so it
	// runs first whichever task the single worker happened to pick up first.
	require.Len(t, order, 3)
	pos := map[int]int{}
	for i, v := range order {
		pos[v] = i
	}
	assert.Less(t, pos[1], pos[3])
}
