package worker

import (
	"context"
	"runtime"
	"sync"
)

// Pool runs Task[T] values across a fixed number of worker goroutines and
// returns results in submission order, regardless of completion order: Run
// stores each completion in a slice at its Task.Index and returns the slice
// once every task has produced a Result.
type Pool[T any] struct {
	workers  int
	strategy OverflowStrategy
	q        *queue[T]
	onEvict  func(int)
	// sink delivers a Result for a task the queue evicted before it ever
	// ran. It is set for the duration of a single Run call; Run is not
	// meant to be called concurrently on the same Pool.
	sink func(Result[T])
}

// Option configures a Pool at construction time.
type Option[T any] func(*Pool[T])

// WithOverflowStrategy sets how Run admits a task once the queue is full.
// Default is OverflowBlock.
func WithOverflowStrategy[T any](s OverflowStrategy) Option[T] {
	return func(p *Pool[T]) { p.strategy = s }
}

// WithPriority enables priority ordering within the pending queue: tasks
// with a lower Priority value are dequeued first.
func WithPriority[T any](enabled bool) Option[T] {
	return func(p *Pool[T]) {
		if enabled {
			p.q.prioritized = true
		}
	}
}

// WithEvictionNotice registers a callback invoked with a task's Index
// whenever OverflowDropOldest discards it before it ever runs.
func WithEvictionNotice[T any](fn func(index int)) Option[T] {
	return func(p *Pool[T]) { p.onEvict = fn }
}

// New builds a Pool with workers worker goroutines (0 or negative means
// runtime.GOMAXPROCS(0)) and a pending-queue capacity of queueSize (0 or
// negative means unbounded-in-practice, sized to a large default).
func New[T any](workers, queueSize int, opts ...Option[T]) *Pool[T] {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if queueSize <= 0 {
		queueSize = 4096
	}
	p := &Pool[T]{workers: workers, strategy: OverflowBlock}
	p.q = newQueue[T](queueSize, false, func(qt *queuedTask[T]) {
		if p.onEvict != nil {
			p.onEvict(qt.task.Index)
		}
		if p.sink != nil {
			p.sink(Result[T]{Index: qt.task.Index, Cancelled: true, Err: ErrEvicted{Index: qt.task.Index}})
		}
	})
	for _, o := range opts {
		o(p)
	}
	return p
}

// Run drains tasks through the worker pool and returns one Result per task,
// ordered by Task.Index, once every task has either completed, been
// cancelled by ctx, or been evicted by the overflow strategy. A first error
// from any task's Run cancels the shared context for tasks not yet started,
// but every submitted task still yields a Result (possibly Cancelled). A
// task rejected or evicted by the overflow strategy does not cancel the rest.
func (p *Pool[T]) Run(ctx context.Context, tasks []Task[T]) ([]Result[T], error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result[T], len(tasks))
	resultCh := make(chan Result[T], len(tasks))

	p.sink = func(r Result[T]) { resultCh <- r }
	defer func() { p.sink = nil }()

	var wg sync.WaitGroup
	wg.Add(p.workers)
	for w := 0; w < p.workers; w++ {
		go func() {
			defer wg.Done()
			p.work(runCtx, resultCh)
		}()
	}

	var firstErr error
	var firstErrOnce sync.Once

	go func() {
		for _, t := range tasks {
			select {
			case <-runCtx.Done():
				resultCh <- Result[T]{Index: t.Index, Cancelled: true, Err: runCtx.Err()}
				continue
			default:
			}
			admitted := p.q.push(t, p.strategy)
			if !admitted {
				resultCh <- Result[T]{Index: t.Index, Cancelled: true, Err: ErrRejected{Index: t.Index}}
			}
		}
		p.q.closeQueue()
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	received := 0
	for received < len(tasks) {
		r := <-resultCh
		results[r.Index] = r
		received++
		_, rejected := r.Err.(ErrRejected)
		_, evicted := r.Err.(ErrEvicted)
		if r.Err != nil && !rejected && !evicted {
			firstErrOnce.Do(func() {
				firstErr = r.Err
				cancel()
			})
		}
	}

	return results, firstErr
}

func (p *Pool[T]) work(ctx context.Context, out chan<- Result[T]) {
	for {
		t, ok := p.q.pop()
		if !ok {
			return
		}
		select {
		case <-ctx.Done():
			out <- Result[T]{Index: t.Index, Cancelled: true, Err: ctx.Err()}
			continue
		default:
		}
		v, err := t.Run()
		out <- Result[T]{Index: t.Index, Value: v, Err: err}
	}
}
