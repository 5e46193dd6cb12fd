package pipeline

import (
	"context"
	"sync"
	"time"
)

// Timeout completes the sequence early when no item arrives within d of it
// being requested. Expiry is not an error: the upstream is cancelled and the
// consumer sees normal completion after the items already delivered.
// A non-positive d returns p unchanged.
func Timeout[T any](p *Pipeline[T], d time.Duration) *Pipeline[T] {
	if d <= 0 {
		return p
	}
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			srcCtx, cancel := context.WithCancel(ctx)
			return &timeoutIter[T]{
				source:  p.create(srcCtx),
				srcCtx:  srcCtx,
				cancel:  cancel,
				timeout: d,
				demand:  make(chan struct{}),
				results: make(chan result[T]),
			}
		},
	}
}

// timeoutIter pulls the upstream on a helper goroutine, one item per demand,
// so a stalled upstream Next can be abandoned when the timer fires. The
// helper goroutine owns the source once started and closes it on exit.
type timeoutIter[T any] struct {
	source  Iterator[T]
	srcCtx  context.Context
	cancel  context.CancelFunc
	timeout time.Duration

	once    sync.Once
	started bool
	demand  chan struct{}
	results chan result[T]
	done    bool
}

func (it *timeoutIter[T]) pull() {
	defer it.source.Close()
	for {
		select {
		case <-it.demand:
		case <-it.srcCtx.Done():
			return
		}
		val, ok, err := it.source.Next(it.srcCtx)
		select {
		case it.results <- result[T]{val: val, ok: ok, err: err}:
		case <-it.srcCtx.Done():
			return
		}
		if err != nil || !ok {
			return
		}
	}
}

func (it *timeoutIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	it.once.Do(func() {
		it.started = true
		go it.pull()
	})

	timer := time.NewTimer(it.timeout)
	defer timer.Stop()

	select {
	case it.demand <- struct{}{}:
	case <-timer.C:
		return it.expire()
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}

	select {
	case r := <-it.results:
		if r.err != nil || !r.ok {
			it.done = true
		}
		return r.val, r.ok, r.err
	case <-timer.C:
		return it.expire()
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

func (it *timeoutIter[T]) expire() (T, bool, error) {
	var zero T
	it.done = true
	it.cancel()
	return zero, false, nil
}

func (it *timeoutIter[T]) Close() error {
	it.cancel()
	if !it.started {
		return it.source.Close()
	}
	return nil
}
