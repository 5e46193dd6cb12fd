package pipeline

import (
	"context"
	"sync"
)

// Emitter hands items from an asynchronous producer to the pipeline consumer.
type Emitter[T any] interface {
	// Emit blocks until the consumer asks for the item or ctx is done.
	// A non-nil error means the consumer went away and production must stop.
	Emit(ctx context.Context, item T) error
}

// Create builds a pipeline from a producer function that runs on its own
// goroutine once the first item is requested. The producer completes the
// sequence by returning nil and fails it by returning an error. Each Emit
// waits for demand, so a slow consumer slows the producer down. Closing the
// iterator cancels the producer's context.
func Create[T any](produce func(ctx context.Context, emit Emitter[T]) error) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			prodCtx, cancel := context.WithCancel(ctx)
			ch := make(chan result[T])
			var once sync.Once
			start := func() {
				once.Do(func() {
					go func() {
						defer close(ch)
						if err := produce(prodCtx, &chanEmitter[T]{ch: ch}); err != nil {
							select {
							case ch <- result[T]{err: err}:
							case <-prodCtx.Done():
							}
						}
					}()
				})
			}
			return &channelIter[T]{
				ch:    ch,
				start: start,
				closer: func() error {
					cancel()
					return nil
				},
			}
		},
	}
}

type chanEmitter[T any] struct {
	ch chan<- result[T]
}

func (e *chanEmitter[T]) Emit(ctx context.Context, item T) error {
	select {
	case e.ch <- result[T]{val: item, ok: true}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Buffer adds a bounded channel between pipeline stages so the producer runs
// on its own goroutine, at most size items ahead of the consumer.
func Buffer[T any](p *Pipeline[T], size int) *Pipeline[T] {
	if size <= 0 {
		size = 1
	}
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			bufCtx, cancel := context.WithCancel(ctx)
			source := p.create(bufCtx)
			ch := make(chan result[T], size)

			go func() {
				defer close(ch)
				defer source.Close()
				for {
					val, ok, err := source.Next(bufCtx)
					if err != nil {
						select {
						case ch <- result[T]{err: err}:
						case <-bufCtx.Done():
						}
						return
					}
					if !ok {
						return
					}
					select {
					case ch <- result[T]{val: val, ok: true}:
					case <-bufCtx.Done():
						return
					}
				}
			}()

			return &channelIter[T]{
				ch: ch,
				closer: func() error {
					cancel()
					return nil
				},
			}
		},
	}
}

// channelIter reads items from a channel fed by a producer goroutine.
type channelIter[T any] struct {
	ch     <-chan result[T]
	start  func()
	closer func() error
}

func (it *channelIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.start != nil {
		it.start()
	}
	select {
	case r, open := <-it.ch:
		if !open {
			// A producer that stopped because the consumer went away did not complete.
			var zero T
			return zero, false, ctx.Err()
		}
		return r.val, r.ok, r.err
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	}
}

func (it *channelIter[T]) Close() error {
	if it.closer != nil {
		return it.closer()
	}
	return nil
}
