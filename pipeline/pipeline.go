package pipeline

import (
	"context"
	stderrors "errors"

	"github.com/kbukum/streamkit/errors"
)

// Iterator provides pull-based sequential access to a stream of items.
type Iterator[T any] interface {
	// Next returns the next item. Returns (zero, false, nil) when exhausted
	// and a non-nil error when the sequence failed.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator and stops production.
	Close() error
}

// Pipeline represents a lazy, pull-based item producer.
// No work happens until items are pulled via Collect, Drain, ForEach or Iter.
type Pipeline[T any] struct {
	create func(ctx context.Context) Iterator[T]
}

// Runnable is a fully-configured pipeline ready to execute.
type Runnable struct {
	run func(ctx context.Context) error
}

// Run executes the pipeline until completion or context cancellation.
func (r *Runnable) Run(ctx context.Context) error {
	return r.run(ctx)
}

// result carries an item or error through a channel.
type result[T any] struct {
	val T
	ok  bool
	err error
}

// --- Constructors ---

// From creates a pipeline from an existing Iterator.
func From[T any](iter Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return iter
		},
	}
}

// FromSlice creates a pipeline from a slice of items.
func FromSlice[T any](items []T) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &sliceIter[T]{items: items}
		},
	}
}

// Just creates a pipeline of the given items.
func Just[T any](items ...T) *Pipeline[T] {
	return FromSlice(items)
}

// Empty creates a pipeline that completes without items.
func Empty[T any]() *Pipeline[T] {
	return FromSlice[T](nil)
}

// Fail creates a pipeline that fails immediately with err.
func Fail[T any](err error) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			return &failIter[T]{err: err}
		},
	}
}

// FromFunc creates a pipeline from a factory that produces an Iterator.
// The factory runs once per pull of the pipeline.
func FromFunc[T any](fn func(ctx context.Context) Iterator[T]) *Pipeline[T] {
	return &Pipeline[T]{create: fn}
}

// --- Terminals ---

// Drain creates a Runnable that pulls all items and sends each to sink.
func Drain[T any](p *Pipeline[T], sink func(context.Context, T) error) *Runnable {
	return &Runnable{
		run: func(ctx context.Context) error {
			iter := p.Iter(ctx)
			defer iter.Close()
			for {
				val, ok, err := iter.Next(ctx)
				if err != nil {
					return err
				}
				if !ok {
					return nil
				}
				if err := sink(ctx, val); err != nil {
					return err
				}
			}
		},
	}
}

// Collect runs the pipeline and returns all items as a slice.
// On failure the items received before the failure are returned with the error.
func Collect[T any](ctx context.Context, p *Pipeline[T]) ([]T, error) {
	iter := p.Iter(ctx)
	defer iter.Close()
	var items []T
	for {
		val, ok, err := iter.Next(ctx)
		if err != nil {
			return items, err
		}
		if !ok {
			return items, nil
		}
		items = append(items, val)
	}
}

// ForEach pulls all items and calls fn for each. Convenience wrapper around Drain.
func ForEach[T any](ctx context.Context, p *Pipeline[T], fn func(context.Context, T) error) error {
	return Drain(p, fn).Run(ctx)
}

// Iter returns the raw Iterator for this pipeline. The caller must Close() it.
// The returned iterator latches termination: after completion or failure it
// keeps reporting the same outcome and never pulls upstream again.
func (p *Pipeline[T]) Iter(ctx context.Context) Iterator[T] {
	return &latchIter[T]{source: p.create(ctx)}
}

// Classify reports err as a ProducerFailure unless it already carries a
// sequence classification or is a context error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.IsTransformFailure(err) || errors.IsProducerFailure(err) {
		return err
	}
	if isContextErr(err) {
		return err
	}
	return errors.ProducerFailed(err)
}

func isContextErr(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// --- Internal iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

type failIter[T any] struct {
	err error
}

func (it *failIter[T]) Next(_ context.Context) (T, bool, error) {
	var zero T
	return zero, false, it.err
}

func (it *failIter[T]) Close() error { return nil }

type latchIter[T any] struct {
	source Iterator[T]
	done   bool
	err    error
}

func (it *latchIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	if it.done {
		return zero, false, it.err
	}
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		it.done = true
		it.err = err
		return zero, false, err
	}
	return val, true, nil
}

func (it *latchIter[T]) Close() error { return it.source.Close() }
