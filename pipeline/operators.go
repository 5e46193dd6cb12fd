package pipeline

import (
	"context"

	"github.com/kbukum/streamkit/errors"
)

// Map is the item transformer: fn runs on each item as it is pulled.
// A failing fn ends the sequence with a TRANSFORM_FAILED error and nothing
// further is pulled from p.
func Map[I, O any](p *Pipeline[I], fn func(context.Context, I) (O, error)) *Pipeline[O] {
	return through(p, fn, func(err error) error { return errors.TransformFailed(err) })
}

// MapValue is Map for fn that cannot fail.
func MapValue[I, O any](p *Pipeline[I], fn func(I) O) *Pipeline[O] {
	return Map(p, func(_ context.Context, v I) (O, error) {
		return fn(v), nil
	})
}

// Tap passes items through unchanged after handing each to fn.
// An error from fn ends the sequence as is.
func Tap[T any](p *Pipeline[T], fn func(context.Context, T) error) *Pipeline[T] {
	return through(p, func(ctx context.Context, v T) (T, error) {
		return v, fn(ctx, v)
	}, nil)
}

// Concat yields every item of each pipeline in turn. A pipeline is only
// started once the one before it has completed.
func Concat[T any](pipelines ...*Pipeline[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			return &concatIter[T]{ctx: ctx, rest: pipelines}
		},
	}
}

func through[I, O any](p *Pipeline[I], step func(context.Context, I) (O, error), wrap func(error) error) *Pipeline[O] {
	return &Pipeline[O]{
		create: func(ctx context.Context) Iterator[O] {
			return &stepIter[I, O]{source: p.create(ctx), step: step, wrap: wrap}
		},
	}
}

type stepIter[I, O any] struct {
	source Iterator[I]
	step   func(context.Context, I) (O, error)
	wrap   func(error) error
}

func (it *stepIter[I, O]) Next(ctx context.Context) (O, bool, error) {
	var zero O
	in, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	out, err := it.step(ctx, in)
	if err != nil {
		if it.wrap != nil {
			err = it.wrap(err)
		}
		return zero, false, err
	}
	return out, true, nil
}

func (it *stepIter[I, O]) Close() error { return it.source.Close() }

type concatIter[T any] struct {
	ctx  context.Context
	cur  Iterator[T]
	rest []*Pipeline[T]
}

func (it *concatIter[T]) Next(ctx context.Context) (T, bool, error) {
	for {
		if it.cur == nil {
			if len(it.rest) == 0 {
				var zero T
				return zero, false, nil
			}
			it.cur, it.rest = it.rest[0].create(it.ctx), it.rest[1:]
		}
		v, ok, err := it.cur.Next(ctx)
		if err != nil || ok {
			return v, ok, err
		}
		if err := it.cur.Close(); err != nil {
			var zero T
			return zero, false, err
		}
		it.cur = nil
	}
}

func (it *concatIter[T]) Close() error {
	it.rest = nil
	if it.cur == nil {
		return nil
	}
	err := it.cur.Close()
	it.cur = nil
	return err
}
