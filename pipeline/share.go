package pipeline

import (
	"context"
	"sync"

	"github.com/kbukum/streamkit/logger"
)

// Subscriber is a passenger consumer of a Shared pipeline.
// It runs synchronously on the goroutine that pulled the item, so it must
// be quick and must not pull from the same Shared.
type Subscriber[T any] func(ctx context.Context, item T) error

// Shared multicasts one upstream run to any number of consumers.
//
// The upstream is evaluated at most once. Every item it produces is cached,
// then handed to each registered Subscriber in registration order before the
// pulling view receives it and before the next upstream item is requested.
// Views created with Pipeline replay the cache and then continue live.
// Subscriber errors are logged and otherwise ignored: passengers never decide
// the outcome of the consumer that drives the run.
type Shared[T any] struct {
	source *Pipeline[T]
	log    *logger.Logger

	// pull is a one-slot token held by the view currently pulling upstream.
	// The holder alone touches iter, so mu is never held across a pull.
	pull chan struct{}

	mu          sync.Mutex
	iter        Iterator[T]
	cancel      context.CancelFunc
	closed      bool
	cache       []T
	done        bool
	err         error
	subscribers []Subscriber[T]
	views       int
}

// Share wraps p into a Shared multicast. Nothing is pulled until a view is.
func Share[T any](p *Pipeline[T]) *Shared[T] {
	return &Shared[T]{
		source: p,
		log:    logger.WithComponent("multicast"),
		pull:   make(chan struct{}, 1),
	}
}

// Subscribe attaches a passenger. Items already produced are replayed to it
// immediately, in order.
func (s *Shared[T]) Subscribe(ctx context.Context, fn Subscriber[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.cache {
		s.deliver(ctx, fn, item)
	}
	s.subscribers = append(s.subscribers, fn)
}

// Pipeline returns a view over the shared run.
func (s *Shared[T]) Pipeline() *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] {
			s.mu.Lock()
			s.views++
			s.mu.Unlock()
			return &sharedIter[T]{shared: s}
		},
	}
}

// Items returns a copy of the items produced so far.
func (s *Shared[T]) Items() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.cache))
	copy(out, s.cache)
	return out
}

// Done reports whether the upstream run has terminated, and how.
func (s *Shared[T]) Done() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done, s.err
}

// next returns the item at index, pulling upstream when the cache is
// exhausted. Cancelling ctx ends the wait for this view only.
func (s *Shared[T]) next(ctx context.Context, index int) (T, bool, error) {
	var zero T
	for {
		if val, ok, settled, err := s.cached(index); settled {
			return val, ok, err
		}
		select {
		case s.pull <- struct{}{}:
		case <-ctx.Done():
			return zero, false, ctx.Err()
		}
		val, ok, settled, err := s.advance(ctx, index)
		<-s.pull
		if settled {
			return val, ok, err
		}
	}
}

func (s *Shared[T]) cached(index int) (val T, ok, settled bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case index < len(s.cache):
		return s.cache[index], true, true, nil
	case s.done:
		return val, false, true, s.err
	}
	return val, false, false, nil
}

// advance pulls one item upstream. The caller holds the pull token.
// settled is false when another view already moved the run past index.
func (s *Shared[T]) advance(ctx context.Context, index int) (val T, ok, settled bool, err error) {
	s.mu.Lock()
	if index < len(s.cache) || s.done {
		s.mu.Unlock()
		return val, false, false, nil
	}
	if s.iter == nil {
		// The run outlives the request that started it; only release cancels it.
		runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		s.cancel = cancel
		s.iter = s.source.create(runCtx)
	}
	iter := s.iter
	s.mu.Unlock()

	item, more, pullErr := iter.Next(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		// The last view went away while this pull was in flight.
		s.closeUpstream()
		return val, false, true, s.err
	}
	if pullErr != nil && ctx.Err() != nil && isContextErr(pullErr) {
		return val, false, true, pullErr
	}
	if pullErr != nil || !more {
		s.terminate(pullErr)
		s.closeUpstream()
		return val, false, true, pullErr
	}

	s.cache = append(s.cache, item)
	for _, fn := range s.subscribers {
		s.deliver(ctx, fn, item)
	}
	return item, true, true, nil
}

func (s *Shared[T]) deliver(ctx context.Context, fn Subscriber[T], item T) {
	if err := fn(ctx, item); err != nil {
		s.log.Warn("Subscriber failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// terminate records the outcome and cancels the run. Must hold mu.
func (s *Shared[T]) terminate(err error) {
	s.done = true
	s.err = err
	if s.cancel != nil {
		s.cancel()
	}
}

// closeUpstream closes the upstream iterator once. Must hold mu and the
// pull token.
func (s *Shared[T]) closeUpstream() {
	if s.iter == nil || s.closed {
		return
	}
	s.closed = true
	if err := s.iter.Close(); err != nil {
		s.log.Debug("Upstream close failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// release drops one view; the upstream is stopped once no view remains.
// An in-flight pull is left to close the upstream itself.
func (s *Shared[T]) release() {
	s.mu.Lock()
	s.views--
	stop := s.views <= 0 && !s.done && s.iter != nil
	if stop {
		s.terminate(context.Canceled)
	}
	s.mu.Unlock()
	if !stop {
		return
	}
	select {
	case s.pull <- struct{}{}:
		s.mu.Lock()
		s.closeUpstream()
		s.mu.Unlock()
		<-s.pull
	default:
	}
}

type sharedIter[T any] struct {
	shared *Shared[T]
	index  int
	closed bool
}

func (it *sharedIter[T]) Next(ctx context.Context) (T, bool, error) {
	val, ok, err := it.shared.next(ctx, it.index)
	if ok {
		it.index++
	}
	return val, ok, err
}

func (it *sharedIter[T]) Close() error {
	if !it.closed {
		it.closed = true
		it.shared.release()
	}
	return nil
}
