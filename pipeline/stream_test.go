package pipeline

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --- Create ---

func TestCreate_EmitsAndCompletes(t *testing.T) {
	p := Create(func(ctx context.Context, emit Emitter[string]) error {
		for _, w := range []string{"foo", "bar"} {
			if err := emit.Emit(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
	got, err := Collect(context.Background(), p)
	if err != nil {
		t.Fatal(err)
	}
	if !strSliceEqual(got, []string{"foo", "bar"}) {
		t.Errorf("got %v", got)
	}
}

func TestCreate_ProducerFailure(t *testing.T) {
	boom := stderrors.New("boom")
	p := Create(func(ctx context.Context, emit Emitter[int]) error {
		if err := emit.Emit(ctx, 1); err != nil {
			return err
		}
		return boom
	})
	got, err := Collect(context.Background(), p)
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
}

func TestCreate_LazyStart(t *testing.T) {
	var started atomic.Bool
	p := Create(func(_ context.Context, _ Emitter[int]) error {
		started.Store(true)
		return nil
	})
	iter := p.Iter(context.Background())
	time.Sleep(10 * time.Millisecond)
	if started.Load() {
		t.Error("producer should not start before the first pull")
	}
	_ = iter.Close()
}

func TestCreate_DemandDriven(t *testing.T) {
	var emitted atomic.Int32
	p := Create(func(ctx context.Context, emit Emitter[int]) error {
		for i := 0; i < 100; i++ {
			if err := emit.Emit(ctx, i); err != nil {
				return err
			}
			emitted.Add(1)
		}
		return nil
	})

	iter := p.Iter(context.Background())
	defer iter.Close()
	if _, _, err := iter.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	// One item handed over, the producer is parked on the second Emit.
	if n := emitted.Load(); n > 1 {
		t.Errorf("producer ran ahead of demand: %d emitted", n)
	}
}

func TestCreate_CloseCancelsProducer(t *testing.T) {
	stopped := make(chan error, 1)
	p := Create(func(ctx context.Context, emit Emitter[int]) error {
		for i := 0; ; i++ {
			if err := emit.Emit(ctx, i); err != nil {
				stopped <- err
				return err
			}
		}
	})

	iter := p.Iter(context.Background())
	if _, _, err := iter.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = iter.Close()

	select {
	case err := <-stopped:
		if !stderrors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("producer was not stopped after Close")
	}
}

func TestCreate_ConsumerContextCancelled(t *testing.T) {
	p := Create(func(ctx context.Context, _ Emitter[int]) error {
		<-ctx.Done()
		return ctx.Err()
	})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := Collect(ctx, p)
	if !stderrors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

// --- Buffer ---

func TestBuffer(t *testing.T) {
	got, err := Collect(context.Background(), Buffer(Just(1, 2, 3, 4, 5), 2))
	if err != nil {
		t.Fatal(err)
	}
	if !intSliceEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Errorf("got %v", got)
	}
}

func TestBuffer_PropagatesError(t *testing.T) {
	boom := stderrors.New("boom")
	got, err := Collect(context.Background(), Buffer(Concat(Just(1), Fail[int](boom)), 0))
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if !intSliceEqual(got, []int{1}) {
		t.Errorf("expected [1], got %v", got)
	}
}

// --- Timeout ---

func stallingProducer(items ...string) *Pipeline[string] {
	return Create(func(ctx context.Context, emit Emitter[string]) error {
		for _, s := range items {
			if err := emit.Emit(ctx, s); err != nil {
				return err
			}
		}
		<-ctx.Done()
		return ctx.Err()
	})
}

func TestTimeout_DegradesToCompletion(t *testing.T) {
	start := time.Now()
	got, err := Collect(context.Background(), Timeout(stallingProducer("foo"), 50*time.Millisecond))
	if err != nil {
		t.Fatalf("timeout must complete normally, got %v", err)
	}
	if !strSliceEqual(got, []string{"foo"}) {
		t.Errorf("expected [foo], got %v", got)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestTimeout_StalledBeforeFirstItem(t *testing.T) {
	got, err := Collect(context.Background(), Timeout(stallingProducer(), 20*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("expected no items, got %v", got)
	}
}

func TestTimeout_CancelsUpstream(t *testing.T) {
	cancelled := make(chan struct{})
	p := Create(func(ctx context.Context, emit Emitter[string]) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})
	if _, err := Collect(context.Background(), Timeout(p, 10*time.Millisecond)); err != nil {
		t.Fatal(err)
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("stalled producer was not cancelled")
	}
}

func TestTimeout_FastProducerUnaffected(t *testing.T) {
	got, err := Collect(context.Background(), Timeout(Just("a", "b", "c"), time.Second))
	if err != nil {
		t.Fatal(err)
	}
	if !strSliceEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("got %v", got)
	}
}

func TestTimeout_PropagatesFailure(t *testing.T) {
	boom := stderrors.New("boom")
	_, err := Collect(context.Background(), Timeout(Fail[int](boom), time.Second))
	if !stderrors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestTimeout_Disabled(t *testing.T) {
	p := Just(1)
	if Timeout(p, 0) != p {
		t.Error("non-positive timeout should return the pipeline unchanged")
	}
}

// --- Share ---

func TestShare_SingleEvaluationTwoConsumers(t *testing.T) {
	var evaluations atomic.Int32
	src := FromFunc(func(_ context.Context) Iterator[string] {
		evaluations.Add(1)
		return &sliceIter[string]{items: []string{"one", "two"}}
	})

	shared := Share(src)
	var audit []string
	shared.Subscribe(context.Background(), func(_ context.Context, s string) error {
		audit = append(audit, s)
		return nil
	})

	got, err := Collect(context.Background(), shared.Pipeline())
	if err != nil {
		t.Fatal(err)
	}
	if !strSliceEqual(got, []string{"one", "two"}) {
		t.Errorf("response got %v", got)
	}
	if !strSliceEqual(audit, []string{"one", "two"}) {
		t.Errorf("audit got %v", audit)
	}

	// A second view replays the cache without re-evaluating.
	again, err := Collect(context.Background(), shared.Pipeline())
	if err != nil {
		t.Fatal(err)
	}
	if !strSliceEqual(again, []string{"one", "two"}) {
		t.Errorf("replay got %v", again)
	}
	if evaluations.Load() != 1 {
		t.Errorf("expected exactly one evaluation, got %d", evaluations.Load())
	}
}

func TestShare_SubscriberSeesItemBeforeConsumer(t *testing.T) {
	shared := Share(Just(1, 2, 3))
	var audited []int
	shared.Subscribe(context.Background(), func(_ context.Context, n int) error {
		audited = append(audited, n)
		return nil
	})

	iter := shared.Pipeline().Iter(context.Background())
	defer iter.Close()
	for i := 1; i <= 3; i++ {
		v, ok, err := iter.Next(context.Background())
		if err != nil || !ok {
			t.Fatalf("unexpected end: %v", err)
		}
		if len(audited) != i || audited[i-1] != v {
			t.Fatalf("subscriber not ahead of consumer at item %d: %v", v, audited)
		}
	}
}

func TestShare_LateSubscriberReplay(t *testing.T) {
	shared := Share(Just("a", "b", "c"))
	iter := shared.Pipeline().Iter(context.Background())
	defer iter.Close()
	_, _, _ = iter.Next(context.Background())
	_, _, _ = iter.Next(context.Background())

	var seen []string
	shared.Subscribe(context.Background(), func(_ context.Context, s string) error {
		seen = append(seen, s)
		return nil
	})
	if !strSliceEqual(seen, []string{"a", "b"}) {
		t.Fatalf("expected replay [a b], got %v", seen)
	}

	_, _, _ = iter.Next(context.Background())
	if !strSliceEqual(seen, []string{"a", "b", "c"}) {
		t.Errorf("expected live delivery of c, got %v", seen)
	}
}

func TestShare_SubscriberErrorDoesNotFailConsumer(t *testing.T) {
	shared := Share(Just(1, 2))
	shared.Subscribe(context.Background(), func(_ context.Context, _ int) error {
		return stderrors.New("audit down")
	})
	got, err := Collect(context.Background(), shared.Pipeline())
	if err != nil {
		t.Fatalf("passenger error leaked into consumer: %v", err)
	}
	if !intSliceEqual(got, []int{1, 2}) {
		t.Errorf("got %v", got)
	}
}

func TestShare_FailureCachedForAllViews(t *testing.T) {
	boom := stderrors.New("boom")
	shared := Share(Concat(Just(1), Fail[int](boom)))

	got, err := Collect(context.Background(), shared.Pipeline())
	if !stderrors.Is(err, boom) || !intSliceEqual(got, []int{1}) {
		t.Fatalf("first view: got %v, %v", got, err)
	}
	got, err = Collect(context.Background(), shared.Pipeline())
	if !stderrors.Is(err, boom) || !intSliceEqual(got, []int{1}) {
		t.Fatalf("second view: got %v, %v", got, err)
	}
	done, derr := shared.Done()
	if !done || !stderrors.Is(derr, boom) {
		t.Errorf("expected done with boom, got %v %v", done, derr)
	}
}

func TestShare_LastViewCloseStopsUpstream(t *testing.T) {
	stopped := make(chan struct{})
	src := Create(func(ctx context.Context, emit Emitter[int]) error {
		defer close(stopped)
		for i := 0; ; i++ {
			if err := emit.Emit(ctx, i); err != nil {
				return err
			}
		}
	})
	shared := Share(src)
	iter := shared.Pipeline().Iter(context.Background())
	if _, _, err := iter.Next(context.Background()); err != nil {
		t.Fatal(err)
	}
	_ = iter.Close()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("upstream kept producing after the last view closed")
	}
	if items := shared.Items(); !intSliceEqual(items, []int{0}) {
		t.Errorf("expected cached [0], got %v", items)
	}
}

func TestShare_ConcurrentViewsSeeSameOrder(t *testing.T) {
	shared := Share(Just(1, 2, 3, 4, 5, 6, 7, 8))
	var wg sync.WaitGroup
	results := make([][]int, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = Collect(context.Background(), shared.Pipeline())
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if !intSliceEqual(r, []int{1, 2, 3, 4, 5, 6, 7, 8}) {
			t.Errorf("view %d got %v", i, r)
		}
	}
}

func TestShare_CancelledViewLeavesOthersRunning(t *testing.T) {
	second := make(chan struct{})
	shared := Share(Create(func(ctx context.Context, emit Emitter[string]) error {
		if err := emit.Emit(ctx, "a"); err != nil {
			return err
		}
		select {
		case <-second:
		case <-ctx.Done():
			return ctx.Err()
		}
		return emit.Emit(ctx, "b")
	}))

	ctxA, cancelA := context.WithCancel(context.Background())
	a := shared.Pipeline().Iter(ctxA)
	defer a.Close()
	b := shared.Pipeline().Iter(context.Background())
	defer b.Close()

	if v, ok, err := a.Next(ctxA); err != nil || !ok || v != "a" {
		t.Fatalf("view a first item = %q %v %v", v, ok, err)
	}
	errA := make(chan error, 1)
	go func() {
		_, _, err := a.Next(ctxA)
		errA <- err
	}()
	time.Sleep(20 * time.Millisecond)
	cancelA()
	if err := <-errA; !stderrors.Is(err, context.Canceled) {
		t.Fatalf("view a error = %v, want context.Canceled", err)
	}
	close(second)

	var got []string
	for {
		v, ok, err := b.Next(context.Background())
		if err != nil {
			t.Fatalf("view b failed after view a was cancelled: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, v)
	}
	if !strSliceEqual(got, []string{"a", "b"}) {
		t.Errorf("view b got %v, want [a b]", got)
	}
}

func TestShare_StalledPullDoesNotBlockOtherCalls(t *testing.T) {
	stopped := make(chan struct{})
	shared := Share(Create(func(ctx context.Context, _ Emitter[int]) error {
		defer close(stopped)
		<-ctx.Done()
		return ctx.Err()
	}))

	ctxA, cancelA := context.WithCancel(context.Background())
	a := shared.Pipeline().Iter(ctxA)
	b := shared.Pipeline().Iter(context.Background())

	pulled := make(chan error, 1)
	go func() {
		_, _, err := a.Next(ctxA)
		pulled <- err
	}()
	time.Sleep(20 * time.Millisecond)

	calls := make(chan struct{})
	go func() {
		defer close(calls)
		shared.Subscribe(context.Background(), func(context.Context, int) error { return nil })
		_ = shared.Items()
		_, _ = shared.Done()
		_ = b.Close()
	}()
	select {
	case <-calls:
	case <-time.After(time.Second):
		t.Fatal("shared calls blocked behind a stalled upstream pull")
	}

	cancelA()
	if err := <-pulled; !stderrors.Is(err, context.Canceled) {
		t.Fatalf("stalled pull error = %v", err)
	}
	_ = a.Close()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("upstream kept running after the last view closed")
	}
}
