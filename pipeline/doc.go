// Package pipeline provides the lazy item producers behind streamkit responses.
//
// Pipelines are pull-based: no work happens until items are pulled via
// Collect, Drain, ForEach or Iter. Each stage pulls from the previous stage on
// demand, so a slow consumer slows the producer down without buffering.
//
// # Producers
//
//   - FromSlice, Just, Empty, Fail: fixed sequences
//   - Create: an asynchronous producer goroutine handing off one item per demand
//   - FromFunc, From: adapters over custom iterators
//
// # Operators
//
//   - Map: the item transformer; failures abort as TransformFailure
//   - Tap: per-item side effect
//   - Concat: sequential join
//   - Buffer: bounded prefetch on a separate goroutine
//   - Timeout: graceful early completion when the producer stalls
//   - Share: at-most-once evaluation multicast to passenger subscribers
//
// # Usage
//
//	words := pipeline.Just("foo", "bar")
//	upper := pipeline.MapValue(words, strings.ToUpper)
//	items, err := pipeline.Collect(ctx, upper)
package pipeline
