package render

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/negotiate"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/pipeline"
	"github.com/kbukum/streamkit/sse"
)

// Renderer writes item pipelines to HTTP responses. It is safe for
// concurrent use; per-request state lives in Render.
type Renderer struct {
	observers observability.Observers
	streams   *sse.Streams
	buffer    int
	log       *logger.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithObservers reports every render to the given observers.
func WithObservers(obs ...observability.Observer) Option {
	return func(r *Renderer) {
		for _, o := range obs {
			if o != nil {
				r.observers = append(r.observers, o)
			}
		}
	}
}

// WithStreams tracks open event streams in s.
func WithStreams(s *sse.Streams) Option {
	return func(r *Renderer) { r.streams = s }
}

// WithBuffer lets event-stream producers run up to n items ahead of the
// client. Zero keeps producer and writer in lockstep.
func WithBuffer(n int) Option {
	return func(r *Renderer) { r.buffer = n }
}

// WithLogger sets the renderer logger.
func WithLogger(l *logger.Logger) Option {
	return func(r *Renderer) { r.log = l }
}

// New creates a Renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{log: logger.WithComponent("render")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RequestOption configures a single render.
type RequestOption func(*request)

type request struct {
	endpoint string
	status   int
}

// WithStatus sets the success status. Defaults to 200.
func WithStatus(status int) RequestOption {
	return func(r *request) {
		if status > 0 {
			r.status = status
		}
	}
}

// WithEndpoint names the endpoint in logs, spans and metrics.
func WithEndpoint(name string) RequestOption {
	return func(r *request) { r.endpoint = name }
}

// Result describes how a render ended.
type Result struct {
	Mode   negotiate.Mode
	Status int
	Items  int
	Bytes  int64
	// Err is the terminal failure, nil on success and on timeout fallback.
	Err error
	// Partial is set when frames were delivered before the failure.
	Partial bool
}

// Outcome classifies the result for metrics.
func (r Result) Outcome() string {
	switch {
	case r.Err == nil:
		return observability.OutcomeSuccess
	case isCancellation(r.Err):
		return observability.OutcomeCancelled
	case r.Partial:
		return observability.OutcomePartial
	default:
		return observability.OutcomeFailure
	}
}

// Render pulls p and writes it to w in the given mode.
//
// Buffered modes write nothing until the pipeline has completed; a failure
// turns into a 500 with an empty body. Event streams write each item as a
// frame as soon as it is pulled; a failure ends the response after the last
// frame. Cancelling ctx closes the pipeline, which stops the producer.
func Render[T any](ctx context.Context, r *Renderer, w http.ResponseWriter, mode negotiate.Mode, p *pipeline.Pipeline[T], opts ...RequestOption) Result {
	req := request{endpoint: "unknown", status: http.StatusOK}
	for _, opt := range opts {
		opt(&req)
	}

	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "render."+mode.String(),
		trace.WithAttributes(
			attribute.String(observability.AttrEndpoint, req.endpoint),
			attribute.String(observability.AttrMode, mode.String()),
		),
	)
	defer span.End()
	r.observers.RenderStarted(ctx, req.endpoint, mode.String())

	var res Result
	switch mode {
	case negotiate.EventStream:
		res = renderStream(ctx, r, w, p, req)
	case negotiate.PlainConcat:
		res = renderBuffered(ctx, w, mode, p, req, concatText[T])
	default:
		res = renderBuffered(ctx, w, negotiate.AggregateJSON, p, req, encodeArray[T])
	}

	duration := time.Since(start)
	span.SetAttributes(
		attribute.Int(observability.AttrItems, res.Items),
		attribute.Int64(observability.AttrBytes, res.Bytes),
		attribute.Int(observability.AttrStatus, res.Status),
		attribute.String(observability.AttrOutcome, res.Outcome()),
	)
	if res.Err != nil {
		observability.SetSpanError(ctx, res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	r.observers.RenderFinished(ctx, observability.RenderEvent{
		Endpoint: req.endpoint,
		Mode:     res.Mode.String(),
		Outcome:  res.Outcome(),
		Status:   res.Status,
		Items:    res.Items,
		Bytes:    res.Bytes,
		Duration: duration,
	})
	r.logResult(ctx, req.endpoint, res, duration)
	return res
}

func renderBuffered[T any](ctx context.Context, w http.ResponseWriter, mode negotiate.Mode, p *pipeline.Pipeline[T], req request, encode func([]T) ([]byte, error)) Result {
	res := Result{Mode: mode}

	items, err := pipeline.Collect(ctx, p)
	res.Items = len(items)
	if err != nil {
		res.Err = pipeline.Classify(err)
		res.Status = fail(w)
		return res
	}

	body, err := encode(items)
	if err != nil {
		res.Err = errors.Internal(err)
		res.Status = fail(w)
		return res
	}

	h := w.Header()
	h.Set("Content-Type", mode.ContentType())
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(req.status)
	n, err := w.Write(body)
	res.Status = req.status
	res.Bytes = int64(n)
	if err != nil {
		res.Err = err
	}
	return res
}

func renderStream[T any](ctx context.Context, r *Renderer, w http.ResponseWriter, p *pipeline.Pipeline[T], req request) Result {
	res := Result{Mode: negotiate.EventStream}

	sw, err := sse.NewWriter(w)
	if err != nil {
		res.Err = errors.Internal(err)
		res.Status = fail(w)
		return res
	}
	if r.streams != nil {
		release := r.streams.Track(req.endpoint)
		defer release()
	}
	if r.buffer > 0 {
		p = pipeline.Buffer(p, r.buffer)
	}

	iter := p.Iter(ctx)
	defer iter.Close()

	for {
		item, ok, err := iter.Next(ctx)
		if err != nil {
			res.Err = pipeline.Classify(err)
			break
		}
		if !ok {
			break
		}
		payload, err := encodeEvent(item)
		if err != nil {
			res.Err = errors.Internal(err)
			break
		}
		sw.Open(req.status)
		if err := sw.Data(payload); err != nil {
			res.Err = err
			break
		}
		res.Items++
	}

	res.Bytes = sw.Bytes()
	switch {
	case sw.Opened():
		res.Status = req.status
		res.Partial = res.Err != nil
	case res.Err != nil:
		// Nothing was sent yet, so the failure can still be reported.
		w.Header().Del("Content-Type")
		res.Status = fail(w)
	default:
		sw.Open(req.status)
		res.Status = req.status
	}
	return res
}

// fail answers a render failure with a 500 and no body.
func fail(w http.ResponseWriter) int {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(http.StatusInternalServerError)
	return http.StatusInternalServerError
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

func (r *Renderer) logResult(ctx context.Context, endpoint string, res Result, d time.Duration) {
	fields := logger.MergeWithDuration(logger.Fields(
		logger.FieldOperation, endpoint,
		logger.FieldMode, res.Mode.String(),
		logger.FieldItems, res.Items,
		logger.FieldStatus, res.Status,
	), d)
	if id := logger.RequestIDFromContext(ctx); id != "" {
		fields[logger.FieldRequestID] = id
	}
	if res.Err != nil {
		fields[logger.FieldError] = res.Err.Error()
	}

	switch {
	case res.Err == nil:
		r.log.Debug("Render completed", fields)
	case isCancellation(res.Err):
		r.log.Debug("Render cancelled", fields)
	case errors.IsTransformFailure(res.Err):
		r.log.Warn("Item transformation failed", fields)
	case errors.IsProducerFailure(res.Err):
		r.log.Warn("Item sequence failed", fields)
	default:
		r.log.Error("Render failed", fields)
	}
}
