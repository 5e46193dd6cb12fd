package render

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/streamkit/audit"
	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/negotiate"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/pipeline"
	"github.com/kbukum/streamkit/sse"
)

type label string

func (l label) String() string { return "<" + string(l) + ">" }

func TestRender_Bodies(t *testing.T) {
	sentences := [][]string{{"go", "home"}, {"come", "back"}}
	maps := []map[string]string{{"value": "FOO"}}

	tests := []struct {
		name       string
		render     func(*Renderer, http.ResponseWriter) Result
		wantBody   string
		wantType   string
		wantItems  int
		wantStatus int
	}{
		{
			name: "json strings",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.AggregateJSON, pipeline.Just("foo", "bar"))
			},
			wantBody: `["foo","bar"]`, wantType: "application/json", wantItems: 2, wantStatus: 200,
		},
		{
			name: "json lists",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.AggregateJSON, pipeline.FromSlice(sentences))
			},
			wantBody: `[["go","home"],["come","back"]]`, wantType: "application/json", wantItems: 2, wantStatus: 200,
		},
		{
			name: "json maps",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.AggregateJSON, pipeline.FromSlice(maps))
			},
			wantBody: `[{"value":"FOO"}]`, wantType: "application/json", wantItems: 1, wantStatus: 200,
		},
		{
			name: "json empty",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.AggregateJSON, pipeline.Empty[string]())
			},
			wantBody: `[]`, wantType: "application/json", wantStatus: 200,
		},
		{
			name: "json no html escaping",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.AggregateJSON, pipeline.Just("<a&b>"))
			},
			wantBody: `["<a&b>"]`, wantType: "application/json", wantItems: 1, wantStatus: 200,
		},
		{
			name: "plain strings",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.PlainConcat, pipeline.Just("foo", "bar"))
			},
			wantBody: "foobar", wantType: "text/plain; charset=utf-8", wantItems: 2, wantStatus: 200,
		},
		{
			name: "plain stringer and structured",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.PlainConcat, pipeline.Just[any](label("x"), []string{"a"}, 7))
			},
			wantBody: `<x>["a"]7`, wantType: "text/plain; charset=utf-8", wantItems: 3, wantStatus: 200,
		},
		{
			name: "plain empty",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.PlainConcat, pipeline.Empty[string]())
			},
			wantBody: "", wantType: "text/plain; charset=utf-8", wantStatus: 200,
		},
		{
			name: "event stream strings",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.EventStream, pipeline.Just("foo", "bar"))
			},
			wantBody: "data:foo\n\ndata:bar\n\n", wantType: "text/event-stream; charset=utf-8", wantItems: 2, wantStatus: 200,
		},
		{
			name: "event stream lists",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.EventStream, pipeline.FromSlice(sentences))
			},
			wantBody: "data:[\"go\",\"home\"]\n\ndata:[\"come\",\"back\"]\n\n", wantType: "text/event-stream; charset=utf-8", wantItems: 2, wantStatus: 200,
		},
		{
			name: "event stream empty",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.EventStream, pipeline.Empty[string]())
			},
			wantBody: "", wantType: "text/event-stream; charset=utf-8", wantStatus: 200,
		},
		{
			name: "accepted status",
			render: func(r *Renderer, w http.ResponseWriter) Result {
				return Render(context.Background(), r, w, negotiate.PlainConcat, pipeline.Just("a"), WithStatus(http.StatusAccepted))
			},
			wantBody: "a", wantType: "text/plain; charset=utf-8", wantItems: 1, wantStatus: 202,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			res := tt.render(New(), rec)

			if res.Err != nil {
				t.Fatalf("unexpected error: %v", res.Err)
			}
			if rec.Code != tt.wantStatus || res.Status != tt.wantStatus {
				t.Errorf("status = %d (result %d), want %d", rec.Code, res.Status, tt.wantStatus)
			}
			if got := rec.Body.String(); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.wantType {
				t.Errorf("content type = %q, want %q", got, tt.wantType)
			}
			if res.Items != tt.wantItems {
				t.Errorf("items = %d, want %d", res.Items, tt.wantItems)
			}
			if res.Bytes != int64(len(tt.wantBody)) {
				t.Errorf("bytes = %d, want %d", res.Bytes, len(tt.wantBody))
			}
		})
	}
}

// failAfterFoo yields "foo" then fails the way a failing transform does.
func failAfterFoo() *pipeline.Pipeline[string] {
	return pipeline.Map(pipeline.Just("foo", "bar"), func(_ context.Context, v string) (string, error) {
		if v == "bar" {
			return "", fmt.Errorf("rejected %q", v)
		}
		return v, nil
	})
}

func TestRender_FailureAfterOneItem(t *testing.T) {
	tests := []struct {
		name        string
		mode        negotiate.Mode
		wantStatus  int
		wantBody    string
		wantPartial bool
	}{
		{"json", negotiate.AggregateJSON, http.StatusInternalServerError, "", false},
		{"plain", negotiate.PlainConcat, http.StatusInternalServerError, "", false},
		{"event stream", negotiate.EventStream, http.StatusOK, "data:foo\n\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			res := Render(context.Background(), New(), rec, tt.mode, failAfterFoo())

			if res.Err == nil || !errors.IsTransformFailure(res.Err) {
				t.Fatalf("expected transform failure, got %v", res.Err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
			if res.Partial != tt.wantPartial {
				t.Errorf("partial = %v, want %v", res.Partial, tt.wantPartial)
			}
		})
	}
}

func TestRender_ProducerFailureClassified(t *testing.T) {
	rec := httptest.NewRecorder()
	res := Render(context.Background(), New(), rec, negotiate.AggregateJSON, pipeline.Fail[string](fmt.Errorf("upstream down")))
	if !errors.IsProducerFailure(res.Err) {
		t.Fatalf("expected producer failure, got %v", res.Err)
	}
	if rec.Code != http.StatusInternalServerError || rec.Body.Len() != 0 {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body.String())
	}
	if res.Outcome() != observability.OutcomeFailure {
		t.Errorf("outcome = %s", res.Outcome())
	}
}

func TestRender_EventStreamFailsBeforeFirstFrame(t *testing.T) {
	rec := httptest.NewRecorder()
	res := Render(context.Background(), New(), rec, negotiate.EventStream, pipeline.Fail[string](fmt.Errorf("boom")))
	if rec.Code != http.StatusInternalServerError || rec.Body.Len() != 0 {
		t.Errorf("status = %d body = %q", rec.Code, rec.Body.String())
	}
	if res.Partial {
		t.Error("nothing was delivered, result must not be partial")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "" {
		t.Errorf("content type = %q, want none", ct)
	}
}

func TestRender_TimeoutDegradesToSuccess(t *testing.T) {
	stalled := pipeline.Create(func(ctx context.Context, emit pipeline.Emitter[string]) error {
		if err := emit.Emit(ctx, "foo"); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	})

	for _, mode := range []negotiate.Mode{negotiate.AggregateJSON, negotiate.PlainConcat, negotiate.EventStream} {
		t.Run(mode.String(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			res := Render(context.Background(), New(), rec, mode, pipeline.Timeout(stalled, 20*time.Millisecond))
			if res.Err != nil {
				t.Fatalf("timeout must not fail the render: %v", res.Err)
			}
			if rec.Code != http.StatusOK || res.Items != 1 {
				t.Errorf("status = %d items = %d", rec.Code, res.Items)
			}
			want := map[negotiate.Mode]string{
				negotiate.AggregateJSON: `["foo"]`,
				negotiate.PlainConcat:   "foo",
				negotiate.EventStream:   "data:foo\n\n",
			}[mode]
			if rec.Body.String() != want {
				t.Errorf("body = %q, want %q", rec.Body.String(), want)
			}
		})
	}
}

func TestRender_MulticastToAuditSink(t *testing.T) {
	var runs atomic.Int32
	source := pipeline.Create(func(ctx context.Context, emit pipeline.Emitter[string]) error {
		runs.Add(1)
		for _, v := range []string{"foo", "bar"} {
			if err := emit.Emit(ctx, v); err != nil {
				return err
			}
		}
		return nil
	})

	sink := audit.NewSink[string]()
	shared := pipeline.Share(source)
	shared.Subscribe(context.Background(), sink.Record)

	rec := httptest.NewRecorder()
	res := Render(context.Background(), New(), rec, negotiate.PlainConcat, shared.Pipeline(), WithStatus(http.StatusAccepted))

	if rec.Code != http.StatusAccepted || rec.Body.String() != "foobar" {
		t.Fatalf("status = %d body = %q", rec.Code, rec.Body.String())
	}
	if got := sink.Items(); len(got) != 2 || got[0] != "foo" || got[1] != "bar" {
		t.Errorf("audit = %v, want [foo bar]", got)
	}
	if runs.Load() != 1 {
		t.Errorf("producer ran %d times, want 1", runs.Load())
	}

	// A second view replays the cache without re-running the producer.
	again := httptest.NewRecorder()
	Render(context.Background(), New(), again, negotiate.EventStream, shared.Pipeline())
	if again.Body.String() != "data:foo\n\ndata:bar\n\n" || runs.Load() != 1 {
		t.Errorf("replay body = %q runs = %d", again.Body.String(), runs.Load())
	}
	if res.Items != 2 {
		t.Errorf("items = %d", res.Items)
	}
}

func TestRender_ClientGoneStopsProducer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	source := pipeline.Create(func(ctx context.Context, emit pipeline.Emitter[int]) error {
		defer close(stopped)
		for i := 0; ; i++ {
			if err := emit.Emit(ctx, i); err != nil {
				return err
			}
			if i == 2 {
				cancel()
			}
		}
	})

	rec := httptest.NewRecorder()
	res := Render(ctx, New(), rec, negotiate.EventStream, source)

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("producer kept running after the client went away")
	}
	if res.Outcome() != observability.OutcomeCancelled {
		t.Errorf("outcome = %s, want cancelled (err %v)", res.Outcome(), res.Err)
	}
	if !strings.HasPrefix(rec.Body.String(), "data:0\n\n") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestRender_ObserversAndStreams(t *testing.T) {
	obs := &recordingObserver{}
	streams := sse.NewStreams()
	r := New(WithObservers(obs, nil), WithStreams(streams), WithBuffer(4))

	rec := httptest.NewRecorder()
	Render(context.Background(), r, rec, negotiate.EventStream, pipeline.Just("a", "b"), WithEndpoint("words"))

	if obs.started != 1 || len(obs.finished) != 1 {
		t.Fatalf("started = %d finished = %d", obs.started, len(obs.finished))
	}
	ev := obs.finished[0]
	if ev.Endpoint != "words" || ev.Mode != "event-stream" || ev.Items != 2 || ev.Outcome != observability.OutcomeSuccess {
		t.Errorf("event = %+v", ev)
	}
	if streams.Total() != 1 || streams.Open() != 0 {
		t.Errorf("streams total = %d open = %d", streams.Total(), streams.Open())
	}
	if rec.Body.String() != "data:a\n\ndata:b\n\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestEncodeEvent_MultilineString(t *testing.T) {
	rec := httptest.NewRecorder()
	Render(context.Background(), New(), rec, negotiate.EventStream, pipeline.Just("a\nb"))
	if rec.Body.String() != "data:a\ndata:b\n\n" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

type recordingObserver struct {
	started  int
	finished []observability.RenderEvent
}

func (o *recordingObserver) RenderStarted(context.Context, string, string) { o.started++ }

func (o *recordingObserver) RenderFinished(_ context.Context, ev observability.RenderEvent) {
	o.finished = append(o.finished, ev)
}
