package observability

import (
	"context"
	"time"
)

// Render outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomePartial   = "partial"
	OutcomeCancelled = "cancelled"
)

// RenderEvent describes one finished response render.
type RenderEvent struct {
	Endpoint string
	Mode     string
	Outcome  string
	Status   int
	Items    int
	Bytes    int64
	Duration time.Duration
}

// Observer receives render lifecycle notifications.
type Observer interface {
	RenderStarted(ctx context.Context, endpoint, mode string)
	RenderFinished(ctx context.Context, ev RenderEvent)
}

// Observers fans notifications out to every observer in order.
type Observers []Observer

// RenderStarted implements Observer.
func (o Observers) RenderStarted(ctx context.Context, endpoint, mode string) {
	for _, obs := range o {
		obs.RenderStarted(ctx, endpoint, mode)
	}
}

// RenderFinished implements Observer.
func (o Observers) RenderFinished(ctx context.Context, ev RenderEvent) {
	for _, obs := range o {
		obs.RenderFinished(ctx, ev)
	}
}
