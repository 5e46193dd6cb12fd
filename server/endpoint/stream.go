package endpoint

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/negotiate"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/pipeline"
	"github.com/kbukum/streamkit/render"
)

// Config declares how a streaming endpoint is rendered.
type Config struct {
	// Name labels the endpoint in logs, spans and metrics.
	Name string
	// Offer lists the render modes and the default used for */* or no Accept.
	Offer negotiate.Offer
	// Status is the success status. Zero means 200.
	Status int
}

// Producer builds the item pipeline for one request. Errors returned here
// are request errors (bad path values, undecodable bodies) and are answered
// with the JSON error envelope before anything is produced.
type Producer[T any] func(c *gin.Context) (*pipeline.Pipeline[T], error)

// Stream returns a handler that negotiates the render mode, builds the
// pipeline and renders it.
func Stream[T any](r *render.Renderer, cfg Config, produce Producer[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Vary", "Accept")

		mode, err := negotiate.Resolve(c.GetHeader("Accept"), cfg.Offer)
		if err != nil {
			observability.NegotiationFailuresTotal.WithLabelValues(cfg.Name).Inc()
			RespondWithError(c, err)
			return
		}

		p, err := produce(c)
		if err != nil {
			RespondWithError(c, err)
			return
		}

		render.Render(c.Request.Context(), r, c.Writer, mode, p,
			render.WithEndpoint(cfg.Name),
			render.WithStatus(cfg.Status),
		)
	}
}
