package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/audit"
	"github.com/kbukum/streamkit/negotiate"
	"github.com/kbukum/streamkit/observability"
	"github.com/kbukum/streamkit/render"
	"github.com/kbukum/streamkit/server/endpoint"
)

// DefaultTimeout is how long /timeout waits for a next item that never comes.
const DefaultTimeout = 100 * time.Millisecond

// Handler serves the demo endpoints. The audit sink is shared by every
// request until it is reset.
type Handler struct {
	renderer *render.Renderer
	audit    *audit.Sink[string]
	timeout  time.Duration
}

// Option configures a Handler.
type Option func(*Handler)

// WithTimeout sets the stall bound of /timeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// NewHandler creates a Handler. A nil sink gets a fresh one.
func NewHandler(r *render.Renderer, sink *audit.Sink[string], opts ...Option) *Handler {
	if sink == nil {
		sink = audit.NewSink[string]()
	}
	h := &Handler{renderer: r, audit: sink, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Audit returns the sink /updates records into.
func (h *Handler) Audit() *audit.Sink[string] { return h.audit }

// Register mounts every route on router.
func (h *Handler) Register(router gin.IRouter) {
	text := func(name string) endpoint.Config {
		return endpoint.Config{Name: name, Offer: negotiate.TextOffer()}
	}
	structured := func(name string) endpoint.Config {
		return endpoint.Config{Name: name, Offer: negotiate.JSONOffer()}
	}

	words := endpoint.Stream(h.renderer, text("words"), h.words)
	router.GET("/words", words)
	router.GET("/get/more", words)
	router.GET("/bang", endpoint.Stream(h.renderer, text("bang"), h.bang))
	router.GET("/empty", endpoint.Stream(h.renderer, text("empty"), h.empty))
	router.GET("/sentences", endpoint.Stream(h.renderer, structured("sentences"), h.sentences))
	router.GET("/timeout", endpoint.Stream(h.renderer, text("timeout"), h.stalled))

	uppercase := endpoint.Stream(h.renderer, structured("uppercase"), h.uppercase)
	router.POST("/uppercase", uppercase)
	router.POST("/transform", uppercase)
	router.POST("/post/more", uppercase)
	router.GET("/uppercase/:id", endpoint.Stream(h.renderer, text("uppercase_id"), h.uppercaseID))

	router.POST("/wrap", endpoint.Stream(h.renderer, structured("wrap"), h.wrap))
	router.GET("/wrap/:id", endpoint.Stream(h.renderer, text("wrap_id"), h.wrapID))
	router.POST("/entity", endpoint.Stream(h.renderer, structured("entity"), h.entity))
	router.POST("/maps", endpoint.Stream(h.renderer, structured("maps"), h.maps))

	router.POST("/updates", endpoint.Stream(h.renderer, endpoint.Config{
		Name:   "updates",
		Offer:  negotiate.TextOffer(),
		Status: http.StatusAccepted,
	}, h.updates))
	router.GET("/updates", endpoint.Stream(h.renderer, structured("updates_list"), h.recorded))
	router.DELETE("/updates", h.resetUpdates)
}

// record is the audit passenger of /updates.
func (h *Handler) record(ctx context.Context, item string) error {
	observability.AuditItemsTotal.Inc()
	return h.audit.Record(ctx, item)
}

func (h *Handler) resetUpdates(c *gin.Context) {
	h.audit.Reset()
	endpoint.RespondNoContent(c)
}
