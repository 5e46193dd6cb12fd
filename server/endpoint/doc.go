// Package endpoint adapts the streaming pipeline to gin handlers.
//
// Stream negotiates the render mode from the Accept header, asks the
// endpoint's Producer for a pipeline and renders it:
//
//	r.GET("/words", endpoint.Stream(renderer, endpoint.Config{
//	    Name:  "words",
//	    Offer: negotiate.TextOffer(),
//	}, func(c *gin.Context) (*pipeline.Pipeline[string], error) {
//	    return pipeline.Just("foo", "bar"), nil
//	}))
//
// Request errors (406, 400, 415) use the JSON error envelope. The operational
// handlers (health, liveness, readiness, version, metrics) live here too.
package endpoint
