package api

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/pipeline"
	"github.com/kbukum/streamkit/server/endpoint"
	"github.com/kbukum/streamkit/validation"
)

func (h *Handler) words(*gin.Context) (*pipeline.Pipeline[string], error) {
	return pipeline.Just("foo", "bar"), nil
}

// bang fails while transforming its second item.
func (h *Handler) bang(*gin.Context) (*pipeline.Pipeline[string], error) {
	return pipeline.Map(pipeline.Just("foo", "bar"), func(_ context.Context, v string) (string, error) {
		if v == "bar" {
			return "", fmt.Errorf("rejected %q", v)
		}
		return v, nil
	}), nil
}

func (h *Handler) empty(*gin.Context) (*pipeline.Pipeline[string], error) {
	return pipeline.Empty[string](), nil
}

func (h *Handler) sentences(*gin.Context) (*pipeline.Pipeline[[]string], error) {
	return pipeline.Just([]string{"go", "home"}, []string{"come", "back"}), nil
}

// stalled emits one item and then never completes on its own; the timeout
// ends it early and successfully.
func (h *Handler) stalled(*gin.Context) (*pipeline.Pipeline[string], error) {
	return pipeline.Timeout(pipeline.Create(func(ctx context.Context, emit pipeline.Emitter[string]) error {
		if err := emit.Emit(ctx, "foo"); err != nil {
			return err
		}
		<-ctx.Done()
		return ctx.Err()
	}), h.timeout), nil
}

func (h *Handler) uppercase(c *gin.Context) (*pipeline.Pipeline[string], error) {
	items, err := endpoint.BindItems[string](c)
	if err != nil {
		return nil, err
	}
	return pipeline.MapValue(pipeline.FromSlice(items), func(v string) string {
		return "(" + strings.ToUpper(strings.TrimSpace(v)) + ")"
	}), nil
}

func (h *Handler) uppercaseID(c *gin.Context) (*pipeline.Pipeline[string], error) {
	return pipeline.Just("[" + strings.ToUpper(strings.TrimSpace(c.Param("id"))) + "]"), nil
}

func (h *Handler) wrap(c *gin.Context) (*pipeline.Pipeline[string], error) {
	items, err := endpoint.BindItems[string](c)
	if err != nil {
		return nil, err
	}
	return pipeline.MapValue(pipeline.FromSlice(items), wrapDots), nil
}

func (h *Handler) wrapID(c *gin.Context) (*pipeline.Pipeline[string], error) {
	raw := c.Param("id")
	if err := validation.New().Integer("id", raw).Validate(); err != nil {
		return nil, err
	}
	id, _ := strconv.Atoi(strings.TrimSpace(raw))
	return pipeline.Just(wrapDots(strconv.Itoa(id))), nil
}

func wrapDots(v string) string { return ".." + v + ".." }

func (h *Handler) entity(c *gin.Context) (*pipeline.Pipeline[map[string]int], error) {
	items, err := endpoint.BindItems[int](c)
	if err != nil {
		return nil, err
	}
	return pipeline.MapValue(pipeline.FromSlice(items), func(v int) map[string]int {
		return map[string]int{"value": v}
	}), nil
}

// maps upper-cases the "value" entry of every map. A map without one fails
// the sequence at that item.
func (h *Handler) maps(c *gin.Context) (*pipeline.Pipeline[map[string]string], error) {
	items, err := endpoint.BindItems[map[string]string](c)
	if err != nil {
		return nil, err
	}
	return pipeline.Map(pipeline.FromSlice(items), func(_ context.Context, m map[string]string) (map[string]string, error) {
		v, ok := m["value"]
		if !ok {
			return nil, fmt.Errorf("item has no value")
		}
		out := make(map[string]string, len(m))
		for k, val := range m {
			out[k] = val
		}
		out["value"] = strings.ToUpper(strings.TrimSpace(v))
		return out, nil
	}), nil
}

// updates answers with the posted items and records each of them in the
// audit sink from the same run.
func (h *Handler) updates(c *gin.Context) (*pipeline.Pipeline[string], error) {
	items, err := endpoint.BindItems[string](c)
	if err != nil {
		return nil, err
	}
	shared := pipeline.Share(pipeline.FromSlice(items))
	shared.Subscribe(c.Request.Context(), h.record)
	return shared.Pipeline(), nil
}

func (h *Handler) recorded(*gin.Context) (*pipeline.Pipeline[string], error) {
	return pipeline.FromSlice(h.audit.Items()), nil
}
