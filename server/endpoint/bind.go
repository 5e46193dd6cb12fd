package endpoint

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/streamkit/errors"
	"github.com/kbukum/streamkit/negotiate"
	"github.com/kbukum/streamkit/sse"
)

// BindItems decodes the request body into a list of items. JSON arrays are
// accepted as application/json (the default when no Content-Type is sent);
// text/event-stream bodies yield one item per event.
func BindItems[T any](c *gin.Context) ([]T, error) {
	switch ct := c.ContentType(); ct {
	case "", gin.MIMEJSON:
		var items []T
		if err := c.ShouldBindJSON(&items); err != nil {
			return nil, errors.InvalidInput("body", err.Error())
		}
		return items, nil
	case negotiate.MediaTypeEventStream:
		return readEvents[T](c.Request.Body)
	default:
		return nil, errors.UnsupportedMediaType(ct)
	}
}

func readEvents[T any](body io.ReadCloser) ([]T, error) {
	r := sse.NewReader(body)
	defer r.Close()

	var items []T
	for {
		ev, err := r.Next()
		if stderrors.Is(err, io.EOF) {
			return items, nil
		}
		if err != nil {
			return nil, errors.InvalidInput("body", err.Error())
		}
		item, err := decodeEvent[T](ev.Data)
		if err != nil {
			return nil, errors.InvalidInput("body", fmt.Sprintf("event %d: %v", len(items), err))
		}
		items = append(items, item)
	}
}

// decodeEvent turns one data payload into an item. String items take the
// payload as is; anything else is JSON.
func decodeEvent[T any](data string) (T, error) {
	var item T
	if s, ok := any(&item).(*string); ok {
		*s = data
		return item, nil
	}
	err := json.Unmarshal([]byte(data), &item)
	return item, err
}
