package sse

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kbukum/streamkit/logger"
)

// ErrStreamingUnsupported is returned when the response cannot be flushed.
var ErrStreamingUnsupported = errors.New("sse: streaming not supported")

// Writer writes event-stream frames to an HTTP response and flushes after
// every frame so each item reaches the client as soon as it is written.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	opened  bool
	frames  int
	bytes   int64
}

// NewWriter prepares w for an event stream. It sets the stream headers and
// lifts the server write deadline; nothing is written until Open.
func NewWriter(w http.ResponseWriter) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}

	// Event streams outlive the server's WriteTimeout.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.Warn("Could not disable write deadline", map[string]interface{}{
			"error": err.Error(),
		})
	}

	SetHeaders(w.Header())
	return &Writer{w: w, flusher: flusher}, nil
}

// SetHeaders sets the response headers of an event stream.
func SetHeaders(h http.Header) {
	h.Set("Content-Type", "text/event-stream; charset=utf-8")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	h.Del("Content-Length")
}

// Open commits the status line and headers and flushes them.
func (sw *Writer) Open(status int) {
	if sw.opened {
		return
	}
	sw.opened = true
	sw.w.WriteHeader(status)
	sw.flusher.Flush()
}

// Opened reports whether the status line has been written.
func (sw *Writer) Opened() bool { return sw.opened }

// Data writes payload as one event and flushes it.
func (sw *Writer) Data(payload []byte) error {
	return sw.write(Frame(payload))
}

// Comment writes a comment line, used as a keep-alive.
func (sw *Writer) Comment(text string) error {
	return sw.write([]byte(fmt.Sprintf(": %s\n\n", text)))
}

func (sw *Writer) write(frame []byte) error {
	if !sw.opened {
		sw.Open(http.StatusOK)
	}
	n, err := sw.w.Write(frame)
	sw.bytes += int64(n)
	if err != nil {
		return err
	}
	sw.frames++
	sw.flusher.Flush()
	return nil
}

// Frames returns the number of frames written.
func (sw *Writer) Frames() int { return sw.frames }

// Bytes returns the number of body bytes written.
func (sw *Writer) Bytes() int64 { return sw.bytes }

// Frame encodes payload as a data-only event. Every line of the payload gets
// its own data: field so embedded newlines survive the round trip.
func Frame(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(len(payload) + 8)
	lines := bytes.Split(normalizeNewlines(payload), []byte{'\n'})
	for _, line := range lines {
		buf.WriteString("data:")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}

func normalizeNewlines(b []byte) []byte {
	if !bytes.ContainsRune(b, '\r') {
		return b
	}
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.ReplaceAll(b, []byte("\r"), []byte("\n"))
}
