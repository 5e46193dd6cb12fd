package middleware

import (
	"net/http"
	"time"

	"github.com/kbukum/streamkit/logger"
)

// quietPaths are served without a request log line.
var quietPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// RequestLogger returns middleware that logs every request with method,
// path, negotiated content type, status code, body size and duration.
// Health and metrics scrapes are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := asStatusWriter(w)
			next.ServeHTTP(sw, r)

			fields := map[string]interface{}{
				"method":           r.Method,
				"path":             r.URL.Path,
				logger.FieldStatus: sw.status,
				"bytes":            sw.bytes,
				"content_type":     sw.Header().Get("Content-Type"),
			}
			if accept := r.Header.Get("Accept"); accept != "" {
				fields["accept"] = accept
			}
			if id := r.Header.Get(HeaderRequestID); id != "" {
				fields[logger.FieldRequestID] = id
			}
			logByStatus(log, logger.MergeWithDuration(fields, time.Since(start)), sw.status)
		})
	}
}

// logByStatus logs request fields at the level matching the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("Request completed", fields)
	case status >= 400:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
