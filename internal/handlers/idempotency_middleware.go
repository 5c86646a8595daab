package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/payflow/payment-service/internal/idempotency"
)

const (
	idempotencyKeyHeader    = "Idempotency-Key"
	idempotencyReplayHeader = "Idempotency-Replay"
	clientIDHeader          = "X-Client-Id"
)

// IdempotencyMiddleware replays cached responses for POST requests that
// repeat an (identity, Idempotency-Key) pair, and captures successful
// responses into the cache. Failed outcomes are never cached so a retry
// with the same key gets a fresh attempt.
func IdempotencyMiddleware(cache *idempotency.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}
		rawKey := c.GetHeader(idempotencyKeyHeader)
		if rawKey == "" {
			c.Next()
			return
		}

		if _, err := uuid.Parse(rawKey); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Type:    "https://tools.ietf.org/html/rfc7231#section-6.5.1",
				Title:   "Invalid Idempotency Key",
				Status:  http.StatusBadRequest,
				Detail:  "The Idempotency-Key header must be a valid UUID.",
				TraceID: traceID(c),
			})
			return
		}

		identity := c.GetHeader(clientIDHeader)
		if identity == "" {
			identity = "anonymous"
		}
		cacheKey := "idempotency:" + identity + ":" + rawKey

		if entry, ok := cache.Get(cacheKey); ok {
			c.Header(idempotencyReplayHeader, "true")
			if entry.Location != "" {
				c.Header("Location", entry.Location)
			}
			c.Data(entry.StatusCode, entry.ContentType, entry.Body)
			c.Abort()
			return
		}

		bw := &bodyCaptureWriter{ResponseWriter: c.Writer}
		c.Writer = bw

		c.Next()

		status := bw.Status()
		if status >= 200 && status < 300 {
			cache.Set(cacheKey, idempotency.Entry{
				StatusCode:  status,
				ContentType: bw.Header().Get("Content-Type"),
				Body:        append([]byte(nil), bw.buf.Bytes()...),
				Location:    bw.Header().Get("Location"),
			})
		}
	}
}

// bodyCaptureWriter tees the response body so a successful outcome can be
// stored for replay.
type bodyCaptureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyCaptureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
