package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/payflow/payment-service/internal/service"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Type              string              `json:"type"`
	Title             string              `json:"title"`
	Status            int                 `json:"status"`
	Detail            string              `json:"detail"`
	TraceID           string              `json:"traceId"`
	Errors            map[string][]string `json:"errors,omitempty"`
	RetryAfterSeconds int                 `json:"retryAfterSeconds,omitempty"`
}

func traceID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-Id"); id != "" {
		return id
	}
	return uuid.NewString()
}

func writeDomainError(c *gin.Context, e *service.Error) {
	if e.RetryAfterSeconds > 0 {
		c.Header("Retry-After", strconv.Itoa(e.RetryAfterSeconds))
	}
	c.JSON(e.Status, ErrorResponse{
		Type:              e.RFCType(),
		Title:             e.Title,
		Status:            e.Status,
		Detail:            e.Detail,
		TraceID:           traceID(c),
		RetryAfterSeconds: e.RetryAfterSeconds,
	})
}

func writeValidationError(c *gin.Context, fieldErrors map[string][]string) {
	c.JSON(400, ErrorResponse{
		Type:    "https://tools.ietf.org/html/rfc7231#section-6.5.1",
		Title:   "Validation Failed",
		Status:  400,
		Detail:  "One or more validation errors occurred.",
		TraceID: traceID(c),
		Errors:  fieldErrors,
	})
}

func writeInternalError(c *gin.Context) {
	c.JSON(500, ErrorResponse{
		Type:    "https://tools.ietf.org/html/rfc7231#section-6.6.1",
		Title:   "Internal Server Error",
		Status:  500,
		Detail:  "An unexpected error occurred.",
		TraceID: traceID(c),
	})
}
