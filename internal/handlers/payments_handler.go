package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/payflow/payment-service/internal/idempotency"
	"github.com/payflow/payment-service/internal/payments"
	"github.com/payflow/payment-service/internal/service"
	"github.com/payflow/payment-service/internal/validation"
)

// paymentResponse is the wire representation of a payment. It deliberately
// omits updatedAt so a duplicate create and a later replay serialize to the
// exact bytes of the original response.
type paymentResponse struct {
	ID            string    `json:"id"`
	ReferenceID   string    `json:"referenceId"`
	Amount        float64   `json:"amount"`
	Currency      string    `json:"currency"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failureReason,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toResponse(p payments.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID,
		ReferenceID:   p.ReferenceID,
		Amount:        p.Amount,
		Currency:      p.Currency,
		Status:        p.Status,
		FailureReason: p.FailureReason,
		CreatedAt:     p.CreatedAt,
	}
}

// HandlerConfig groups dependencies for the payments handler. Cache may be
// nil, in which case a 24h response cache is created here.
type HandlerConfig struct {
	Service             *service.PaymentService
	SupportedCurrencies []string
	Cache               *idempotency.Cache
}

// RegisterPaymentsRoutes registers the payments API routes.
func RegisterPaymentsRoutes(r *gin.Engine, cfg HandlerConfig) {
	v := validation.New(cfg.SupportedCurrencies)
	cache := cfg.Cache
	if cache == nil {
		cache = idempotency.NewCache(24 * time.Hour)
	}

	r.POST("/payments", IdempotencyMiddleware(cache), func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.CreatePaymentRequest
		if fieldErrors := validation.Bind(c, &req, v); fieldErrors != nil {
			writeValidationError(c, fieldErrors)
			return
		}

		result, err := cfg.Service.Create(ctx, service.CreateInput{
			ReferenceID: req.ReferenceID,
			Amount:      req.Amount,
			Currency:    req.Currency,
		})
		if err != nil {
			var de *service.Error
			if errors.As(err, &de) {
				writeDomainError(c, de)
				return
			}
			log.Printf("[handlers] create payment failed: %v", err)
			writeInternalError(c)
			return
		}

		if result.Existing {
			c.JSON(http.StatusOK, toResponse(result.Payment))
			return
		}

		c.Header("Location", fmt.Sprintf("/payments/%s", result.Payment.ID))
		c.JSON(http.StatusCreated, toResponse(result.Payment))
	})

	r.GET("/payments/:id", func(c *gin.Context) {
		id := c.Param("id")
		if _, err := uuid.Parse(id); err != nil {
			writeDomainError(c, service.ErrNotFound)
			return
		}
		p, err := cfg.Service.GetByID(c.Request.Context(), id)
		if err != nil {
			writeGetError(c, err)
			return
		}
		c.JSON(http.StatusOK, toResponse(*p))
	})

	// serves GET /payments/reference/{referenceId}; gin's tree cannot mix a
	// static "reference" segment with the :id wildcard above, so this route
	// shares the wildcard and checks it.
	r.GET("/payments/:id/:referenceId", func(c *gin.Context) {
		if c.Param("id") != "reference" {
			writeDomainError(c, service.ErrNotFound)
			return
		}
		p, err := cfg.Service.GetByReference(c.Request.Context(), c.Param("referenceId"))
		if err != nil {
			writeGetError(c, err)
			return
		}
		c.JSON(http.StatusOK, toResponse(*p))
	})
}

func writeGetError(c *gin.Context, err error) {
	var de *service.Error
	if errors.As(err, &de) {
		writeDomainError(c, de)
		return
	}
	log.Printf("[handlers] get payment failed: %v", err)
	writeInternalError(c)
}
