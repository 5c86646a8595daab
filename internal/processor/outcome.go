package processor

import (
	"context"

	"github.com/payflow/payment-service/internal/payments"
)

// Outcome is the closed set of answers a processor call can produce. Status
// is always one of the payments.Status* terminal-for-this-attempt values;
// Reason is set only for Rejected and Failed.
type Outcome struct {
	Status string
	Reason string
}

// Success means the payment completed.
func Success() Outcome { return Outcome{Status: payments.StatusCompleted} }

// InProgress means the processor accepted the payment but has not settled it.
func InProgress() Outcome { return Outcome{Status: payments.StatusProcessing} }

// Rejected is a definitive business decision; it is never retried.
func Rejected(reason string) Outcome {
	return Outcome{Status: payments.StatusRejected, Reason: reason}
}

// Failed means the call could not be completed (dependency down, breaker open).
func Failed(reason string) Outcome {
	return Outcome{Status: payments.StatusFailed, Reason: reason}
}

// Processor is one attempt against the external payment processor. A non-nil
// error is a transient fault (retryable, counted by the breaker); business
// outcomes, including rejection, arrive as values.
type Processor interface {
	Process(ctx context.Context, p payments.Payment) (Outcome, error)
}
