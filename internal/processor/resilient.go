package processor

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/payflow/payment-service/internal/payments"
)

// BreakerOpenReason is the failure reason reported on the fast-fail path.
const BreakerOpenReason = "circuit breaker open"

// Resilient shields callers from a flaky processor: transient faults are
// retried with exponential backoff inside a shared circuit breaker, and a
// still-failing or short-circuited call surfaces as a Failed outcome rather
// than an error. Rejections pass straight through; they are answers, not
// faults.
type Resilient struct {
	inner     Processor
	breaker   *Breaker
	retries   int
	baseDelay time.Duration
	sleepFunc func(d time.Duration)
}

// NewResilient wraps inner with the given breaker, retrying transient faults
// up to retries times with 2^attempt * baseDelay backoff.
func NewResilient(inner Processor, breaker *Breaker, retries int, baseDelay time.Duration) *Resilient {
	return &Resilient{
		inner:     inner,
		breaker:   breaker,
		retries:   retries,
		baseDelay: baseDelay,
		sleepFunc: time.Sleep,
	}
}

// Process performs one logical invocation: a breaker admission check, up to
// 1+retries attempts, and exactly one recorded breaker outcome.
func (r *Resilient) Process(ctx context.Context, p payments.Payment) Outcome {
	if !r.breaker.Allow() {
		return Failed(BreakerOpenReason)
	}

	var lastErr error
	for attempt := 0; attempt <= r.retries; attempt++ {
		if attempt > 0 {
			r.sleepFunc(r.baseDelay * time.Duration(1<<attempt))
		}
		out, err := r.inner.Process(ctx, p)
		if err == nil {
			r.breaker.RecordSuccess()
			return out
		}
		lastErr = err
		log.Printf("[processor] attempt %d for payment=%s failed: %v", attempt+1, p.ID, err)
	}

	r.breaker.RecordFailure()
	return Failed(fmt.Sprintf("processor unavailable: %v", lastErr))
}
