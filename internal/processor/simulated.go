package processor

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/payflow/payment-service/internal/payments"
)

// Simulated stands in for the external payment processor. Outcomes are
// driven by the amount: a two-decimal rendering ending ".77" is a transient
// network fault, ".99" is a business rejection, anything over 10000 is
// accepted but left in progress, everything else completes.
type Simulated struct {
	delayFunc func(d time.Duration)
	randFunc  func(n int) int
}

// NewSimulated returns a Simulated with real latency (50-200ms per call).
func NewSimulated() *Simulated {
	return &Simulated{
		delayFunc: time.Sleep,
		randFunc:  rand.Intn,
	}
}

func (s *Simulated) Process(ctx context.Context, p payments.Payment) (Outcome, error) {
	s.delayFunc(time.Duration(50+s.randFunc(151)) * time.Millisecond)

	amountStr := strconv.FormatFloat(p.Amount, 'f', 2, 64)
	if strings.HasSuffix(amountStr, ".77") {
		return Outcome{}, errors.New("simulated network error")
	}
	if strings.HasSuffix(amountStr, ".99") {
		return Rejected("Payment rejected by processor"), nil
	}
	if p.Amount > 10000 {
		return InProgress(), nil
	}
	return Success(), nil
}
