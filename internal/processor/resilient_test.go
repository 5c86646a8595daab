package processor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/payflow/payment-service/internal/payments"
)

// scriptedProcessor returns its scripted results in order, repeating the
// last one when exhausted.
type scriptedProcessor struct {
	calls  int
	script []scriptedResult
}

type scriptedResult struct {
	out Outcome
	err error
}

func (s *scriptedProcessor) Process(ctx context.Context, p payments.Payment) (Outcome, error) {
	i := s.calls
	if i >= len(s.script) {
		i = len(s.script) - 1
	}
	s.calls++
	return s.script[i].out, s.script[i].err
}

func newTestResilient(inner Processor, b *Breaker) (*Resilient, *[]time.Duration) {
	r := NewResilient(inner, b, 2, time.Second)
	var slept []time.Duration
	r.sleepFunc = func(d time.Duration) { slept = append(slept, d) }
	return r, &slept
}

var transient = errors.New("connection refused")

func TestResilient_SuccessPassesThrough(t *testing.T) {
	inner := &scriptedProcessor{script: []scriptedResult{{out: Success()}}}
	r, slept := newTestResilient(inner, NewBreaker(3, 30*time.Second))

	out := r.Process(context.Background(), payments.Payment{ID: "p1"})
	if out.Status != payments.StatusCompleted {
		t.Fatalf("expected Completed, got %+v", out)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 call, got %d", inner.calls)
	}
	if len(*slept) != 0 {
		t.Fatalf("expected no backoff, slept %v", *slept)
	}
}

func TestResilient_RetriesTransientThenSucceeds(t *testing.T) {
	inner := &scriptedProcessor{script: []scriptedResult{
		{err: transient},
		{out: InProgress()},
	}}
	b := NewBreaker(3, 30*time.Second)
	r, slept := newTestResilient(inner, b)

	out := r.Process(context.Background(), payments.Payment{ID: "p1"})
	if out.Status != payments.StatusProcessing {
		t.Fatalf("expected Processing, got %+v", out)
	}
	if inner.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", inner.calls)
	}
	if len(*slept) != 1 || (*slept)[0] != 2*time.Second {
		t.Fatalf("expected one 2s backoff, got %v", *slept)
	}
	if b.State() != StateClosed {
		t.Fatalf("a recovered call must not count as a breaker failure")
	}
}

func TestResilient_ExhaustedRetriesFail(t *testing.T) {
	inner := &scriptedProcessor{script: []scriptedResult{{err: transient}}}
	b := NewBreaker(3, 30*time.Second)
	r, slept := newTestResilient(inner, b)

	out := r.Process(context.Background(), payments.Payment{ID: "p1"})
	if out.Status != payments.StatusFailed {
		t.Fatalf("expected Failed, got %+v", out)
	}
	if !strings.Contains(out.Reason, "connection refused") {
		t.Fatalf("expected last fault in reason, got %q", out.Reason)
	}
	if inner.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", inner.calls)
	}
	// exponential backoff before each retry
	if len(*slept) != 2 || (*slept)[0] != 2*time.Second || (*slept)[1] != 4*time.Second {
		t.Fatalf("expected 2s then 4s backoff, got %v", *slept)
	}
	if b.cur.Load().failures != 1 {
		t.Fatalf("one logical invocation must record one breaker failure, got %d", b.cur.Load().failures)
	}
}

func TestResilient_RejectionNotRetriedNotCounted(t *testing.T) {
	inner := &scriptedProcessor{script: []scriptedResult{{out: Rejected("insufficient funds")}}}
	b := NewBreaker(3, 30*time.Second)
	b.RecordFailure()
	r, _ := newTestResilient(inner, b)

	out := r.Process(context.Background(), payments.Payment{ID: "p1"})
	if out.Status != payments.StatusRejected || out.Reason != "insufficient funds" {
		t.Fatalf("expected rejection to pass through, got %+v", out)
	}
	if inner.calls != 1 {
		t.Fatalf("a rejection must not be retried, got %d calls", inner.calls)
	}
	if b.cur.Load().failures != 0 {
		t.Fatalf("an answered call must reset the failure streak")
	}
}

func TestResilient_OpenBreakerFailsFast(t *testing.T) {
	inner := &scriptedProcessor{script: []scriptedResult{{err: transient}}}
	b := NewBreaker(1, 30*time.Second)
	r, _ := newTestResilient(inner, b)

	// first call trips the breaker
	r.Process(context.Background(), payments.Payment{ID: "p1"})
	calls := inner.calls

	out := r.Process(context.Background(), payments.Payment{ID: "p2"})
	if out.Status != payments.StatusFailed || out.Reason != BreakerOpenReason {
		t.Fatalf("expected breaker-open failure, got %+v", out)
	}
	if inner.calls != calls {
		t.Fatalf("open breaker must not invoke the processor")
	}
}
