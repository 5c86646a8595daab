package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/payflow/payment-service/internal/awsx"
	"github.com/payflow/payment-service/internal/payments"
	"github.com/payflow/payment-service/internal/processor"
)

// Processor is the resilient invocation the service needs: one call, one
// outcome, no errors to classify here.
type Processor interface {
	Process(ctx context.Context, p payments.Payment) processor.Outcome
}

// CreateInput is the validated create request.
type CreateInput struct {
	ReferenceID string
	Amount      float64
	Currency    string
}

// CreateResult carries the payment plus whether it already existed, so the
// boundary can choose between 201 and 200.
type CreateResult struct {
	Payment  payments.Payment
	Existing bool
}

// PaymentService orchestrates the create workflow: store dedup, resilient
// processing, outcome persistence, and outcome-to-result mapping.
type PaymentService struct {
	store     payments.Store
	processor Processor
	publisher *awsx.Publisher
	metrics   *awsx.Metrics
	nowFunc   func() time.Time
	newID     func() string
}

// NewPaymentService wires the orchestrator. publisher and metrics may be nil.
func NewPaymentService(store payments.Store, proc Processor, publisher *awsx.Publisher, metrics *awsx.Metrics) *PaymentService {
	return &PaymentService{
		store:     store,
		processor: proc,
		publisher: publisher,
		metrics:   metrics,
		nowFunc:   time.Now,
		newID:     uuid.NewString,
	}
}

// Create creates and processes a payment, or returns the existing payment for
// a duplicate reference. The store's uniqueness constraint is the authority
// on races: a rejected insert means re-read and return the winner's row,
// with zero extra processor calls.
func (s *PaymentService) Create(ctx context.Context, in CreateInput) (*CreateResult, error) {
	existing, err := s.store.GetByReference(ctx, in.ReferenceID)
	if err != nil {
		return nil, fmt.Errorf("lookup reference: %w", err)
	}
	if existing != nil {
		return &CreateResult{Payment: *existing, Existing: true}, nil
	}

	now := s.nowFunc().UTC()
	payment := payments.Payment{
		ID:          s.newID(),
		ReferenceID: in.ReferenceID,
		Amount:      in.Amount,
		Currency:    strings.ToUpper(in.Currency),
		Status:      payments.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.store.Create(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	if !created {
		// lost the insert race; the winner's row is authoritative
		raceExisting, err := s.store.GetByReference(ctx, in.ReferenceID)
		if err != nil {
			return nil, fmt.Errorf("lookup reference after lost race: %w", err)
		}
		if raceExisting == nil {
			return nil, fmt.Errorf("insert conflict for reference %s but no row found", in.ReferenceID)
		}
		return &CreateResult{Payment: *raceExisting, Existing: true}, nil
	}

	outcome := s.processor.Process(ctx, payment)

	if err := s.store.UpdateStatus(ctx, payment.ReferenceID, outcome.Status, outcome.Reason); err != nil {
		return nil, fmt.Errorf("persist outcome: %w", err)
	}
	payment.Status = outcome.Status
	payment.FailureReason = outcome.Reason
	payment.UpdatedAt = s.nowFunc().UTC()

	s.metrics.CountOutcome(ctx, outcome.Status)
	s.publishEvent(ctx, payment)

	switch outcome.Status {
	case payments.StatusRejected:
		return nil, PaymentRejected(outcome.Reason)
	case payments.StatusFailed:
		return nil, ErrServiceUnavailable
	default:
		return &CreateResult{Payment: payment, Existing: false}, nil
	}
}

// GetByID returns the payment with the given id, or ErrNotFound.
func (s *PaymentService) GetByID(ctx context.Context, id string) (*payments.Payment, error) {
	p, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get by id: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetByReference returns the payment for the business reference, or ErrNotFound.
func (s *PaymentService) GetByReference(ctx context.Context, referenceID string) (*payments.Payment, error) {
	p, err := s.store.GetByReference(ctx, referenceID)
	if err != nil {
		return nil, fmt.Errorf("get by reference: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *PaymentService) publishEvent(ctx context.Context, p payments.Payment) {
	err := s.publisher.SendPaymentEvent(ctx, awsx.PaymentEvent{
		PaymentID:   p.ID,
		ReferenceID: p.ReferenceID,
		Status:      p.Status,
		OccurredAt:  p.UpdatedAt.Format(time.RFC3339),
	}, map[string]string{
		"reference_id": p.ReferenceID,
	})
	if err != nil {
		log.Printf("[service] payment event publish failed for payment=%s: %v", p.ID, err)
	}
}
