package validation

// CreatePaymentRequest is the payload for POST /payments. Rules beyond the
// tags (two-decimal amounts, supported currency, reference charset) are
// registered in New.
type CreatePaymentRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0,lte=1000000"`
	Currency    string  `json:"currency" validate:"required,len=3"`
	ReferenceID string  `json:"referenceId" validate:"required,max=100"`
}
