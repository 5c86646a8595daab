package payments

import "time"

// Payment statuses. A payment is created Pending and moved exactly once per
// create attempt to one of the other statuses after the processor answers.
const (
	StatusPending    = "Pending"
	StatusProcessing = "Processing"
	StatusCompleted  = "Completed"
	StatusRejected   = "Rejected"
	StatusFailed     = "Failed"
)

// Payment is the item stored in the payments DynamoDB table. The table is
// keyed by reference_id so the caller-supplied business key is unique by
// construction; the id-index GSI serves lookups by payment id.
type Payment struct {
	ID            string    `dynamodbav:"id" json:"id"`
	ReferenceID   string    `dynamodbav:"reference_id" json:"referenceId"` // PK
	Amount        float64   `dynamodbav:"amount" json:"amount"`
	Currency      string    `dynamodbav:"currency" json:"currency"`
	Status        string    `dynamodbav:"status" json:"status"`
	FailureReason string    `dynamodbav:"failure_reason,omitempty" json:"failureReason,omitempty"`
	CreatedAt     time.Time `dynamodbav:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `dynamodbav:"updated_at" json:"updatedAt"`
}
