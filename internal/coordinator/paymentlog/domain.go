// Package paymentlog is the durable audit trail of payment verifications.
//
// Every state transition of a verification saga is appended as one entry,
// keyed by the gateway order id, so support can answer "was this payment
// enrolled?" and jump from the entry to the distributed trace.
package paymentlog

import "time"

type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is one row of the payment_logs table.
type Entry struct {
	// SagaID identifies one verification run: "<order id>/<payment id>".
	SagaID    string
	OrderID   string
	PaymentID string
	UserID    string

	Status      Status
	CurrentStep string

	// Payload is the JSON-encoded verification request, written on STARTED only.
	Payload string

	// ErrorMessages is a JSON array of failure details.
	ErrorMessages string

	TraceID   string
	SpanID    string
	UpdatedAt time.Time
}

func (e Entry) Terminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusFailed
}
