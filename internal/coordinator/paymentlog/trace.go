package paymentlog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
)

var ErrNotFound = errors.New("paymentlog: entry not found")

// Run carries the identifiers shared by every entry of one verification.
type Run struct {
	OrderID   string
	PaymentID string
	UserID    string
}

func (r Run) SagaID() string {
	return r.OrderID + "/" + r.PaymentID
}

// NewEntry builds an entry stamped with the trace and span ids active in
// ctx. Both ids are empty when ctx carries no valid span.
func NewEntry(ctx context.Context, run Run, status Status, step, payload string, errs []string, now time.Time) *Entry {
	sc := trace.SpanFromContext(ctx).SpanContext()

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	e := &Entry{
		SagaID:        run.SagaID(),
		OrderID:       run.OrderID,
		PaymentID:     run.PaymentID,
		UserID:        run.UserID,
		Status:        status,
		CurrentStep:   step,
		Payload:       payload,
		ErrorMessages: errJSON,
		UpdatedAt:     now.UTC(),
	}
	if sc.IsValid() {
		e.TraceID = sc.TraceID().String()
		e.SpanID = sc.SpanID().String()
	}
	return e
}
