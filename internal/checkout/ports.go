package checkout

import (
	"context"

	"github.com/jcmexdev/course-marketplace/internal/apiclient"
)

// API is the subset of the marketplace client the orchestrator calls.
type API interface {
	CapturePayment(ctx context.Context, token string, courses []string) (*apiclient.CaptureResponse, error)
	VerifyPayment(ctx context.Context, token string, req apiclient.VerifyRequest) (*apiclient.Envelope, error)
	SendPaymentSuccessEmail(ctx context.Context, token string, req apiclient.ReceiptRequest) (*apiclient.Envelope, error)
}

type Purchaser struct {
	FirstName string
	Email     string
}

// Confirmation is what the gateway widget returns on success.
type Confirmation struct {
	PaymentID string
	OrderID   string
	Signature string
}

func (c Confirmation) complete() bool {
	return c.PaymentID != "" && c.OrderID != "" && c.Signature != ""
}

type WidgetOptions struct {
	Key         string
	Amount      int64
	Currency    string
	OrderID     string
	Name        string
	Description string
	Prefill     Purchaser
}

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeDismissed
	OutcomeFailed
)

// Outcome is how the hosted widget session ended. Description is set for
// OutcomeFailed when the gateway supplies one.
type Outcome struct {
	Kind         OutcomeKind
	Confirmation Confirmation
	Description  string
}

// Widget opens the gateway's hosted checkout and blocks until the
// purchaser pays, dismisses it or the gateway reports a failure.
type Widget interface {
	Open(ctx context.Context, opts WidgetOptions) (Outcome, error)
}

// Notifier shows transient messages to the purchaser.
type Notifier interface {
	Progress(msg string)
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

type Cart interface {
	Reset()
}

type Navigator interface {
	Navigate(path string)
}

type LoadingFlag interface {
	SetLoading(loading bool)
}
