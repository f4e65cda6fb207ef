package ports

import (
	"context"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

type OrderRepository interface {
	SaveOrder(ctx context.Context, o domain.Order) error
	// GetOrder returns domain.ErrOrderNotFound for unknown ids.
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	EnrolledIn(ctx context.Context, userID string, courseIDs []string) ([]string, error)
	// Enroll records every (user, course) pair atomically. Pairs that already
	// exist are left untouched.
	Enroll(ctx context.Context, userID string, courseIDs []string) error
}

type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// PaymentGateway is the server side of the remote gateway: it issues orders
// and validates the signature on widget confirmations.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error)
	VerifySignature(c domain.PaymentConfirmation) bool
}

type ReceiptPublisher interface {
	PublishReceipt(ctx context.Context, r domain.PaymentReceipt) error
}

// ConfirmationGuard makes a payment confirmation single-use.
type ConfirmationGuard interface {
	Claim(ctx context.Context, paymentID string) (bool, error)
	Release(ctx context.Context, paymentID string) error
}
