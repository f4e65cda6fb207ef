package coordinator

import (
	"context"
	"fmt"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/ports"
)

// --- SignatureCheckStep ---

// SignatureCheckStep validates the gateway signature and that the order was
// issued to this user for these courses. It has no side effects.
type SignatureCheckStep struct {
	gateway      ports.PaymentGateway
	orders       ports.OrderRepository
	userID       string
	confirmation domain.PaymentConfirmation
	courseIDs    []string
}

func NewSignatureCheckStep(
	gateway ports.PaymentGateway,
	orders ports.OrderRepository,
	userID string,
	confirmation domain.PaymentConfirmation,
	courseIDs []string,
) *SignatureCheckStep {
	return &SignatureCheckStep{
		gateway:      gateway,
		orders:       orders,
		userID:       userID,
		confirmation: confirmation,
		courseIDs:    courseIDs,
	}
}

func (s *SignatureCheckStep) Name() string { return "Signature_Check_Step" }

func (s *SignatureCheckStep) Execute(ctx context.Context) error {
	if !s.gateway.VerifySignature(s.confirmation) {
		return domain.ErrInvalidSignature
	}
	order, err := s.orders.GetOrder(ctx, s.confirmation.OrderID)
	if err != nil {
		return err
	}
	if order.UserID != s.userID || !order.Covers(s.courseIDs) {
		return domain.ErrOrderMismatch
	}
	return nil
}

func (s *SignatureCheckStep) Compensate(ctx context.Context) error { return nil }

// --- ConfirmationClaimStep ---

type ConfirmationClaimStep struct {
	guard     ports.ConfirmationGuard
	paymentID string
}

func NewConfirmationClaimStep(guard ports.ConfirmationGuard, paymentID string) *ConfirmationClaimStep {
	return &ConfirmationClaimStep{guard: guard, paymentID: paymentID}
}

func (s *ConfirmationClaimStep) Name() string { return "Confirmation_Claim_Step" }

func (s *ConfirmationClaimStep) Execute(ctx context.Context) error {
	claimed, err := s.guard.Claim(ctx, s.paymentID)
	if err != nil {
		return fmt.Errorf("claim payment %s: %w", s.paymentID, err)
	}
	if !claimed {
		return domain.ErrConfirmationReplayed
	}
	return nil
}

// Compensate frees the claim so the purchaser can retry verification after a
// failed enrollment.
func (s *ConfirmationClaimStep) Compensate(ctx context.Context) error {
	return s.guard.Release(ctx, s.paymentID)
}

// --- EnrollmentStep ---

type EnrollmentStep struct {
	orders    ports.OrderRepository
	userID    string
	courseIDs []string
}

func NewEnrollmentStep(orders ports.OrderRepository, userID string, courseIDs []string) *EnrollmentStep {
	return &EnrollmentStep{orders: orders, userID: userID, courseIDs: courseIDs}
}

func (s *EnrollmentStep) Name() string { return "Enrollment_Step" }

func (s *EnrollmentStep) Execute(ctx context.Context) error {
	if err := s.orders.Enroll(ctx, s.userID, s.courseIDs); err != nil {
		return fmt.Errorf("enroll user %s: %w", s.userID, err)
	}
	return nil
}

// Compensate is empty: enrollment is the last step and runs in a single
// transaction.
func (s *EnrollmentStep) Compensate(ctx context.Context) error { return nil }
