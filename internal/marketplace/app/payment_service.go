package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/jcmexdev/course-marketplace/internal/clock"
	"github.com/jcmexdev/course-marketplace/internal/coordinator"
	"github.com/jcmexdev/course-marketplace/internal/coordinator/paymentlog"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/ports"
)

// PaymentService backs the three payment endpoints: order capture,
// confirmation verification and the receipt notification.
type PaymentService struct {
	orders   ports.OrderRepository
	catalog  ports.CatalogRepository
	users    ports.UserDirectory
	gateway  ports.PaymentGateway
	guard    ports.ConfirmationGuard
	receipts ports.ReceiptPublisher
	log      paymentlog.Repository // nil-safe: verification transitions not persisted
	clock    clock.Clock
	currency string
}

type PaymentDeps struct {
	Orders   ports.OrderRepository
	Catalog  ports.CatalogRepository
	Users    ports.UserDirectory
	Gateway  ports.PaymentGateway
	Guard    ports.ConfirmationGuard
	Receipts ports.ReceiptPublisher
	Log      paymentlog.Repository
	Clock    clock.Clock
	Currency string
}

func NewPaymentService(d PaymentDeps) *PaymentService {
	currency := d.Currency
	if currency == "" {
		currency = "INR"
	}
	clk := d.Clock
	if clk == nil {
		clk = clock.NewSystem()
	}
	return &PaymentService{
		orders:   d.Orders,
		catalog:  d.Catalog,
		users:    d.Users,
		gateway:  d.Gateway,
		guard:    d.Guard,
		receipts: d.Receipts,
		log:      d.Log,
		clock:    clk,
		currency: currency,
	}
}

// CaptureOrder prices the requested courses and issues a gateway order for
// them. A user can not buy a course they are already enrolled in.
func (s *PaymentService) CaptureOrder(ctx context.Context, userID string, courseIDs []string) (*domain.Order, error) {
	courseIDs = dedupe(courseIDs)
	if len(courseIDs) == 0 {
		return nil, domain.ErrNoCoursesSelected
	}

	courses, err := s.catalog.GetCourses(ctx, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("load courses: %w", err)
	}
	byID := make(map[string]domain.Course, len(courses))
	for _, c := range courses {
		byID[c.ID] = c
	}

	var amount int64
	for _, id := range courseIDs {
		c, ok := byID[id]
		if !ok || !c.IsPublished() {
			return nil, domain.ErrCourseNotFound
		}
		amount += c.Price
	}

	enrolled, err := s.orders.EnrolledIn(ctx, userID, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if len(enrolled) > 0 {
		return nil, domain.ErrAlreadyEnrolled
	}

	receipt := uuid.NewString()
	gatewayID, err := s.gateway.CreateOrder(ctx, amount, s.currency, receipt)
	if err != nil {
		slog.ErrorContext(ctx, "gateway order creation failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}

	order := domain.Order{
		ID:        gatewayID,
		Receipt:   receipt,
		Currency:  s.currency,
		Amount:    amount,
		UserID:    userID,
		CourseIDs: courseIDs,
		CreatedAt: s.clock.Now(),
	}
	if err := s.orders.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	slog.InfoContext(ctx, "order captured", "order_id", order.ID, "user_id", userID, "amount", amount, "courses", len(courseIDs))
	return &order, nil
}

// verificationPayload is what the STARTED log entry records.
type verificationPayload struct {
	OrderID   string   `json:"orderId"`
	PaymentID string   `json:"paymentId"`
	Courses   []string `json:"courses"`
}

// VerifyPayment checks the confirmation and enrolls the purchaser. It runs
// on a context detached from cancellation: once dispatched, verification
// always runs to completion or failure.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID string, conf domain.PaymentConfirmation, courseIDs []string) error {
	courseIDs = dedupe(courseIDs)
	if !conf.Complete() || len(courseIDs) == 0 {
		return domain.ErrConfirmationMissing
	}

	ctx = context.WithoutCancel(ctx)
	run := paymentlog.Run{OrderID: conf.OrderID, PaymentID: conf.PaymentID, UserID: userID}
	steps := []coordinator.Step{
		coordinator.NewSignatureCheckStep(s.gateway, s.orders, userID, conf, courseIDs),
		coordinator.NewConfirmationClaimStep(s.guard, conf.PaymentID),
		coordinator.NewEnrollmentStep(s.orders, userID, courseIDs),
	}
	saga := coordinator.NewOrchestrator(run, steps, s.log).WithClock(s.clock.Now)

	err := saga.Start(ctx, verificationPayload{OrderID: conf.OrderID, PaymentID: conf.PaymentID, Courses: courseIDs})
	if err != nil {
		slog.WarnContext(ctx, "payment verification failed", "order_id", conf.OrderID, "payment_id", conf.PaymentID, "error", err)
		return err
	}
	return nil
}

// VerificationStatus returns the latest payment log entry for an order owned
// by userID.
func (s *PaymentService) VerificationStatus(ctx context.Context, userID, orderID string) (*paymentlog.Entry, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	if s.log == nil {
		return nil, domain.ErrVerificationNotFound
	}
	entry, err := s.log.LatestForOrder(ctx, orderID)
	if errors.Is(err, paymentlog.ErrNotFound) {
		return nil, domain.ErrVerificationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read payment log: %w", err)
	}
	return entry, nil
}

type ReceiptInput struct {
	OrderID   string
	PaymentID string
	Amount    int64
}

// SendReceipt hands a purchase receipt to the mail dispatcher. The order
// must belong to userID and match the amount.
func (s *PaymentService) SendReceipt(ctx context.Context, userID string, in ReceiptInput) error {
	if in.OrderID == "" || in.PaymentID == "" || in.Amount <= 0 || userID == "" {
		return domain.ErrReceiptFieldMissing
	}

	// Receipts only go out for the caller's own order at the amount charged.
	order, err := s.orders.GetOrder(ctx, in.OrderID)
	if err != nil {
		return err
	}
	if order.UserID != userID {
		return domain.ErrOrderNotFound
	}
	if order.Amount != in.Amount {
		return domain.ErrOrderMismatch
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	receipt := domain.PaymentReceipt{
		ReceiptID: uuid.NewString(),
		OrderID:   in.OrderID,
		PaymentID: in.PaymentID,
		Amount:    in.Amount,
		UserID:    user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		IssuedAt:  s.clock.Now(),
	}
	if err := s.receipts.PublishReceipt(ctx, receipt); err != nil {
		return fmt.Errorf("publish receipt: %w", err)
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
