package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/course-marketplace/internal/coordinator/paymentlog"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/app"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
	"github.com/jcmexdev/course-marketplace/internal/pkg/reqctx"
)

type PaymentService interface {
	CaptureOrder(ctx context.Context, userID string, courseIDs []string) (*domain.Order, error)
	VerifyPayment(ctx context.Context, userID string, conf domain.PaymentConfirmation, courseIDs []string) error
	VerificationStatus(ctx context.Context, userID, orderID string) (*paymentlog.Entry, error)
	SendReceipt(ctx context.Context, userID string, in app.ReceiptInput) error
}

type PaymentHandler struct {
	payments PaymentService
}

func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) CapturePayment(w http.ResponseWriter, r *http.Request) {
	p, _ := reqctx.PrincipalFrom(r.Context())

	var req CapturePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Please provide Course ID")
		return
	}

	order, err := h.payments.CaptureOrder(r.Context(), p.UserID, req.Courses)
	switch {
	case errors.Is(err, domain.ErrNoCoursesSelected):
		writeMessage(w, http.StatusBadRequest, false, "Please provide Course ID")
	case errors.Is(err, domain.ErrCourseNotFound):
		writeMessage(w, http.StatusNotFound, false, "Could not find the Course")
	case errors.Is(err, domain.ErrAlreadyEnrolled):
		writeMessage(w, http.StatusBadRequest, false, "Student is already Enrolled")
	case err != nil:
		slog.ErrorContext(r.Context(), "capture payment failed", "user_id", p.UserID, "error", err)
		writeMessage(w, http.StatusInternalServerError, false, "Could not initiate order.")
	default:
		writeJSON(w, http.StatusOK, CapturePaymentResponse{
			Success: true,
			Message: OrderDTO{ID: order.ID, Amount: order.Amount, Currency: order.Currency, Receipt: order.Receipt},
		})
	}
}

func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	p, _ := reqctx.PrincipalFrom(r.Context())

	var req VerifyPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Payment Failed")
		return
	}

	conf := domain.PaymentConfirmation{PaymentID: req.PaymentID, OrderID: req.OrderID, Signature: req.Signature}
	err := h.payments.VerifyPayment(r.Context(), p.UserID, conf, req.Courses)
	switch {
	case err == nil:
		writeMessage(w, http.StatusOK, true, "Payment Verified")
	case errors.Is(err, domain.ErrConfirmationReplayed):
		writeMessage(w, http.StatusConflict, false, "Payment already verified")
	case errors.Is(err, domain.ErrConfirmationMissing),
		errors.Is(err, domain.ErrInvalidSignature),
		errors.Is(err, domain.ErrOrderMismatch),
		errors.Is(err, domain.ErrOrderNotFound):
		writeMessage(w, http.StatusBadRequest, false, "Payment Failed")
	default:
		writeInternal(w, r, err)
	}
}

func (h *PaymentHandler) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := reqctx.PrincipalFrom(r.Context())

	entry, err := h.payments.VerificationStatus(r.Context(), p.UserID, chi.URLParam(r, "orderId"))
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		writeMessage(w, http.StatusNotFound, false, "Order not found")
	case errors.Is(err, domain.ErrVerificationNotFound):
		writeMessage(w, http.StatusNotFound, false, "Payment not verified yet")
	case err != nil:
		writeInternal(w, r, err)
	default:
		writeJSON(w, http.StatusOK, Envelope{Success: true, Message: string(entry.Status), Data: mapVerification(entry)})
	}
}

func (h *PaymentHandler) SendPaymentSuccessEmail(w http.ResponseWriter, r *http.Request) {
	p, _ := reqctx.PrincipalFrom(r.Context())

	var req ReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Please provide all the details")
		return
	}

	err := h.payments.SendReceipt(r.Context(), p.UserID, app.ReceiptInput{
		OrderID:   req.OrderID,
		PaymentID: req.PaymentID,
		Amount:    req.Amount,
	})
	switch {
	case errors.Is(err, domain.ErrReceiptFieldMissing):
		writeMessage(w, http.StatusBadRequest, false, "Please provide all the details")
	case errors.Is(err, domain.ErrOrderNotFound), errors.Is(err, domain.ErrOrderMismatch):
		slog.WarnContext(r.Context(), "receipt rejected", "user_id", p.UserID, "order_id", req.OrderID, "error", err)
		writeMessage(w, http.StatusBadRequest, false, "Could not send email")
	case err != nil:
		slog.ErrorContext(r.Context(), "receipt dispatch failed", "user_id", p.UserID, "order_id", req.OrderID, "error", err)
		writeMessage(w, http.StatusBadRequest, false, "Could not send email")
	default:
		writeMessage(w, http.StatusOK, true, "Payment success email sent")
	}
}
