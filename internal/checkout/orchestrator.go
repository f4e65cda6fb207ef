// Package checkout drives a course purchase from the purchaser's side:
// order creation, the gateway widget, verification and the receipt.
package checkout

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/jcmexdev/course-marketplace/internal/apiclient"
)

type Config struct {
	GatewayKey  string
	ScriptURL   string
	Merchant    string
	Description string
}

type Deps struct {
	API     API
	Scripts *ScriptLoader
	Widget  Widget
	UI      Notifier
	Cart    Cart
	Nav     Navigator
	Loading LoadingFlag
}

// Orchestrator runs one purchase at a time per call to BuyCourses. The
// receipt call it starts in the background is tracked; Wait blocks until
// it is done.
type Orchestrator struct {
	cfg Config
	d   Deps
	wg  sync.WaitGroup
}

func NewOrchestrator(cfg Config, d Deps) *Orchestrator {
	if cfg.ScriptURL == "" {
		cfg.ScriptURL = DefaultScriptURL
	}
	if cfg.Merchant == "" {
		cfg.Merchant = "Course Marketplace"
	}
	if cfg.Description == "" {
		cfg.Description = "Thank You for Purchasing the Course"
	}
	return &Orchestrator{cfg: cfg, d: d}
}

// BuyCourses returns nil once the purchaser is enrolled. Any other outcome
// is an *Error whose message has already been shown through the Notifier.
func (o *Orchestrator) BuyCourses(ctx context.Context, token string, courseIDs []string, p Purchaser) error {
	switch {
	case token == "":
		return o.reject(MsgTokenMissing, ErrInvalidInput)
	case len(courseIDs) == 0:
		return o.reject(MsgNoCourses, ErrInvalidInput)
	case strings.TrimSpace(p.FirstName) == "" || strings.TrimSpace(p.Email) == "":
		return o.reject(MsgUserIncomplete, ErrInvalidInput)
	}

	o.d.Loading.SetLoading(true)
	o.d.UI.Progress("Initializing payment...")

	if err := o.d.Scripts.Load(ctx, o.cfg.ScriptURL); err != nil {
		slog.ErrorContext(ctx, "gateway script load failed", "url", o.cfg.ScriptURL, "error", err)
		return o.fail(MsgGatewayLoad, err)
	}

	order, err := o.d.API.CapturePayment(ctx, token, courseIDs)
	if err != nil {
		slog.ErrorContext(ctx, "capture payment failed", "error", err)
		return o.fail(MsgPaymentGeneric, err)
	}
	if !order.Success {
		msg := order.Message
		if msg == "" {
			msg = MsgInitFailed
		}
		return o.fail(msg, ErrRejected)
	}
	slog.InfoContext(ctx, "order initialized", "order_id", order.Order.ID, "amount", order.Order.Amount)

	outcome, err := o.d.Widget.Open(ctx, WidgetOptions{
		Key:         o.cfg.GatewayKey,
		Amount:      order.Order.Amount,
		Currency:    order.Order.Currency,
		OrderID:     order.Order.ID,
		Name:        o.cfg.Merchant,
		Description: o.cfg.Description,
		Prefill:     p,
	})
	if err != nil {
		slog.ErrorContext(ctx, "gateway widget failed", "order_id", order.Order.ID, "error", err)
		return o.fail(MsgPaymentGeneric, err)
	}

	switch outcome.Kind {
	case OutcomeDismissed:
		o.d.Loading.SetLoading(false)
		o.d.UI.Info(MsgCancelled)
		return &Error{Message: MsgCancelled, Cause: ErrCancelled}
	case OutcomeFailed:
		desc := outcome.Description
		if desc == "" {
			desc = "Unknown error"
		}
		slog.WarnContext(ctx, "payment failed at gateway", "order_id", order.Order.ID, "description", outcome.Description)
		return o.fail("Payment failed: "+desc, ErrPaymentFailed)
	}

	conf := outcome.Confirmation
	if !conf.complete() {
		return o.fail(MsgResponseIncomplete, ErrPaymentFailed)
	}

	o.sendReceipt(ctx, token, conf, order.Order.Amount)
	return o.verify(ctx, token, conf, courseIDs)
}

// Wait blocks until background receipt calls have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

// sendReceipt is fire-and-forget: failures are logged, never shown, and
// never affect enrollment.
func (o *Orchestrator) sendReceipt(ctx context.Context, token string, conf Confirmation, amount int64) {
	ctx = context.WithoutCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		resp, err := o.d.API.SendPaymentSuccessEmail(ctx, token, apiclient.ReceiptRequest{
			OrderID:   conf.OrderID,
			PaymentID: conf.PaymentID,
			Amount:    amount,
		})
		if err != nil {
			slog.ErrorContext(ctx, "payment success email failed", "order_id", conf.OrderID, "error", err)
			return
		}
		if !resp.Success {
			slog.WarnContext(ctx, "payment success email rejected", "order_id", conf.OrderID, "message", resp.Message)
		}
	}()
}

// verify runs to completion even if ctx is cancelled after dispatch.
func (o *Orchestrator) verify(ctx context.Context, token string, conf Confirmation, courseIDs []string) error {
	o.d.UI.Progress("Verifying payment...")

	resp, err := o.d.API.VerifyPayment(context.WithoutCancel(ctx), token, apiclient.VerifyRequest{
		PaymentID: conf.PaymentID,
		OrderID:   conf.OrderID,
		Signature: conf.Signature,
		Courses:   courseIDs,
	})
	if err != nil {
		slog.ErrorContext(ctx, "payment verification call failed", "order_id", conf.OrderID, "error", err)
		return o.fail(MsgVerifyGeneric, err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = MsgVerifyFailed
		}
		return o.fail(msg, ErrRejected)
	}

	o.d.UI.Success(MsgPurchased)
	o.d.Nav.Navigate(EnrolledCoursesPath)
	o.d.Cart.Reset()
	o.d.Loading.SetLoading(false)
	return nil
}

// reject reports an input problem; loading was never set.
func (o *Orchestrator) reject(msg string, cause error) error {
	o.d.UI.Error(msg)
	return &Error{Message: msg, Cause: cause}
}

func (o *Orchestrator) fail(msg string, cause error) error {
	o.d.Loading.SetLoading(false)
	o.d.UI.Error(msg)
	return &Error{Message: msg, Cause: cause}
}
