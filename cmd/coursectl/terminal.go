package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/jcmexdev/course-marketplace/internal/checkout"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/gateway"
)

// terminalWidget stands in for the hosted checkout. It prints the order
// and reads the gateway confirmation from in. An empty payment id is a
// dismissal.
type terminalWidget struct {
	in            *bufio.Reader
	out           io.Writer
	sandboxSecret string
}

func (w *terminalWidget) Open(ctx context.Context, opts checkout.WidgetOptions) (checkout.Outcome, error) {
	fmt.Fprintf(w.out, "%s: %s\n", opts.Name, opts.Description)
	fmt.Fprintf(w.out, "  order    %s\n  amount   %s\n  payer    %s <%s>\n",
		opts.OrderID, formatAmount(opts.Amount, opts.Currency), opts.Prefill.FirstName, opts.Prefill.Email)

	if w.sandboxSecret != "" {
		paymentID := "pay_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14]
		return checkout.Outcome{
			Kind: checkout.OutcomeSuccess,
			Confirmation: checkout.Confirmation{
				PaymentID: paymentID,
				OrderID:   opts.OrderID,
				Signature: gateway.Sign(w.sandboxSecret, opts.OrderID, paymentID),
			},
		}, nil
	}

	paymentID, err := w.prompt(ctx, "payment id (empty to cancel): ")
	if err != nil {
		return checkout.Outcome{}, err
	}
	if paymentID == "" {
		return checkout.Outcome{Kind: checkout.OutcomeDismissed}, nil
	}
	signature, err := w.prompt(ctx, "signature: ")
	if err != nil {
		return checkout.Outcome{}, err
	}
	return checkout.Outcome{
		Kind: checkout.OutcomeSuccess,
		Confirmation: checkout.Confirmation{
			PaymentID: paymentID,
			OrderID:   opts.OrderID,
			Signature: signature,
		},
	}, nil
}

func (w *terminalWidget) prompt(ctx context.Context, label string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(w.out, label)
	line, err := w.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type terminalUI struct {
	out io.Writer
}

func (u terminalUI) Progress(msg string) { fmt.Fprintf(u.out, "... %s\n", msg) }
func (u terminalUI) Info(msg string)     { fmt.Fprintf(u.out, "i   %s\n", msg) }
func (u terminalUI) Success(msg string)  { fmt.Fprintf(u.out, "ok  %s\n", msg) }
func (u terminalUI) Error(msg string)    { fmt.Fprintf(u.out, "err %s\n", msg) }

// session carries the cart and the route the purchaser ends up on.
type session struct {
	out     io.Writer
	cart    []string
	loading bool
}

func (s *session) Reset()                  { s.cart = nil }
func (s *session) SetLoading(loading bool) { s.loading = loading }
func (s *session) Navigate(path string)    { fmt.Fprintf(s.out, "->  %s\n", path) }

func formatAmount(minor int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", minor/100, minor%100, currency)
}
