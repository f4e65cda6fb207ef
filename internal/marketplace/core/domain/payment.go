package domain

import (
	"slices"
	"time"
)

// Order is issued once per checkout attempt and never updated; a retry
// creates a new one. ID is the gateway order identifier.
type Order struct {
	ID        string
	Receipt   string
	Currency  string
	Amount    int64
	UserID    string
	CourseIDs []string
	CreatedAt time.Time
}

// Covers reports whether every course in ids was paid for by this order.
func (o Order) Covers(ids []string) bool {
	for _, id := range ids {
		if !slices.Contains(o.CourseIDs, id) {
			return false
		}
	}
	return true
}

// PaymentConfirmation is produced by the gateway widget and consumed
// exactly once by verification.
type PaymentConfirmation struct {
	PaymentID string
	OrderID   string
	Signature string
}

func (p PaymentConfirmation) Complete() bool {
	return p.PaymentID != "" && p.OrderID != "" && p.Signature != ""
}

type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
}

// PaymentReceipt is the payload handed to the mail dispatcher.
type PaymentReceipt struct {
	ReceiptID string    `json:"receiptId"`
	OrderID   string    `json:"orderId"`
	PaymentID string    `json:"paymentId"`
	Amount    int64     `json:"amount"`
	UserID    string    `json:"userId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
}
