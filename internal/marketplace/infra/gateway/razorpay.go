package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

// orderCreator is the slice of the Razorpay SDK used here.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Razorpay struct {
	orders orderCreator
	secret string
}

func NewRazorpay(keyID, keySecret string) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	return &Razorpay{orders: client.Order, secret: keySecret}
}

// CreateOrder registers amount (minor units) with the gateway and returns
// the gateway order id.
func (r *Razorpay) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := r.orders.Create(map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  receipt,
	}, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay create order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return "", errors.New("razorpay create order: response has no id")
	}
	return id, nil
}

// VerifySignature checks the widget signature: hex HMAC-SHA256 of
// "order_id|payment_id" keyed with the account secret.
func (r *Razorpay) VerifySignature(c domain.PaymentConfirmation) bool {
	if !c.Complete() {
		return false
	}
	expected := Sign(r.secret, c.OrderID, c.PaymentID)
	return hmac.Equal([]byte(expected), []byte(c.Signature))
}

// Sign produces the signature the gateway attaches to a confirmation.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
