// Package apiclient is the HTTP client for the marketplace API used by the
// checkout and catalog packages.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const apiPrefix = "/api/v1"

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the default client, whose transport propagates
// the trace context.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

// New returns a client for the server at baseURL. The /api/v1 prefix is
// added per request, so a baseURL that already ends with it is accepted.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(strings.TrimRight(baseURL, "/"), apiPrefix),
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Envelope is the generic {success, message} body.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type CategorySummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Review struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

type Course struct {
	ID               string    `json:"id"`
	Name             string    `json:"courseName"`
	Description      string    `json:"courseDescription"`
	Price            int64     `json:"price"`
	Status           string    `json:"status"`
	CategoryID       string    `json:"category"`
	StudentsEnrolled int       `json:"studentsEnrolled"`
	Reviews          []Review  `json:"ratingAndReviews"`
	CreatedAt        time.Time `json:"createdAt"`
}

type Category struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Courses     []Course `json:"course"`
}

type CategoryPage struct {
	Success          bool      `json:"success"`
	Message          string    `json:"message"`
	SelectedCourses  Category  `json:"selectedCourses"`
	DifferentCourses *Category `json:"differentCourses"`
	MostSelling      []Course  `json:"mostSellingCourses"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
}

type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CaptureResponse carries either the order (success) or the server's
// message (failure) in the same "message" field.
type CaptureResponse struct {
	Success bool
	Order   Order
	Message string
}

func (r *CaptureResponse) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success bool            `json:"success"`
		Message json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	r.Success = raw.Success
	if len(raw.Message) == 0 {
		return nil
	}
	if raw.Message[0] == '"' {
		return json.Unmarshal(raw.Message, &r.Message)
	}
	return json.Unmarshal(raw.Message, &r.Order)
}

type VerifyRequest struct {
	PaymentID string   `json:"razorpay_payment_id"`
	OrderID   string   `json:"razorpay_order_id"`
	Signature string   `json:"razorpay_signature"`
	Courses   []string `json:"courses"`
}

type ReceiptRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Amount    int64  `json:"amount"`
}

func (c *Client) ListCategories(ctx context.Context) ([]CategorySummary, error) {
	var out struct {
		Envelope
		Data []CategorySummary `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/course/showAllCategories", "", nil, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, fmt.Errorf("list categories: %s", out.Message)
	}
	return out.Data, nil
}

// CategoryPageDetails returns the page body as sent; a success=false body
// is not an error.
func (c *Client) CategoryPageDetails(ctx context.Context, categoryID string) (*CategoryPage, error) {
	var out CategoryPage
	body := map[string]string{"categoryId": categoryID}
	if err := c.do(ctx, http.MethodPost, "/course/getCategoryPageDetails", "", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateCategory(ctx context.Context, token, name, description string) (*Envelope, error) {
	var out Envelope
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, http.MethodPost, "/course/createCategory", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CapturePayment(ctx context.Context, token string, courses []string) (*CaptureResponse, error) {
	var out CaptureResponse
	body := map[string][]string{"courses": courses}
	if err := c.do(ctx, http.MethodPost, "/payment/capturePayment", token, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) VerifyPayment(ctx context.Context, token string, req VerifyRequest) (*Envelope, error) {
	var out Envelope
	if err := c.do(ctx, http.MethodPost, "/payment/verifyPayment", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) SendPaymentSuccessEmail(ctx context.Context, token string, req ReceiptRequest) (*Envelope, error) {
	var out Envelope
	if err := c.do(ctx, http.MethodPost, "/payment/sendPaymentSuccessEmail", token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends body as JSON and decodes the response into out whatever the
// status code, so server messages on 4xx/5xx reach the caller. A response
// that is not JSON is an error.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("build %s: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: status %d: decode: %w", method, path, resp.StatusCode, err)
	}
	return nil
}
