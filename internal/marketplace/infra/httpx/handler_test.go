package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/course-marketplace/internal/coordinator/paymentlog"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/app"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/infra/httpx/middlewares"
)

var jwtSecret = []byte("handler-secret")

type stubCatalog struct {
	created  []app.CreateCategoryInput
	createFn func(app.CreateCategoryInput) error
	list     []domain.CategorySummary
	listErr  error
	page     *domain.CategoryPage
	pageErr  error
}

func (s *stubCatalog) CreateCategory(_ context.Context, in app.CreateCategoryInput) (domain.Category, error) {
	s.created = append(s.created, in)
	if s.createFn != nil {
		if err := s.createFn(in); err != nil {
			return domain.Category{}, err
		}
	}
	return domain.Category{ID: "new", Name: in.Name}, nil
}

func (s *stubCatalog) ListCategories(context.Context) ([]domain.CategorySummary, error) {
	return s.list, s.listErr
}

func (s *stubCatalog) CategoryPageDetails(context.Context, string) (*domain.CategoryPage, error) {
	return s.page, s.pageErr
}

type stubPayments struct {
	userID     string
	order      *domain.Order
	captureErr error
	verifyErr  error
	conf       domain.PaymentConfirmation
	entry      *paymentlog.Entry
	statusErr  error
	receipt    app.ReceiptInput
	receiptErr error
}

func (s *stubPayments) CaptureOrder(_ context.Context, userID string, _ []string) (*domain.Order, error) {
	s.userID = userID
	return s.order, s.captureErr
}

func (s *stubPayments) VerifyPayment(_ context.Context, userID string, conf domain.PaymentConfirmation, _ []string) error {
	s.userID = userID
	s.conf = conf
	return s.verifyErr
}

func (s *stubPayments) VerificationStatus(_ context.Context, userID, _ string) (*paymentlog.Entry, error) {
	s.userID = userID
	return s.entry, s.statusErr
}

func (s *stubPayments) SendReceipt(_ context.Context, userID string, in app.ReceiptInput) error {
	s.userID = userID
	s.receipt = in
	return s.receiptErr
}

func newTestRouter(c *stubCatalog, p *stubPayments) http.Handler {
	return NewRouter(RouterConfig{JWTSecret: jwtSecret, AllowedOrigins: []string{"*"}},
		NewCategoryHandler(c), NewPaymentHandler(p))
}

func bearer(t *testing.T, id, accountType string) string {
	t.Helper()
	tok, err := middlewares.IssueToken(jwtSecret, middlewares.Claims{ID: id, Email: id + "@x.io", AccountType: accountType})
	require.NoError(t, err)
	return "Bearer " + tok
}

func do(h http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	rec := do(newTestRouter(&stubCatalog{}, &stubPayments{}), http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCategoryRoutes(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		c := &stubCatalog{list: []domain.CategorySummary{{ID: "web", Name: "Web Dev", Description: "d"}}}
		rec := do(newTestRouter(c, &stubPayments{}), http.MethodGet, "/api/v1/course/showAllCategories", "", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":"All tags received","data":[{"id":"web","name":"Web Dev","description":"d"}]}`, rec.Body.String())
	})

	t.Run("create requires admin", func(t *testing.T) {
		c := &stubCatalog{}
		h := newTestRouter(c, &stubPayments{})
		body := `{"name":"Web","description":"d"}`

		assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/v1/course/createCategory", "", body).Code)
		assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/api/v1/course/createCategory", bearer(t, "u1", "Student"), body).Code)
		assert.Empty(t, c.created)

		rec := do(h, http.MethodPost, "/api/v1/course/createCategory", bearer(t, "a1", "Admin"), body)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Categories created successfully", decode(t, rec)["message"])
	})

	t.Run("create missing field", func(t *testing.T) {
		c := &stubCatalog{createFn: func(app.CreateCategoryInput) error { return domain.ErrCategoryFieldMissing }}
		rec := do(newTestRouter(c, &stubPayments{}), http.MethodPost, "/api/v1/course/createCategory", bearer(t, "a1", "Admin"), `{"name":"Web"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Tag name or description not available", decode(t, rec)["message"])
	})

	detail := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "unknown category", err: domain.ErrCategoryNotFound, wantStatus: http.StatusNotFound, wantMsg: "Category not found"},
		{name: "no courses", err: domain.ErrNoCoursesInCategory, wantStatus: http.StatusNotFound, wantMsg: "No courses found for the selected category."},
		{name: "storage failure", err: errors.New("pq: connection refused on 10.0.0.5"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}
	for _, tt := range detail {
		t.Run("detail "+tt.name, func(t *testing.T) {
			c := &stubCatalog{pageErr: tt.err}
			rec := do(newTestRouter(c, &stubPayments{}), http.MethodPost, "/api/v1/course/getCategoryPageDetails", "", `{"categoryId":"x"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.wantMsg, body["message"])
			assert.NotContains(t, rec.Body.String(), "10.0.0.5")
		})
	}

	t.Run("detail success", func(t *testing.T) {
		c := &stubCatalog{page: &domain.CategoryPage{
			Selected:    domain.Category{ID: "web", Name: "Web", Description: "d", Courses: []domain.Course{{ID: "c1", Status: domain.CoursePublished}}},
			MostSelling: []domain.Course{{ID: "c9", StudentsEnrolled: 40}},
		}}
		rec := do(newTestRouter(c, &stubPayments{}), http.MethodPost, "/api/v1/course/getCategoryPageDetails", "", `{"categoryId":"web"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decode(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "Web", body["name"])
		assert.Nil(t, body["differentCourses"])
		selected := body["selectedCourses"].(map[string]any)
		assert.Len(t, selected["course"], 1)
		assert.Len(t, body["mostSellingCourses"], 1)
	})
}

func TestPaymentRoutes(t *testing.T) {
	student := bearer(t, "u1", "Student")

	t.Run("payment routes require a student", func(t *testing.T) {
		h := newTestRouter(&stubCatalog{}, &stubPayments{})
		assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodPost, "/api/v1/payment/capturePayment", "", `{}`).Code)
		assert.Equal(t, http.StatusForbidden, do(h, http.MethodPost, "/api/v1/payment/capturePayment", bearer(t, "a1", "Admin"), `{}`).Code)
	})

	capture := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "no courses", err: domain.ErrNoCoursesSelected, wantStatus: http.StatusBadRequest, wantMsg: "Please provide Course ID"},
		{name: "unknown course", err: domain.ErrCourseNotFound, wantStatus: http.StatusNotFound, wantMsg: "Could not find the Course"},
		{name: "enrolled", err: domain.ErrAlreadyEnrolled, wantStatus: http.StatusBadRequest, wantMsg: "Student is already Enrolled"},
		{name: "gateway", err: domain.ErrGatewayUnavailable, wantStatus: http.StatusInternalServerError, wantMsg: "Could not initiate order."},
	}
	for _, tt := range capture {
		t.Run("capture "+tt.name, func(t *testing.T) {
			p := &stubPayments{captureErr: tt.err}
			rec := do(newTestRouter(&stubCatalog{}, p), http.MethodPost, "/api/v1/payment/capturePayment", student, `{"courses":["c1"]}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decode(t, rec)["message"])
		})
	}

	t.Run("capture success", func(t *testing.T) {
		p := &stubPayments{order: &domain.Order{ID: "order_1", Amount: 49900, Currency: "INR", Receipt: "r"}}
		rec := do(newTestRouter(&stubCatalog{}, p), http.MethodPost, "/api/v1/payment/capturePayment", student, `{"courses":["c1"]}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true,"message":{"id":"order_1","amount":49900,"currency":"INR","receipt":"r"}}`, rec.Body.String())
		assert.Equal(t, "u1", p.userID)
	})

	verify := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "verified", err: nil, wantStatus: http.StatusOK, wantMsg: "Payment Verified"},
		{name: "bad signature", err: domain.ErrInvalidSignature, wantStatus: http.StatusBadRequest, wantMsg: "Payment Failed"},
		{name: "missing fields", err: domain.ErrConfirmationMissing, wantStatus: http.StatusBadRequest, wantMsg: "Payment Failed"},
		{name: "replay", err: domain.ErrConfirmationReplayed, wantStatus: http.StatusConflict, wantMsg: "Payment already verified"},
		{name: "enrollment failure", err: errors.New("deadlock"), wantStatus: http.StatusInternalServerError, wantMsg: "Internal server error"},
	}
	for _, tt := range verify {
		t.Run("verify "+tt.name, func(t *testing.T) {
			p := &stubPayments{verifyErr: tt.err}
			body := `{"razorpay_payment_id":"pay_1","razorpay_order_id":"order_1","razorpay_signature":"sig","courses":["c1"]}`
			rec := do(newTestRouter(&stubCatalog{}, p), http.MethodPost, "/api/v1/payment/verifyPayment", student, body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, decode(t, rec)["message"])
			assert.Equal(t, domain.PaymentConfirmation{PaymentID: "pay_1", OrderID: "order_1", Signature: "sig"}, p.conf)
		})
	}

	t.Run("receipt", func(t *testing.T) {
		p := &stubPayments{}
		rec := do(newTestRouter(&stubCatalog{}, p), http.MethodPost, "/api/v1/payment/sendPaymentSuccessEmail", student, `{"orderId":"o","paymentId":"p","amount":100}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, app.ReceiptInput{OrderID: "o", PaymentID: "p", Amount: 100}, p.receipt)

		p.receiptErr = domain.ErrReceiptFieldMissing
		rec = do(newTestRouter(&stubCatalog{}, p), http.MethodPost, "/api/v1/payment/sendPaymentSuccessEmail", student, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Please provide all the details", decode(t, rec)["message"])

		p.receiptErr = errors.New("kafka down")
		rec = do(newTestRouter(&stubCatalog{}, p), http.MethodPost, "/api/v1/payment/sendPaymentSuccessEmail", student, `{"orderId":"o","paymentId":"p","amount":100}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Could not send email", decode(t, rec)["message"])

		p.receiptErr = domain.ErrOrderNotFound
		rec = do(newTestRouter(&stubCatalog{}, p), http.MethodPost, "/api/v1/payment/sendPaymentSuccessEmail", student, `{"orderId":"someone_elses","paymentId":"p","amount":100}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Could not send email", decode(t, rec)["message"])
	})

	t.Run("verification status", func(t *testing.T) {
		p := &stubPayments{entry: &paymentlog.Entry{
			OrderID:       "order_1",
			PaymentID:     "pay_1",
			Status:        paymentlog.StatusFailed,
			CurrentStep:   "Signature_Check_Step",
			ErrorMessages: `["step Signature_Check_Step failed: invalid payment signature"]`,
			UpdatedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		}}
		rec := do(newTestRouter(&stubCatalog{}, p), http.MethodGet, "/api/v1/payment/verification/order_1", student, "")
		require.Equal(t, http.StatusOK, rec.Code)
		data := decode(t, rec)["data"].(map[string]any)
		assert.Equal(t, "FAILED", data["status"])
		assert.Len(t, data["errors"], 1)

		p.statusErr = domain.ErrVerificationNotFound
		rec = do(newTestRouter(&stubCatalog{}, p), http.MethodGet, "/api/v1/payment/verification/order_1", student, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
