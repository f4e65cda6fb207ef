package httpx

import (
	"encoding/json"
	"time"

	"github.com/jcmexdev/course-marketplace/internal/coordinator/paymentlog"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

// Envelope is the body of every non-detail response.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategorySummaryDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CategoryPageRequest struct {
	CategoryID string `json:"categoryId"`
}

type ReviewDTO struct {
	ID     string `json:"id"`
	UserID string `json:"user"`
	Rating int    `json:"rating"`
	Review string `json:"review"`
}

type CourseDTO struct {
	ID               string      `json:"id"`
	Name             string      `json:"courseName"`
	Description      string      `json:"courseDescription"`
	Price            int64       `json:"price"`
	Status           string      `json:"status"`
	CategoryID       string      `json:"category,omitempty"`
	StudentsEnrolled int         `json:"studentsEnrolled"`
	Reviews          []ReviewDTO `json:"ratingAndReviews"`
	CreatedAt        time.Time   `json:"createdAt"`
}

type CategoryDTO struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Courses     []CourseDTO `json:"course"`
}

// CategoryPageResponse keeps the flat layout the catalog page consumes.
type CategoryPageResponse struct {
	Success          bool         `json:"success"`
	SelectedCourses  CategoryDTO  `json:"selectedCourses"`
	DifferentCourses *CategoryDTO `json:"differentCourses"`
	MostSelling      []CourseDTO  `json:"mostSellingCourses"`
	Name             string       `json:"name"`
	Description      string       `json:"description"`
}

type CapturePaymentRequest struct {
	Courses []string `json:"courses"`
}

type OrderDTO struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type CapturePaymentResponse struct {
	Success bool     `json:"success"`
	Message OrderDTO `json:"message"`
}

type VerifyPaymentRequest struct {
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

type VerificationStatusDTO struct {
	OrderID     string          `json:"orderId"`
	PaymentID   string          `json:"paymentId"`
	Status      string          `json:"status"`
	CurrentStep string          `json:"currentStep,omitempty"`
	Errors      json.RawMessage `json:"errors,omitempty"`
	TraceID     string          `json:"traceId,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func mapCategorySummaries(list []domain.CategorySummary) []CategorySummaryDTO {
	out := make([]CategorySummaryDTO, len(list))
	for i, c := range list {
		out[i] = CategorySummaryDTO{ID: c.ID, Name: c.Name, Description: c.Description}
	}
	return out
}

func mapCategory(c domain.Category) CategoryDTO {
	return CategoryDTO{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Courses:     mapCourses(c.Courses),
	}
}

func mapCourses(courses []domain.Course) []CourseDTO {
	out := make([]CourseDTO, len(courses))
	for i, c := range courses {
		reviews := make([]ReviewDTO, len(c.Reviews))
		for j, r := range c.Reviews {
			reviews[j] = ReviewDTO{ID: r.ID, UserID: r.UserID, Rating: r.Rating, Review: r.Review}
		}
		out[i] = CourseDTO{
			ID:               c.ID,
			Name:             c.Name,
			Description:      c.Description,
			Price:            c.Price,
			Status:           string(c.Status),
			CategoryID:       c.CategoryID,
			StudentsEnrolled: c.StudentsEnrolled,
			Reviews:          reviews,
			CreatedAt:        c.CreatedAt,
		}
	}
	return out
}

func mapCategoryPage(p *domain.CategoryPage) CategoryPageResponse {
	resp := CategoryPageResponse{
		Success:         true,
		SelectedCourses: mapCategory(p.Selected),
		MostSelling:     mapCourses(p.MostSelling),
		Name:            p.Selected.Name,
		Description:     p.Selected.Description,
	}
	if p.Different != nil {
		d := mapCategory(*p.Different)
		resp.DifferentCourses = &d
	}
	return resp
}

func mapVerification(e *paymentlog.Entry) VerificationStatusDTO {
	dto := VerificationStatusDTO{
		OrderID:     e.OrderID,
		PaymentID:   e.PaymentID,
		Status:      string(e.Status),
		CurrentStep: e.CurrentStep,
		TraceID:     e.TraceID,
		UpdatedAt:   e.UpdatedAt,
	}
	if json.Valid([]byte(e.ErrorMessages)) {
		dto.Errors = json.RawMessage(e.ErrorMessages)
	}
	return dto
}
