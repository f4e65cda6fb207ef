package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/app"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

type CatalogService interface {
	CreateCategory(ctx context.Context, in app.CreateCategoryInput) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.CategorySummary, error)
	CategoryPageDetails(ctx context.Context, categoryID string) (*domain.CategoryPage, error)
}

type CategoryHandler struct {
	catalog CatalogService
}

func NewCategoryHandler(catalog CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Tag name or description not available")
		return
	}

	_, err := h.catalog.CreateCategory(r.Context(), app.CreateCategoryInput{Name: req.Name, Description: req.Description})
	switch {
	case errors.Is(err, domain.ErrCategoryFieldMissing):
		writeMessage(w, http.StatusBadRequest, false, "Tag name or description not available")
	case err != nil:
		writeInternal(w, r, err)
	default:
		writeMessage(w, http.StatusOK, true, "Categories created successfully")
	}
}

func (h *CategoryHandler) ShowAllCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "All tags received",
		Data:    mapCategorySummaries(list),
	})
}

// CategoryPageDetails never returns the underlying error text to the caller.
func (h *CategoryHandler) CategoryPageDetails(w http.ResponseWriter, r *http.Request) {
	var req CategoryPageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusNotFound, false, "Category not found")
		return
	}

	page, err := h.catalog.CategoryPageDetails(r.Context(), req.CategoryID)
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		writeMessage(w, http.StatusNotFound, false, "Category not found")
	case errors.Is(err, domain.ErrNoCoursesInCategory):
		writeMessage(w, http.StatusNotFound, false, "No courses found for the selected category.")
	case err != nil:
		writeInternal(w, r, err)
	default:
		writeJSON(w, http.StatusOK, mapCategoryPage(page))
	}
}
