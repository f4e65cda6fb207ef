package ports

import (
	"context"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

type CatalogRepository interface {
	CreateCategory(ctx context.Context, c domain.Category) error
	ListCategories(ctx context.Context) ([]domain.CategorySummary, error)
	// GetCategoryWithPublishedCourses returns domain.ErrCategoryNotFound when
	// the id does not resolve. Courses carry their reviews.
	GetCategoryWithPublishedCourses(ctx context.Context, id string) (*domain.Category, error)
	// ListCategoryIDsWithCourses returns, in a stable order, every category
	// other than excludeID whose course list is not empty.
	ListCategoryIDsWithCourses(ctx context.Context, excludeID string) ([]string, error)
	TopSellingCourses(ctx context.Context, limit int) ([]domain.Course, error)
	// GetCourses returns the courses found among ids; missing ids are omitted.
	GetCourses(ctx context.Context, ids []string) ([]domain.Course, error)
}
