package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/course-marketplace/internal/clock"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/ports"
	"github.com/jcmexdev/course-marketplace/internal/pkg/cache"
)

const mostSellingLimit = 10

// CatalogService serves category listings and the catalog page aggregate.
type CatalogService struct {
	repo     ports.CatalogRepository
	cache    cache.Cache
	cacheTTL time.Duration
	clock    clock.Clock
	// pick returns a uniform index in [0, n).
	pick func(n int) int
}

func NewCatalogService(repo ports.CatalogRepository, c cache.Cache, ttl time.Duration, clk clock.Clock) *CatalogService {
	return &CatalogService{
		repo:     repo,
		cache:    c,
		cacheTTL: ttl,
		clock:    clk,
		pick:     rand.IntN,
	}
}

// WithPicker replaces the random index source.
func (s *CatalogService) WithPicker(pick func(n int) int) *CatalogService {
	s.pick = pick
	return s
}

type CreateCategoryInput struct {
	Name        string
	Description string
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CreateCategoryInput) (domain.Category, error) {
	name := strings.TrimSpace(in.Name)
	desc := strings.TrimSpace(in.Description)
	if name == "" || desc == "" {
		return domain.Category{}, domain.ErrCategoryFieldMissing
	}

	c := domain.Category{
		ID:          uuid.NewString(),
		Name:        name,
		Description: desc,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return domain.Category{}, fmt.Errorf("create category: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, s.listKey()); err != nil {
			slog.WarnContext(ctx, "failed to invalidate category cache", "error", err)
		}
	}
	return c, nil
}

// ListCategories is read-through cached; cache failures only degrade to a
// repository read.
func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, s.listKey()); err != nil {
			slog.WarnContext(ctx, "category cache read failed", "error", err)
		} else if raw != "" {
			var cached []domain.CategorySummary
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	list, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if s.cache != nil {
		if b, err := json.Marshal(list); err == nil {
			if err := s.cache.Set(ctx, s.listKey(), b, s.cacheTTL); err != nil {
				slog.WarnContext(ctx, "category cache write failed", "error", err)
			}
		}
	}
	return list, nil
}

// CategoryPageDetails assembles the catalog page for categoryID. The sibling
// suggestion and the best-seller list are independent reads and run
// concurrently once the selected category is known to have courses.
func (s *CatalogService) CategoryPageDetails(ctx context.Context, categoryID string) (*domain.CategoryPage, error) {
	if strings.TrimSpace(categoryID) == "" {
		return nil, domain.ErrCategoryNotFound
	}

	selected, err := s.repo.GetCategoryWithPublishedCourses(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if len(selected.Courses) == 0 {
		return nil, domain.ErrNoCoursesInCategory
	}

	page := &domain.CategoryPage{Selected: *selected}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		different, err := s.randomSibling(gctx, categoryID)
		if err != nil {
			return err
		}
		page.Different = different
		return nil
	})
	g.Go(func() error {
		top, err := s.repo.TopSellingCourses(gctx, mostSellingLimit)
		if err != nil {
			return fmt.Errorf("top selling courses: %w", err)
		}
		page.MostSelling = top
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return page, nil
}

// randomSibling returns nil without error when no other category has courses.
func (s *CatalogService) randomSibling(ctx context.Context, excludeID string) (*domain.Category, error) {
	ids, err := s.repo.ListCategoryIDsWithCourses(ctx, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list sibling categories: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	c, err := s.repo.GetCategoryWithPublishedCourses(ctx, ids[s.pick(len(ids))])
	if errors.Is(err, domain.ErrCategoryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load sibling category: %w", err)
	}
	return c, nil
}

func (s *CatalogService) listKey() string {
	return s.cache.GenerateKey("categories", "all")
}
