// Package catalog resolves a catalog page from its URL slug.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jcmexdev/course-marketplace/internal/apiclient"
)

// BestSellersShown is how many best sellers the page renders.
const BestSellersShown = 4

var ErrCategoryNotFound = errors.New("category not found")

type API interface {
	ListCategories(ctx context.Context) ([]apiclient.CategorySummary, error)
	CategoryPageDetails(ctx context.Context, categoryID string) (*apiclient.CategoryPage, error)
}

// View is what the catalog page renders. Different is nil when no sibling
// category was suggested.
type View struct {
	Name        string
	Description string
	Selected    []apiclient.Course
	Different   *apiclient.Category
	MostSelling []apiclient.Course
}

// TopSellers returns at most BestSellersShown courses.
func (v *View) TopSellers() []apiclient.Course {
	if len(v.MostSelling) > BestSellersShown {
		return v.MostSelling[:BestSellersShown]
	}
	return v.MostSelling
}

type Page struct {
	api API
}

func NewPage(api API) *Page {
	return &Page{api: api}
}

// Slug turns "Web Development" into "web-development".
func Slug(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), "-"))
}

// Load finds the category whose slug matches and fetches its details. A
// details response with success=false yields a nil view and no error.
func (p *Page) Load(ctx context.Context, slug string) (*View, error) {
	categories, err := p.api.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	want := Slug(slug)
	var id string
	for _, c := range categories {
		if Slug(c.Name) == want {
			id = c.ID
			break
		}
	}
	if id == "" {
		return nil, ErrCategoryNotFound
	}

	details, err := p.api.CategoryPageDetails(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("category details: %w", err)
	}
	if !details.Success {
		return nil, nil
	}

	return &View{
		Name:        details.Name,
		Description: details.Description,
		Selected:    details.SelectedCourses.Courses,
		Different:   details.DifferentCourses,
		MostSelling: details.MostSelling,
	}, nil
}
