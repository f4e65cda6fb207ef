package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/course-marketplace/internal/apiclient"
)

type stubAPI struct {
	categories []apiclient.CategorySummary
	listErr    error
	pages      map[string]*apiclient.CategoryPage
	requested  []string
}

func (s *stubAPI) ListCategories(context.Context) ([]apiclient.CategorySummary, error) {
	return s.categories, s.listErr
}

func (s *stubAPI) CategoryPageDetails(_ context.Context, id string) (*apiclient.CategoryPage, error) {
	s.requested = append(s.requested, id)
	return s.pages[id], nil
}

func courses(ids ...string) []apiclient.Course {
	out := make([]apiclient.Course, len(ids))
	for i, id := range ids {
		out[i] = apiclient.Course{ID: id}
	}
	return out
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "web-development", Slug("Web Development"))
	assert.Equal(t, "web-development", Slug("web-development"))
	assert.Equal(t, "ai-ml", Slug("  AI   ML "))
}

func TestPageLoad(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{
		categories: []apiclient.CategorySummary{
			{ID: "1", Name: "Web Development"},
			{ID: "2", Name: "Data Science"},
		},
		pages: map[string]*apiclient.CategoryPage{
			"1": {
				Success:         true,
				Name:            "Web Development",
				SelectedCourses: apiclient.Category{Courses: courses("c1")},
				MostSelling:     courses("a", "b", "c", "d", "e", "f"),
			},
			"2": {Success: false, Message: "No courses found for the selected category."},
		},
	}
	page := NewPage(api)

	t.Run("matches by slug", func(t *testing.T) {
		v, err := page.Load(ctx, "web-development")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, "Web Development", v.Name)
		assert.Nil(t, v.Different)
		assert.Len(t, v.Selected, 1)
		assert.Len(t, v.TopSellers(), BestSellersShown)
	})

	t.Run("unsuccessful details give an empty page", func(t *testing.T) {
		v, err := page.Load(ctx, "Data Science")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("unknown slug", func(t *testing.T) {
		_, err := page.Load(ctx, "cooking")
		require.ErrorIs(t, err, ErrCategoryNotFound)
	})

	t.Run("list failure", func(t *testing.T) {
		_, err := NewPage(&stubAPI{listErr: errors.New("offline")}).Load(ctx, "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCategoryNotFound)
	})
}

func TestTopSellersShort(t *testing.T) {
	v := &View{MostSelling: courses("a")}
	assert.Len(t, v.TopSellers(), 1)
}
