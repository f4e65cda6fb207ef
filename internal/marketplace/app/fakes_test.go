package app

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

type fakeCatalogRepo struct {
	mu         sync.Mutex
	categories map[string]domain.Category
	order      []string
	courses    map[string]domain.Course
	top        []domain.Course
	listCalls  int
	topErr     error
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		categories: map[string]domain.Category{},
		courses:    map[string]domain.Course{},
	}
}

func (f *fakeCatalogRepo) addCategory(c domain.Category) {
	f.categories[c.ID] = c
	f.order = append(f.order, c.ID)
	for _, course := range c.Courses {
		f.courses[course.ID] = course
	}
}

func (f *fakeCatalogRepo) CreateCategory(_ context.Context, c domain.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.addCategory(c)
	return nil
}

func (f *fakeCatalogRepo) ListCategories(context.Context) ([]domain.CategorySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]domain.CategorySummary, 0, len(f.order))
	for _, id := range f.order {
		c := f.categories[id]
		out = append(out, domain.CategorySummary{ID: c.ID, Name: c.Name, Description: c.Description})
	}
	return out, nil
}

func (f *fakeCatalogRepo) GetCategoryWithPublishedCourses(_ context.Context, id string) (*domain.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.categories[id]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	published := make([]domain.Course, 0, len(c.Courses))
	for _, course := range c.Courses {
		if course.IsPublished() {
			published = append(published, course)
		}
	}
	c.Courses = published
	return &c, nil
}

func (f *fakeCatalogRepo) ListCategoryIDsWithCourses(_ context.Context, excludeID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, id := range f.order {
		if id != excludeID && len(f.categories[id].Courses) > 0 {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeCatalogRepo) TopSellingCourses(_ context.Context, limit int) ([]domain.Course, error) {
	if f.topErr != nil {
		return nil, f.topErr
	}
	if len(f.top) > limit {
		return f.top[:limit], nil
	}
	return f.top, nil
}

func (f *fakeCatalogRepo) GetCourses(_ context.Context, ids []string) ([]domain.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Course
	for _, id := range ids {
		if c, ok := f.courses[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[string]domain.Order
	enrolled  map[string][]string
	enrollErr error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[string]domain.Order{}, enrolled: map[string][]string{}}
}

func (f *fakeOrderRepo) SaveOrder(_ context.Context, o domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[o.ID] = o
	return nil
}

func (f *fakeOrderRepo) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (f *fakeOrderRepo) EnrolledIn(_ context.Context, userID string, ids []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, id := range ids {
		if slices.Contains(f.enrolled[userID], id) {
			out = append(out, id)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) Enroll(_ context.Context, userID string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.enrollErr != nil {
		return f.enrollErr
	}
	for _, id := range ids {
		if !slices.Contains(f.enrolled[userID], id) {
			f.enrolled[userID] = append(f.enrolled[userID], id)
		}
	}
	return nil
}

type fakeGateway struct {
	orderID   string
	createErr error
	valid     bool
	amounts   []int64
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, _ string, _ string) (string, error) {
	g.amounts = append(g.amounts, amount)
	if g.createErr != nil {
		return "", g.createErr
	}
	return g.orderID, nil
}

func (g *fakeGateway) VerifySignature(domain.PaymentConfirmation) bool { return g.valid }

type fakeGuard struct {
	mu      sync.Mutex
	claimed map[string]bool
}

func newFakeGuard() *fakeGuard { return &fakeGuard{claimed: map[string]bool{}} }

func (g *fakeGuard) Claim(_ context.Context, id string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.claimed[id] {
		return false, nil
	}
	g.claimed[id] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.claimed, id)
	return nil
}

type fakeUsers map[string]domain.User

func (f fakeUsers) GetUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

type fakePublisher struct {
	published []domain.PaymentReceipt
	err       error
}

func (p *fakePublisher) PublishReceipt(_ context.Context, r domain.PaymentReceipt) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, r)
	return nil
}

var errBoom = errors.New("boom")
