package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

// courseColumns selects a course with its enrollment count; the alias is co.
const courseColumns = `
co.id, co.name, co.description, co.price, co.status, COALESCE(co.category_id, ''), co.created_at,
(SELECT COUNT(*) FROM enrollments e WHERE e.course_id = co.id)`

type CatalogRepository struct {
	pool *pgxpool.Pool
}

func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, c domain.Category) error {
	const stmt = `INSERT INTO categories (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := conn(ctx, r.pool).Exec(ctx, stmt, c.ID, c.Name, c.Description, c.CreatedAt); err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.CategorySummary, error) {
	const query = `SELECT id, name, description FROM categories ORDER BY created_at, id`

	rows, err := conn(ctx, r.pool).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.CategorySummary, error) {
		var c domain.CategorySummary
		err := row.Scan(&c.ID, &c.Name, &c.Description)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan categories: %w", err)
	}
	return out, nil
}

func (r *CatalogRepository) GetCategoryWithPublishedCourses(ctx context.Context, id string) (*domain.Category, error) {
	const categoryQuery = `SELECT id, name, description, created_at FROM categories WHERE id = $1`

	var c domain.Category
	err := conn(ctx, r.pool).QueryRow(ctx, categoryQuery, id).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCategoryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}

	coursesQuery := `
SELECT` + courseColumns + `
FROM category_courses cc
JOIN courses co ON co.id = cc.course_id
WHERE cc.category_id = $1 AND co.status = 'published'
ORDER BY cc.position, co.id`

	courses, err := r.queryCourses(ctx, coursesQuery, id)
	if err != nil {
		return nil, err
	}
	c.Courses = courses
	return &c, nil
}

func (r *CatalogRepository) ListCategoryIDsWithCourses(ctx context.Context, excludeID string) ([]string, error) {
	const query = `
SELECT c.id
FROM categories c
WHERE c.id <> $1
  AND EXISTS (SELECT 1 FROM category_courses cc WHERE cc.category_id = c.id)
ORDER BY c.created_at, c.id`

	rows, err := conn(ctx, r.pool).Query(ctx, query, excludeID)
	if err != nil {
		return nil, fmt.Errorf("list sibling categories: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan sibling categories: %w", err)
	}
	return ids, nil
}

func (r *CatalogRepository) TopSellingCourses(ctx context.Context, limit int) ([]domain.Course, error) {
	query := `
SELECT` + courseColumns + ` AS students
FROM courses co
WHERE co.status = 'published'
ORDER BY students DESC, co.id
LIMIT $1`

	return r.queryCourses(ctx, query, limit)
}

func (r *CatalogRepository) GetCourses(ctx context.Context, ids []string) ([]domain.Course, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `
SELECT` + courseColumns + `
FROM courses co
WHERE co.id = ANY($1)
ORDER BY co.id`

	return r.queryCourses(ctx, query, ids)
}

// AddCourse inserts a course and appends it to its category's ordered list.
func (r *CatalogRepository) AddCourse(ctx context.Context, c domain.Course) error {
	return withTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		const insertCourse = `
INSERT INTO courses (id, name, description, price, status, category_id, created_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)`
		if _, err := q.Exec(ctx, insertCourse, c.ID, c.Name, c.Description, c.Price, string(c.Status), c.CategoryID, c.CreatedAt); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrCategoryNotFound
			}
			return fmt.Errorf("insert course: %w", err)
		}
		if c.CategoryID == "" {
			return nil
		}
		const link = `
INSERT INTO category_courses (category_id, course_id, position)
SELECT $1, $2, COALESCE(MAX(position), -1) + 1 FROM category_courses WHERE category_id = $1`
		if _, err := q.Exec(ctx, link, c.CategoryID, c.ID); err != nil {
			return fmt.Errorf("link course to category: %w", err)
		}
		return nil
	})
}

// AddReview attaches a rating to a course.
func (r *CatalogRepository) AddReview(ctx context.Context, courseID string, rv domain.RatingAndReview) error {
	const stmt = `INSERT INTO rating_and_reviews (id, course_id, user_id, rating, review) VALUES ($1, $2, $3, $4, $5)`

	if _, err := conn(ctx, r.pool).Exec(ctx, stmt, rv.ID, courseID, rv.UserID, rv.Rating, rv.Review); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCourseNotFound
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

func (r *CatalogRepository) queryCourses(ctx context.Context, query string, args ...any) ([]domain.Course, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query courses: %w", err)
	}
	courses, err := pgx.CollectRows(rows, scanCourse)
	if err != nil {
		return nil, fmt.Errorf("scan courses: %w", err)
	}
	if err := r.attachReviews(ctx, courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func scanCourse(row pgx.CollectableRow) (domain.Course, error) {
	var (
		c        domain.Course
		status   string
		students int64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &status, &c.CategoryID, &c.CreatedAt, &students)
	c.Status = domain.CourseStatus(status)
	c.StudentsEnrolled = int(students)
	return c, err
}

func (r *CatalogRepository) attachReviews(ctx context.Context, courses []domain.Course) error {
	if len(courses) == 0 {
		return nil
	}
	ids := make([]string, len(courses))
	index := make(map[string]int, len(courses))
	for i, c := range courses {
		ids[i] = c.ID
		index[c.ID] = i
	}

	const query = `
SELECT course_id, id, user_id, rating, review
FROM rating_and_reviews
WHERE course_id = ANY($1)
ORDER BY created_at, id`

	rows, err := conn(ctx, r.pool).Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			courseID string
			rv       domain.RatingAndReview
		)
		if err := rows.Scan(&courseID, &rv.ID, &rv.UserID, &rv.Rating, &rv.Review); err != nil {
			return fmt.Errorf("scan review: %w", err)
		}
		i := index[courseID]
		courses[i].Reviews = append(courses[i].Reviews, rv)
	}
	return rows.Err()
}
