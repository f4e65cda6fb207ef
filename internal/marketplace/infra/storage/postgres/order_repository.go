package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) SaveOrder(ctx context.Context, o domain.Order) error {
	const stmt = `
INSERT INTO orders (id, receipt, currency, amount, user_id, course_ids, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := conn(ctx, r.pool).Exec(ctx, stmt, o.ID, o.Receipt, o.Currency, o.Amount, o.UserID, o.CourseIDs, o.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	const query = `
SELECT id, receipt, currency, amount, user_id, course_ids, created_at
FROM orders
WHERE id = $1`

	var o domain.Order
	err := conn(ctx, r.pool).QueryRow(ctx, query, id).
		Scan(&o.ID, &o.Receipt, &o.Currency, &o.Amount, &o.UserID, &o.CourseIDs, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepository) EnrolledIn(ctx context.Context, userID string, courseIDs []string) ([]string, error) {
	const query = `
SELECT course_id
FROM enrollments
WHERE user_id = $1 AND course_id = ANY($2)
ORDER BY course_id`

	rows, err := conn(ctx, r.pool).Query(ctx, query, userID, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("query enrollments: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan enrollments: %w", err)
	}
	return ids, nil
}

// Enroll inserts every pair in one transaction; a bad course id rolls back
// the whole batch.
func (r *OrderRepository) Enroll(ctx context.Context, userID string, courseIDs []string) error {
	const stmt = `
INSERT INTO enrollments (user_id, course_id)
VALUES ($1, $2)
ON CONFLICT (user_id, course_id) DO NOTHING`

	return withTx(ctx, r.pool, func(ctx context.Context) error {
		q := conn(ctx, r.pool)
		for _, courseID := range courseIDs {
			if _, err := q.Exec(ctx, stmt, userID, courseID); err != nil {
				if isForeignKeyViolation(err) {
					return fmt.Errorf("enroll %s in %s: %w", userID, courseID, domain.ErrCourseNotFound)
				}
				return fmt.Errorf("enroll %s in %s: %w", userID, courseID, err)
			}
		}
		return nil
	})
}
