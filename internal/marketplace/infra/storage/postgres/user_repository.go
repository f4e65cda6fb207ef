package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jcmexdev/course-marketplace/internal/marketplace/core/domain"
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	const query = `SELECT id, first_name, last_name, email FROM users WHERE id = $1`

	var u domain.User
	err := conn(ctx, r.pool).QueryRow(ctx, query, id).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// CreateUser registers a purchaser. Account management lives elsewhere;
// this exists for seeding and tests.
func (r *UserRepository) CreateUser(ctx context.Context, u domain.User, accountType string) error {
	const stmt = `INSERT INTO users (id, first_name, last_name, email, account_type) VALUES ($1, $2, $3, $4, $5)`

	if _, err := conn(ctx, r.pool).Exec(ctx, stmt, u.ID, u.FirstName, u.LastName, u.Email, accountType); err != nil {
		if isUniqueViolation(err) {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
