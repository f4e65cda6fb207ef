// Package sqlite provides a SQLite-backed paymentlog.Repository.
//
// WAL mode is enabled on Open so the status endpoint can read while a
// verification saga is appending.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jcmexdev/course-marketplace/internal/coordinator/paymentlog"

	// Pure-Go driver, no CGO needed in the Alpine image.
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS payment_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    saga_id         TEXT        NOT NULL,
    order_id        TEXT        NOT NULL,
    payment_id      TEXT        NOT NULL DEFAULT '',
    user_id         TEXT        NOT NULL DEFAULT '',
    status          TEXT        NOT NULL,
    current_step    TEXT        NOT NULL DEFAULT '',
    -- verification request, written on STARTED only
    payload         TEXT,
    error_messages  TEXT        NOT NULL DEFAULT '[]',
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',
    -- RFC3339 with nanoseconds, UTC
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_payment_logs_order_id ON payment_logs(order_id, updated_at);
CREATE INDEX IF NOT EXISTS idx_payment_logs_trace_id ON payment_logs(trace_id);
`

type Repository struct {
	db *sql.DB
}

var _ paymentlog.Repository = (*Repository)(nil)

// Open opens (or creates) the database at path and applies the schema.
//
//	repo, err := sqlite.Open("./data/payments.db")
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// Single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Save(ctx context.Context, entry *paymentlog.Entry) error {
	const q = `
		INSERT INTO payment_logs
			(saga_id, order_id, payment_id, user_id, status, current_step, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SagaID,
		entry.OrderID,
		entry.PaymentID,
		entry.UserID,
		string(entry.Status),
		entry.CurrentStep,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		formatTime(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save payment log for %q: %w", entry.SagaID, err)
	}
	return nil
}

func (r *Repository) LatestForOrder(ctx context.Context, orderID string) (*paymentlog.Entry, error) {
	const q = `
		SELECT saga_id, order_id, payment_id, user_id, status, current_step, COALESCE(payload,''),
		       error_messages, trace_id, span_id, updated_at
		FROM   payment_logs
		WHERE  order_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	var entry paymentlog.Entry
	var updatedAt string
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&entry.SagaID,
		&entry.OrderID,
		&entry.PaymentID,
		&entry.UserID,
		&entry.Status,
		&entry.CurrentStep,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, paymentlog.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: latest for order %q: %w", orderID, err)
	}

	entry.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// nullableString stores NULL instead of '' for non-STARTED rows.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
