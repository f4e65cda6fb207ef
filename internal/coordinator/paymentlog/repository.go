package paymentlog

import "context"

// Repository persists payment log entries. The table is append-only.
type Repository interface {
	Save(ctx context.Context, entry *Entry) error
	// LatestForOrder returns the most recent entry written for an order, or
	// ErrNotFound.
	LatestForOrder(ctx context.Context, orderID string) (*Entry, error)
}
