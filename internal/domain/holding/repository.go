package holding

import (
	"context"
	"time"
)

// Repository defines the interface for holding data access
type Repository interface {
	// Create inserts a single holding
	Create(ctx context.Context, params CreateParams) (*Holding, error)

	// CreateBatch appends holdings without touching existing rows
	CreateBatch(ctx context.Context, params []CreateParams) (int, error)

	// ReplaceForAccount deletes every holding of the account and inserts
	// params in the same transaction. Readers never observe the empty set.
	ReplaceForAccount(ctx context.Context, accountID string, params []CreateParams) (int, error)

	// GetByID returns the holding with its account and connection,
	// or ErrHoldingNotFound
	GetByID(ctx context.Context, id string) (*Position, error)

	// ListByUser returns every position of the user ordered by value desc
	ListByUser(ctx context.Context, userID string) ([]*Position, error)

	// UpdatePrice rewrites price, value and asOf of one holding
	UpdatePrice(ctx context.Context, id string, priceUSD, valueUSD float64, asOf time.Time) error

	// Delete removes a holding
	Delete(ctx context.Context, id string) error
}
