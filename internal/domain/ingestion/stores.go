// Package ingestion pulls positions from wallet, brokerage and price
// providers into the holding store.
package ingestion

import (
	"context"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
)

// ConnectionStore is the subset of connection.Service used here.
type ConnectionStore interface {
	Create(ctx context.Context, params connection.CreateParams) (*connection.Connection, error)
	Get(ctx context.Context, userID, id string) (*connection.Connection, error)
	List(ctx context.Context, userID string, provider connection.Provider) ([]*connection.Connection, error)
}

// AccountStore is the subset of account.Service used here.
type AccountStore interface {
	CreateAccount(ctx context.Context, params account.CreateParams) (*account.Account, error)
	UpsertAccount(ctx context.Context, params account.CreateParams) (*account.Account, error)
	ListByConnection(ctx context.Context, connectionID string) ([]*account.Account, error)
}

// HoldingStore is the subset of holding.Repository used here.
type HoldingStore interface {
	CreateBatch(ctx context.Context, params []holding.CreateParams) (int, error)
	ReplaceForAccount(ctx context.Context, accountID string, params []holding.CreateParams) (int, error)
	ListByUser(ctx context.Context, userID string) ([]*holding.Position, error)
	UpdatePrice(ctx context.Context, id string, priceUSD, valueUSD float64, asOf time.Time) error
}
