package account

import "context"

// Repository defines the interface for account data access
// This interface is defined in the domain layer, but implemented in the infrastructure layer
type Repository interface {
	// Create creates a new account
	Create(ctx context.Context, params CreateParams) (*Account, error)

	// GetByID retrieves an account by its ID
	GetByID(ctx context.Context, id string) (*Account, error)

	// ListByConnection retrieves the accounts owned by a connection
	ListByConnection(ctx context.Context, connectionID string) ([]*Account, error)

	// UpsertByExternalID creates the account or renames the existing one
	// with the same connection and external ID. The stored ID is kept.
	UpsertByExternalID(ctx context.Context, params CreateParams) (*Account, error)
}
