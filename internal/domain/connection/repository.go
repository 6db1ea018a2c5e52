package connection

import "context"

// Repository defines the interface for connection data access.
// SecretToken is plaintext at this boundary; implementations encrypt it at rest.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Connection, error)

	// GetByID returns ErrConnectionNotFound when absent.
	GetByID(ctx context.Context, id string) (*Connection, error)

	// ListByUser returns the user's connections for provider, oldest first.
	ListByUser(ctx context.Context, userID string, provider Provider) ([]*Connection, error)

	// FindByIdentifier returns ErrConnectionNotFound when the user has no
	// connection of that provider and identifier.
	FindByIdentifier(ctx context.Context, userID string, provider Provider, identifier string) (*Connection, error)
}
