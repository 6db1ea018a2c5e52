package account

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"networth/internal/shared/errs"
)

// Service contains the business logic for account operations
type Service struct {
	repo Repository
}

// NewService creates a new account service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateAccount creates a new account with business validation
func (s *Service) CreateAccount(ctx context.Context, params CreateParams) (*Account, error) {
	const op = "account.Create"

	applyDefaults(&params)
	if err := params.Validate(); err != nil {
		return nil, errs.InvalidInput(op, err)
	}

	acc, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	return acc, nil
}

// UpsertAccount creates or updates a provider-backed account
func (s *Service) UpsertAccount(ctx context.Context, params CreateParams) (*Account, error) {
	const op = "account.Upsert"

	if params.ExternalID == "" {
		return nil, errs.Validation(op, "external account ID is required")
	}
	applyDefaults(&params)
	if err := params.Validate(); err != nil {
		return nil, errs.InvalidInput(op, err)
	}

	acc, err := s.repo.UpsertByExternalID(ctx, params)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	return acc, nil
}

// GetAccount retrieves an account by ID
func (s *Service) GetAccount(ctx context.Context, id string) (*Account, error) {
	const op = "account.Get"

	acc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, errs.NotFound(op, err)
		}
		return nil, errs.Persistence(op, err)
	}
	return acc, nil
}

// ListByConnection lists the accounts owned by a connection
func (s *Service) ListByConnection(ctx context.Context, connectionID string) ([]*Account, error) {
	accounts, err := s.repo.ListByConnection(ctx, connectionID)
	if err != nil {
		return nil, errs.Persistence("account.ListByConnection", err)
	}
	return accounts, nil
}

func applyDefaults(p *CreateParams) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
}
