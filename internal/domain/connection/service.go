package connection

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"networth/internal/shared/errs"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create normalizes and validates params, assigning an ID when missing.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Connection, error) {
	const op = "connection.Create"

	if params.ID == "" {
		params.ID = uuid.NewString()
	}
	params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, errs.InvalidInput(op, err)
	}

	conn, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	return conn, nil
}

// Get returns the connection when it exists and belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*Connection, error) {
	const op = "connection.Get"

	conn, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrConnectionNotFound) {
			return nil, errs.NotFound(op, err)
		}
		return nil, errs.Persistence(op, err)
	}
	if conn.UserID != userID {
		return nil, errs.NotFound(op, ErrConnectionNotFound)
	}
	return conn, nil
}

func (s *Service) List(ctx context.Context, userID string, provider Provider) ([]*Connection, error) {
	conns, err := s.repo.ListByUser(ctx, userID, provider)
	if err != nil {
		return nil, errs.Persistence("connection.List", err)
	}
	return conns, nil
}

// FindOrCreate returns the user's connection with the same provider and
// identifier, creating it when none exists.
func (s *Service) FindOrCreate(ctx context.Context, params CreateParams) (*Connection, bool, error) {
	const op = "connection.FindOrCreate"

	params.Normalize()
	existing, err := s.repo.FindByIdentifier(ctx, params.UserID, params.Provider, params.Identifier)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrConnectionNotFound) {
		return nil, false, errs.Persistence(op, err)
	}

	conn, err := s.Create(ctx, params)
	if err != nil {
		return nil, false, err
	}
	return conn, true, nil
}
