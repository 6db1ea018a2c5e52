// Package realestate holds directly owned properties counted as assets.
package realestate

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"networth/internal/shared/errs"
)

type Property struct {
	ID               string    `json:"id"`
	UserID           string    `json:"userId"`
	Name             string    `json:"name"`
	PropertyType     string    `json:"propertyType,omitempty"`
	City             string    `json:"city,omitempty"`
	State            string    `json:"state,omitempty"`
	CurrentValueUSD  float64   `json:"currentValueUsd"`
	PurchasePriceUSD *float64  `json:"purchasePriceUsd,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

type CreateParams struct {
	ID               string   `json:"-"`
	UserID           string   `json:"-"`
	Name             string   `json:"name"`
	PropertyType     string   `json:"propertyType"`
	City             string   `json:"city"`
	State            string   `json:"state"`
	CurrentValueUSD  *float64 `json:"currentValueUsd"`
	PurchasePriceUSD *float64 `json:"purchasePriceUsd"`
	Notes            string   `json:"notes"`
}

func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name is required")
	}
	if p.CurrentValueUSD != nil && *p.CurrentValueUSD < 0 {
		return errors.New("currentValueUsd must not be negative")
	}
	return nil
}

// CurrentValue returns the appraised value, defaulting to 0.
func (p CreateParams) CurrentValue() float64 {
	if p.CurrentValueUSD == nil {
		return 0
	}
	return *p.CurrentValueUSD
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Property, error)
	// ListByUser returns properties ordered by current value, largest first.
	ListByUser(ctx context.Context, userID string) ([]*Property, error)
}

type Service struct {
	repo     Repository
	onChange func(ctx context.Context, userID string)
}

func NewService(repo Repository, onChange func(ctx context.Context, userID string)) *Service {
	return &Service{repo: repo, onChange: onChange}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Property, error) {
	const op = "realestate.Create"

	params.Name = strings.TrimSpace(params.Name)
	if err := params.Validate(); err != nil {
		return nil, errs.InvalidInput(op, err)
	}
	if params.ID == "" {
		params.ID = uuid.NewString()
	}

	p, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	if s.onChange != nil {
		s.onChange(ctx, params.UserID)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Property, error) {
	ps, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Persistence("realestate.List", err)
	}
	return ps, nil
}

// Values returns the current value of each property, in order.
func Values(ps []*Property) []float64 {
	out := make([]float64, len(ps))
	for i, p := range ps {
		out[i] = p.CurrentValueUSD
	}
	return out
}
