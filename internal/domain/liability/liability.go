// Package liability holds debts subtracted from net worth.
package liability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"networth/internal/shared/errs"
)

type Liability struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	BalanceUSD     float64   `json:"balanceUsd"`
	CreditLimitUSD *float64  `json:"creditLimitUsd,omitempty"`
	InterestRate   *float64  `json:"interestRate,omitempty"`
	MinPaymentUSD  *float64  `json:"minPaymentUsd,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CreateParams struct {
	ID             string   `json:"-"`
	UserID         string   `json:"-"`
	Name           string   `json:"name"`
	Type           string   `json:"type"`
	BalanceUSD     *float64 `json:"balanceUsd"`
	CreditLimitUSD *float64 `json:"creditLimitUsd"`
	InterestRate   *float64 `json:"interestRate"`
	MinPaymentUSD  *float64 `json:"minPaymentUsd"`
	Notes          string   `json:"notes"`
}

func (p CreateParams) Validate() error {
	if p.UserID == "" {
		return errors.New("user ID is required")
	}
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Type) == "" {
		return errors.New("name and type are required")
	}
	return nil
}

// Balance returns the balance, defaulting to 0.
func (p CreateParams) Balance() float64 {
	if p.BalanceUSD == nil {
		return 0
	}
	return *p.BalanceUSD
}

type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Liability, error)
	// ListByUser returns liabilities ordered by balance, largest first.
	ListByUser(ctx context.Context, userID string) ([]*Liability, error)
}

type Service struct {
	repo     Repository
	onChange func(ctx context.Context, userID string)
}

func NewService(repo Repository, onChange func(ctx context.Context, userID string)) *Service {
	return &Service{repo: repo, onChange: onChange}
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Liability, error) {
	const op = "liability.Create"

	params.Name = strings.TrimSpace(params.Name)
	params.Type = strings.TrimSpace(params.Type)
	if err := params.Validate(); err != nil {
		return nil, errs.InvalidInput(op, err)
	}
	if params.ID == "" {
		params.ID = uuid.NewString()
	}

	l, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}
	if s.onChange != nil {
		s.onChange(ctx, params.UserID)
	}
	return l, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]*Liability, error) {
	ls, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Persistence("liability.List", err)
	}
	return ls, nil
}

// Balances returns the balance of each liability, in order.
func Balances(ls []*Liability) []float64 {
	out := make([]float64, len(ls))
	for i, l := range ls {
		out[i] = l.BalanceUSD
	}
	return out
}
