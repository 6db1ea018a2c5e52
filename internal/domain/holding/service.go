package holding

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/shared/errs"
)

const (
	manualConnectionIdentifier = "manual"
	defaultManualAccountName   = "Manual Holdings"
)

// PriceLookup resolves a live USD spot price. ok is false when the symbol
// has no price source.
type PriceLookup interface {
	LookupPrice(ctx context.Context, symbol string, class AssetClass) (price float64, ok bool)
}

type ConnectionFinder interface {
	FindOrCreate(ctx context.Context, params connection.CreateParams) (*connection.Connection, bool, error)
}

type AccountStore interface {
	ListByConnection(ctx context.Context, connectionID string) ([]*account.Account, error)
	CreateAccount(ctx context.Context, params account.CreateParams) (*account.Account, error)
}

// ChangeHook is called after a mutation that changes the user's net worth.
type ChangeHook func(ctx context.Context, userID string)

// ManualInput is a user-entered position.
type ManualInput struct {
	Symbol        string     `json:"symbol"`
	Quantity      *float64   `json:"quantity"`
	PriceUSD      *float64   `json:"priceUsd"`
	AssetClass    AssetClass `json:"assetClass"`
	AccountName   string     `json:"accountName,omitempty"`
	EffectiveDate *time.Time `json:"effectiveDate,omitempty"`
}

// Validate runs before any store access.
func (in ManualInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.Symbol) == "" {
		missing = append(missing, "symbol")
	}
	if in.Quantity == nil {
		missing = append(missing, "quantity")
	}
	if in.PriceUSD == nil {
		missing = append(missing, "priceUsd")
	}
	if in.AssetClass == "" {
		missing = append(missing, "assetClass")
	}
	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}
	if !IsValidAssetClass(in.AssetClass) {
		return ErrInvalidAssetClass
	}
	if *in.Quantity < 0 || *in.PriceUSD < 0 {
		return errors.New("quantity and priceUsd must not be negative")
	}
	return nil
}

type Service struct {
	repo        Repository
	connections ConnectionFinder
	accounts    AccountStore
	prices      PriceLookup
	onChange    ChangeHook
	now         func() time.Time
}

// NewService wires the holding service. prices and onChange may be nil.
func NewService(repo Repository, connections ConnectionFinder, accounts AccountStore, prices PriceLookup, onChange ChangeHook) *Service {
	return &Service{
		repo:        repo,
		connections: connections,
		accounts:    accounts,
		prices:      prices,
		onChange:    onChange,
		now:         time.Now,
	}
}

// List returns the user's positions ordered by value, largest first.
func (s *Service) List(ctx context.Context, userID string) ([]*Position, error) {
	positions, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Persistence("holding.List", err)
	}
	return positions, nil
}

// AddManual records a user-entered position under the user's manual
// connection. A live price replaces the typed one when available; the typed
// price is kept as the purchase price.
func (s *Service) AddManual(ctx context.Context, userID string, in ManualInput) (*Holding, error) {
	const op = "holding.AddManual"

	if err := in.Validate(); err != nil {
		return nil, errs.InvalidInput(op, err)
	}

	symbol := strings.ToUpper(strings.TrimSpace(in.Symbol))
	typed := *in.PriceUSD
	price := typed
	if s.prices != nil {
		if live, ok := s.prices.LookupPrice(ctx, symbol, in.AssetClass); ok {
			price = live
		}
	}

	acc, err := s.manualAccount(ctx, userID, in.AccountName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	params := CreateParams{
		ID:               uuid.NewString(),
		AccountID:        acc.ID,
		Symbol:           symbol,
		Quantity:         *in.Quantity,
		PriceUSD:         &price,
		PurchasePriceUSD: &typed,
		AssetClass:       in.AssetClass,
	}
	if in.EffectiveDate != nil {
		params.EffectiveDate = *in.EffectiveDate
	}
	params.ApplyDefaults(now)
	if err := params.Validate(); err != nil {
		return nil, errs.InvalidInput(op, err)
	}

	h, err := s.repo.Create(ctx, params)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"holding_id": h.ID,
		"symbol":     h.Symbol,
	}).Info("manual holding added")

	s.changed(ctx, userID)
	return h, nil
}

// Delete removes a holding owned by userID.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	const op = "holding.Delete"

	pos, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrHoldingNotFound) {
			return errs.NotFound(op, err)
		}
		return errs.Persistence(op, err)
	}
	if pos.UserID() != userID {
		return errs.NotFound(op, ErrHoldingNotFound)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrHoldingNotFound) {
			return errs.NotFound(op, err)
		}
		return errs.Persistence(op, err)
	}

	s.changed(ctx, userID)
	return nil
}

func (s *Service) manualAccount(ctx context.Context, userID, name string) (*account.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultManualAccountName
	}

	conn, _, err := s.connections.FindOrCreate(ctx, connection.CreateParams{
		UserID:     userID,
		Provider:   connection.ProviderManual,
		Identifier: manualConnectionIdentifier,
		Nickname:   "Manual",
	})
	if err != nil {
		return nil, err
	}

	existing, err := s.accounts.ListByConnection(ctx, conn.ID)
	if err != nil {
		return nil, err
	}
	for _, acc := range existing {
		if strings.EqualFold(acc.Name, name) {
			return acc, nil
		}
	}

	return s.accounts.CreateAccount(ctx, account.CreateParams{
		ConnectionID: conn.ID,
		Name:         name,
		Type:         account.TypeManual,
	})
}

func (s *Service) changed(ctx context.Context, userID string) {
	if s.onChange != nil {
		s.onChange(ctx, userID)
	}
}
