package holding

import (
	"errors"
	"math"
	"strings"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
)

type AssetClass string

const (
	AssetCrypto      AssetClass = "crypto"
	AssetEquity      AssetClass = "equity"
	AssetCash        AssetClass = "cash"
	AssetFixedIncome AssetClass = "fixed_income"
	AssetRealEstate  AssetClass = "real_estate"
)

// Domain errors
var (
	ErrHoldingNotFound   = errors.New("holding not found")
	ErrInvalidAssetClass = errors.New("invalid asset class")
)

// Holding is one position (a quantity of a symbol at a venue).
// ValueUSD equals Quantity × PriceUSD at write time. Either may be missing
// for rows whose price is unknown.
type Holding struct {
	ID               string     `json:"id"`
	AccountID        string     `json:"accountId"`
	Symbol           string     `json:"symbol"`
	Quantity         float64    `json:"quantity"`
	PriceUSD         *float64   `json:"priceUsd"`
	ValueUSD         *float64   `json:"valueUsd"`
	PurchasePriceUSD *float64   `json:"purchasePriceUsd,omitempty"`
	AssetClass       AssetClass `json:"assetClass"`
	AsOf             time.Time  `json:"asOf"`
	EffectiveDate    time.Time  `json:"effectiveDate"`
}

// Value returns ValueUSD, treating a missing value as 0.
func (h *Holding) Value() float64 {
	if h == nil || h.ValueUSD == nil {
		return 0
	}
	return *h.ValueUSD
}

// Position is a holding denormalized with its owning account and connection.
type Position struct {
	Holding
	Account    *account.Account       `json:"account"`
	Connection *connection.Connection `json:"connection"`
}

// UserID returns the owner of the position, or "" when the connection is unknown.
func (p *Position) UserID() string {
	if p.Connection == nil {
		return ""
	}
	return p.Connection.UserID
}

// CreateParams contains parameters for writing a holding row
type CreateParams struct {
	ID               string
	AccountID        string
	Symbol           string
	Quantity         float64
	PriceUSD         *float64
	ValueUSD         *float64
	PurchasePriceUSD *float64
	AssetClass       AssetClass
	AsOf             time.Time
	EffectiveDate    time.Time
}

// ApplyDefaults fills the derived fields: value from quantity × price when
// the caller has none, asOf from now and effectiveDate from asOf's date.
func (p *CreateParams) ApplyDefaults(now time.Time) {
	p.Symbol = strings.TrimSpace(p.Symbol)
	if p.ValueUSD == nil && p.PriceUSD != nil {
		v := NewValue(p.Quantity, *p.PriceUSD)
		p.ValueUSD = &v
	}
	if p.AsOf.IsZero() {
		p.AsOf = now
	}
	if p.EffectiveDate.IsZero() {
		p.EffectiveDate = truncateDay(p.AsOf)
	}
}

// Validate validates the create parameters
func (p CreateParams) Validate() error {
	if p.ID == "" {
		return errors.New("holding ID is required")
	}
	if p.AccountID == "" {
		return errors.New("account ID is required")
	}
	if p.Symbol == "" {
		return errors.New("symbol is required")
	}
	if !IsValidAssetClass(p.AssetClass) {
		return ErrInvalidAssetClass
	}
	if math.IsNaN(p.Quantity) || math.IsInf(p.Quantity, 0) {
		return errors.New("quantity must be a finite number")
	}
	if p.AsOf.IsZero() {
		return errors.New("asOf is required")
	}
	return nil
}

// NewValue computes the USD value of a position. Every write path derives
// value through here so the quantity × price invariant holds.
func NewValue(quantity, priceUSD float64) float64 {
	return quantity * priceUSD
}

func IsValidAssetClass(c AssetClass) bool {
	switch c {
	case AssetCrypto, AssetEquity, AssetCash, AssetFixedIncome, AssetRealEstate:
		return true
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
