package snapshot

import (
	"context"
	"time"
)

// Source is the coarse origin of a snapshot. The set is closed: consumers of
// the series may rely on seeing only these three values.
type Source string

const (
	SourceManualWrite   Source = "manual_write"
	SourceWalletRefresh Source = "wallet_refresh"
	SourcePlaidSync     Source = "plaid_sync"
)

func (s Source) Valid() bool {
	switch s {
	case SourceManualWrite, SourceWalletRefresh, SourcePlaidSync:
		return true
	}
	return false
}

// Trigger names the event that caused a snapshot. It refines Source and is
// stored next to it.
type Trigger string

const (
	TriggerManualWrite     Trigger = "manual_write"
	TriggerWalletRefresh   Trigger = "wallet_refresh"
	TriggerPlaidSync       Trigger = "plaid_sync"
	TriggerHoldingChange   Trigger = "holding_change"
	TriggerLiabilityChange Trigger = "liability_change"
	TriggerPropertyChange  Trigger = "property_change"
	TriggerPriceRefresh    Trigger = "price_refresh"
	TriggerScheduled       Trigger = "scheduled"
)

func (t Trigger) Valid() bool {
	switch t {
	case TriggerManualWrite, TriggerWalletRefresh, TriggerPlaidSync, TriggerHoldingChange,
		TriggerLiabilityChange, TriggerPropertyChange, TriggerPriceRefresh, TriggerScheduled:
		return true
	}
	return false
}

// Source maps the trigger onto the closed source set. Provider syncs keep
// their own source; every other write counts as manual.
func (t Trigger) Source() Source {
	switch t {
	case TriggerWalletRefresh:
		return SourceWalletRefresh
	case TriggerPlaidSync:
		return SourcePlaidSync
	}
	return SourceManualWrite
}

// Breakdown is stored as JSON next to the scalar totals.
type Breakdown struct {
	Crypto      float64 `json:"crypto"`
	Tradfi      float64 `json:"tradfi"`
	RealEstate  float64 `json:"realEstate"`
	Liabilities float64 `json:"liabilities"`
}

// Snapshot is one immutable point of the net-worth series.
type Snapshot struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	TakenAt             time.Time `json:"takenAt"`
	TotalNetWorthUSD    float64   `json:"totalNetWorthUsd"`
	TotalCryptoUSD      float64   `json:"totalCryptoUsd"`
	TotalTradfiUSD      float64   `json:"totalTradfiUsd"`
	TotalLiabilitiesUSD float64   `json:"totalLiabilitiesUsd"`
	TotalRealEstateUSD  float64   `json:"totalRealEstateUsd"`
	Breakdown           Breakdown `json:"breakdown"`
	Source              Source    `json:"source"`
	Trigger             Trigger   `json:"trigger"`
}

// Repository is append-only: snapshots are never updated or deleted.
type Repository interface {
	Append(ctx context.Context, s *Snapshot) error
	// ListByUser returns the user's snapshots ordered by TakenAt ascending.
	ListByUser(ctx context.Context, userID string) ([]*Snapshot, error)
}
