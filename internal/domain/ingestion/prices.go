package ingestion

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"networth/internal/domain/holding"
	"networth/internal/shared/errs"
)

// PriceRefreshResult reports how many holdings were repriced.
type PriceRefreshResult struct {
	Considered int `json:"considered"`
	Updated    int `json:"updated"`
	Failed     int `json:"failed"`
}

// PriceRefreshService reprices a user's holdings from the spot-price source.
type PriceRefreshService struct {
	holdings  HoldingStore
	prices    holding.PriceLookup
	onUpdated holding.ChangeHook
	now       func() time.Time
}

func NewPriceRefreshService(holdings HoldingStore, prices holding.PriceLookup, onUpdated holding.ChangeHook) *PriceRefreshService {
	return &PriceRefreshService{
		holdings:  holdings,
		prices:    prices,
		onUpdated: onUpdated,
		now:       time.Now,
	}
}

// WithoutHook returns a copy that never fires the update hook.
func (s *PriceRefreshService) WithoutHook() *PriceRefreshService {
	c := *s
	c.onUpdated = nil
	return &c
}

// RefreshPrices looks up a price for every non-cash holding with a symbol
// and rewrites price, value and asOf where one is found.
func (s *PriceRefreshService) RefreshPrices(ctx context.Context, userID string) (*PriceRefreshResult, error) {
	const op = "ingestion.RefreshPrices"

	ctx, span := tracer.Start(ctx, "prices.refresh")
	defer span.End()

	positions, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Persistence(op, err)
	}

	result := &PriceRefreshResult{}
	asOf := s.now()

	for _, p := range positions {
		if p.AssetClass == holding.AssetCash || p.Symbol == "" {
			continue
		}
		result.Considered++

		price, ok := s.prices.LookupPrice(ctx, p.Symbol, p.AssetClass)
		if !ok {
			continue
		}

		value := holding.NewValue(p.Quantity, price)
		if err := s.holdings.UpdatePrice(ctx, p.ID, price, value, asOf); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id":    userID,
				"holding_id": p.ID,
			}).Error("failed to update holding price")
			result.Failed++
			continue
		}
		result.Updated++
	}

	log.WithFields(log.Fields{
		"user_id":    userID,
		"considered": result.Considered,
		"updated":    result.Updated,
	}).Info("price refresh complete")

	if result.Updated > 0 && s.onUpdated != nil {
		s.onUpdated(ctx, userID)
	}
	return result, nil
}
