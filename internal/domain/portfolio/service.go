package portfolio

import (
	"context"

	"golang.org/x/sync/errgroup"

	"networth/internal/domain/holding"
	"networth/internal/domain/liability"
	"networth/internal/domain/realestate"
	"networth/internal/shared/errs"
)

type HoldingReader interface {
	ListByUser(ctx context.Context, userID string) ([]*holding.Position, error)
}

type LiabilityReader interface {
	ListByUser(ctx context.Context, userID string) ([]*liability.Liability, error)
}

type PropertyReader interface {
	ListByUser(ctx context.Context, userID string) ([]*realestate.Property, error)
}

// Service reads a user's positions from the store and aggregates them.
type Service struct {
	holdings    HoldingReader
	liabilities LiabilityReader
	properties  PropertyReader
	classifier  Classifier
}

func NewService(holdings HoldingReader, liabilities LiabilityReader, properties PropertyReader, classifier Classifier) *Service {
	return &Service{
		holdings:    holdings,
		liabilities: liabilities,
		properties:  properties,
		classifier:  classifier,
	}
}

// NetWorth returns the full net-worth aggregation for userID.
func (s *Service) NetWorth(ctx context.Context, userID string) (NetWorthSummary, error) {
	var (
		positions  []*holding.Position
		debts      []*liability.Liability
		properties []*realestate.Property
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		positions, err = s.holdings.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		debts, err = s.liabilities.ListByUser(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		properties, err = s.properties.ListByUser(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return NetWorthSummary{}, errs.Persistence("portfolio.NetWorth", err)
	}

	holdings := make([]*holding.Holding, len(positions))
	for i, p := range positions {
		holdings[i] = &p.Holding
	}
	return ComputeNetWorth(holdings, liability.Balances(debts), realestate.Values(properties)), nil
}

// Exposure returns the holdings-only exposure summary for userID.
func (s *Service) Exposure(ctx context.Context, userID string) (ExposureSummary, error) {
	positions, err := s.holdings.ListByUser(ctx, userID)
	if err != nil {
		return ExposureSummary{}, errs.Persistence("portfolio.Exposure", err)
	}
	return ComputeExposureSummary(positions, s.classifier), nil
}
