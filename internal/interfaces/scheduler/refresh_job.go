package scheduler

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"networth/internal/domain/ingestion"
	"networth/internal/domain/snapshot"
	"networth/internal/shared/errs"
)

type WalletRefresher interface {
	RefreshWallets(ctx context.Context, userID string) (*ingestion.RefreshResult, error)
}

type PriceRefresher interface {
	RefreshPrices(ctx context.Context, userID string) (*ingestion.PriceRefreshResult, error)
}

type SnapshotRecorder interface {
	Record(ctx context.Context, userID string, trigger snapshot.Trigger) (*snapshot.Snapshot, error)
}

type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// RefreshServices bundles what a UserRefreshJob runs.
type RefreshServices struct {
	Wallets   WalletRefresher
	Prices    PriceRefresher
	Snapshots SnapshotRecorder
}

// UserRefreshJob refreshes a user's wallets, then prices, then records a
// scheduled snapshot. An unconfigured wallet provider skips the first step.
type UserRefreshJob struct {
	userID string
	svc    RefreshServices
}

func NewUserRefreshJob(userID string, svc RefreshServices) *UserRefreshJob {
	return &UserRefreshJob{userID: userID, svc: svc}
}

func (j *UserRefreshJob) Execute(ctx context.Context) error {
	logger := log.WithField("user_id", j.userID)

	wallets, err := j.svc.Wallets.RefreshWallets(ctx, j.userID)
	switch {
	case errs.Is(err, errs.KindValidation):
		logger.WithError(err).Debug("wallet refresh skipped")
	case err != nil:
		return fmt.Errorf("wallet refresh failed: %w", err)
	default:
		logger.WithFields(log.Fields{
			"wallets": wallets.WalletsTotal,
			"synced":  wallets.Synced,
			"failed":  wallets.Failed,
		}).Info("wallet refresh completed")
	}

	prices, err := j.svc.Prices.RefreshPrices(ctx, j.userID)
	if err != nil {
		return fmt.Errorf("price refresh failed: %w", err)
	}
	logger.WithFields(log.Fields{
		"considered": prices.Considered,
		"updated":    prices.Updated,
	}).Info("price refresh completed")

	if _, err := j.svc.Snapshots.Record(ctx, j.userID, snapshot.TriggerScheduled); err != nil {
		return fmt.Errorf("snapshot failed: %w", err)
	}
	return nil
}

func (j *UserRefreshJob) UserID() string {
	return j.userID
}

func (j *UserRefreshJob) Description() string {
	return "scheduled refresh"
}

// RefreshJobProvider returns a JobProvider with one UserRefreshJob per
// user that owns a connection.
func RefreshJobProvider(users UserLister, svc RefreshServices) JobProvider {
	return func(ctx context.Context) ([]Job, error) {
		ids, err := users.ListUserIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list users: %w", err)
		}

		jobs := make([]Job, 0, len(ids))
		for _, id := range ids {
			jobs = append(jobs, NewUserRefreshJob(id, svc))
		}
		return jobs, nil
	}
}
