// Package snapshot records the net-worth time series.
package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"networth/internal/domain/portfolio"
	"networth/internal/shared/errs"
)

// DefaultBackgroundTimeout bounds a snapshot recorded after a mutation.
const DefaultBackgroundTimeout = 30 * time.Second

var (
	meter                = otel.Meter("networth/snapshot")
	snapshotsRecorded, _ = meter.Int64Counter("snapshot.recorded.total",
		metric.WithDescription("Snapshots appended to the net-worth series"),
	)
	snapshotsFailed, _ = meter.Int64Counter("snapshot.failed.total",
		metric.WithDescription("Snapshot recordings that failed"),
	)
)

type NetWorthCalculator interface {
	NetWorth(ctx context.Context, userID string) (portfolio.NetWorthSummary, error)
}

// Recorder appends snapshots. There is no lock against concurrent writers;
// near-simultaneous duplicates are tolerated.
type Recorder struct {
	repo     Repository
	networth NetWorthCalculator
	timeout  time.Duration
	now      func() time.Time

	wg sync.WaitGroup
}

func NewRecorder(repo Repository, networth NetWorthCalculator) *Recorder {
	return &Recorder{
		repo:     repo,
		networth: networth,
		timeout:  DefaultBackgroundTimeout,
		now:      time.Now,
	}
}

// Record computes the user's full net worth now and appends it, tagged with
// the trigger and the source it maps to.
func (r *Recorder) Record(ctx context.Context, userID string, trigger Trigger) (*Snapshot, error) {
	const op = "snapshot.Record"

	if userID == "" {
		return nil, errs.Validation(op, "user ID is required")
	}
	if !trigger.Valid() {
		return nil, errs.Validation(op, fmt.Sprintf("unknown snapshot trigger %q", trigger))
	}

	summary, err := r.networth.NetWorth(ctx, userID)
	if err != nil {
		r.recordFailure(ctx, trigger)
		return nil, err
	}

	s := &Snapshot{
		ID:                  uuid.NewString(),
		UserID:              userID,
		TakenAt:             r.now().UTC(),
		TotalNetWorthUSD:    summary.TotalNetWorthUSD,
		TotalCryptoUSD:      summary.TotalCryptoUSD,
		TotalTradfiUSD:      summary.TotalTradfiUSD,
		TotalLiabilitiesUSD: summary.TotalLiabilitiesUSD,
		TotalRealEstateUSD:  summary.TotalRealEstateUSD,
		Breakdown: Breakdown{
			Crypto:      summary.TotalCryptoUSD,
			Tradfi:      summary.TotalTradfiUSD,
			RealEstate:  summary.TotalRealEstateUSD,
			Liabilities: summary.TotalLiabilitiesUSD,
		},
		Source:  trigger.Source(),
		Trigger: trigger,
	}

	if err := r.repo.Append(ctx, s); err != nil {
		r.recordFailure(ctx, trigger)
		return nil, errs.Persistence(op, err)
	}

	snapshotsRecorded.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(s.Source)),
		attribute.String("trigger", string(trigger)),
	))
	return s, nil
}

// RecordAfter records a snapshot in the background after a mutation. The
// work outlives ctx's cancellation but is bounded by the recorder timeout.
// Failures are logged and never reach the caller.
func (r *Recorder) RecordAfter(ctx context.Context, userID string, trigger Trigger) {
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer cancel()

		if _, err := r.Record(bg, userID, trigger); err != nil {
			log.WithContext(bg).WithFields(log.Fields{
				"user_id": userID,
				"trigger": trigger,
			}).WithError(err).Warn("background snapshot failed")
		}
	}()
}

// Hook adapts RecordAfter to the mutation callbacks of the domain services.
func (r *Recorder) Hook(trigger Trigger) func(ctx context.Context, userID string) {
	return func(ctx context.Context, userID string) {
		r.RecordAfter(ctx, userID, trigger)
	}
}

// Wait blocks until every background recording has finished.
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// List returns the user's series ordered by TakenAt ascending.
func (r *Recorder) List(ctx context.Context, userID string) ([]*Snapshot, error) {
	list, err := r.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, errs.Persistence("snapshot.List", err)
	}
	return list, nil
}

func (r *Recorder) recordFailure(ctx context.Context, trigger Trigger) {
	snapshotsFailed.Add(ctx, 1, metric.WithAttributes(attribute.String("trigger", string(trigger))))
}
