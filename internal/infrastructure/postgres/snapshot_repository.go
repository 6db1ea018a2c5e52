package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"networth/internal/domain/snapshot"
)

// SnapshotRepository is append-only.
type SnapshotRepository struct {
	db *DB
}

var _ snapshot.Repository = (*SnapshotRepository)(nil)

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Append(ctx context.Context, s *snapshot.Snapshot) error {
	breakdown, err := json.Marshal(s.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	query := `
		INSERT INTO snapshots (
			id, user_id, taken_at, total_net_worth_usd, total_crypto_usd, total_tradfi_usd,
			total_liabilities_usd, total_real_estate_usd, breakdown, source, trigger_event
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.TakenAt, s.TotalNetWorthUSD, s.TotalCryptoUSD, s.TotalTradfiUSD,
		s.TotalLiabilitiesUSD, s.TotalRealEstateUSD, string(breakdown), s.Source, s.Trigger,
	)
	if err != nil {
		return fmt.Errorf("failed to append snapshot: %w", err)
	}
	return nil
}

func (r *SnapshotRepository) ListByUser(ctx context.Context, userID string) ([]*snapshot.Snapshot, error) {
	query := `
		SELECT id, user_id, taken_at, total_net_worth_usd, total_crypto_usd, total_tradfi_usd,
		       total_liabilities_usd, total_real_estate_usd, breakdown, source, trigger_event
		FROM snapshots
		WHERE user_id = $1
		ORDER BY taken_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*snapshot.Snapshot
	for rows.Next() {
		var s snapshot.Snapshot
		var breakdown []byte

		err := rows.Scan(
			&s.ID, &s.UserID, &s.TakenAt, &s.TotalNetWorthUSD, &s.TotalCryptoUSD, &s.TotalTradfiUSD,
			&s.TotalLiabilitiesUSD, &s.TotalRealEstateUSD, &breakdown, &s.Source, &s.Trigger,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if err := json.Unmarshal(breakdown, &s.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal breakdown: %w", err)
		}
		out = append(out, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshots: %w", err)
	}

	return out, nil
}
