package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"networth/internal/domain/liability"
)

type LiabilityRepository struct {
	db *DB
}

var _ liability.Repository = (*LiabilityRepository)(nil)

func NewLiabilityRepository(db *DB) *LiabilityRepository {
	return &LiabilityRepository{db: db}
}

const liabilityColumns = `id, user_id, name, type, balance_usd, credit_limit_usd, interest_rate, min_payment_usd, notes, created_at`

func (r *LiabilityRepository) Create(ctx context.Context, params liability.CreateParams) (*liability.Liability, error) {
	query := `
		INSERT INTO liabilities (id, user_id, name, type, balance_usd, credit_limit_usd, interest_rate, min_payment_usd, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + liabilityColumns

	l, err := scanLiability(r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.Name, params.Type, params.Balance(),
		nullFloat64(params.CreditLimitUSD), nullFloat64(params.InterestRate), nullFloat64(params.MinPaymentUSD),
		nullString(params.Notes),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create liability: %w", err)
	}
	return l, nil
}

func (r *LiabilityRepository) ListByUser(ctx context.Context, userID string) ([]*liability.Liability, error) {
	query := `
		SELECT ` + liabilityColumns + `
		FROM liabilities
		WHERE user_id = $1
		ORDER BY balance_usd DESC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list liabilities: %w", err)
	}
	defer rows.Close()

	var out []*liability.Liability
	for rows.Next() {
		l, err := scanLiability(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan liability: %w", err)
		}
		out = append(out, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating liabilities: %w", err)
	}

	return out, nil
}

func scanLiability(row scanner) (*liability.Liability, error) {
	var l liability.Liability
	var creditLimit, rate, minPayment sql.NullFloat64
	var notes sql.NullString

	err := row.Scan(
		&l.ID, &l.UserID, &l.Name, &l.Type, &l.BalanceUSD,
		&creditLimit, &rate, &minPayment, &notes, &l.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.CreditLimitUSD = floatPtr(creditLimit)
	l.InterestRate = floatPtr(rate)
	l.MinPaymentUSD = floatPtr(minPayment)
	l.Notes = notes.String
	return &l, nil
}
