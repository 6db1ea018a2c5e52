package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
)

// insertChunk bounds rows per INSERT so the bind-parameter count stays
// under the protocol limit.
const insertChunk = 500

const holdingColumns = `id, account_id, symbol, quantity, price_usd, value_usd, purchase_price_usd, asset_class, as_of, effective_date`

const positionQuery = `
	SELECT h.id, h.account_id, h.symbol, h.quantity, h.price_usd, h.value_usd,
	       h.purchase_price_usd, h.asset_class, h.as_of, h.effective_date,
	       a.id, a.connection_id, a.name, a.type, a.currency, a.external_id, a.created_at,
	       c.id, c.user_id, c.provider, c.identifier, c.chain, c.nickname, c.created_at
	FROM holdings h
	JOIN accounts a ON a.id = h.account_id
	JOIN connections c ON c.id = a.connection_id
`

// execer is satisfied by both *DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// HoldingRepository implements the holding.Repository interface for PostgreSQL
type HoldingRepository struct {
	db *DB
}

var _ holding.Repository = (*HoldingRepository)(nil)

func NewHoldingRepository(db *DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// Create inserts a single holding
func (r *HoldingRepository) Create(ctx context.Context, params holding.CreateParams) (*holding.Holding, error) {
	query := `
		INSERT INTO holdings (` + holdingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + holdingColumns

	var h holding.Holding
	var price, value, purchase sql.NullFloat64

	err := r.db.QueryRowContext(ctx, query, holdingArgs(params)...).Scan(
		&h.ID, &h.AccountID, &h.Symbol, &h.Quantity, &price, &value,
		&purchase, &h.AssetClass, &h.AsOf, &h.EffectiveDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create holding: %w", err)
	}

	h.PriceUSD = floatPtr(price)
	h.ValueUSD = floatPtr(value)
	h.PurchasePriceUSD = floatPtr(purchase)
	return &h, nil
}

// CreateBatch appends holdings in one transaction
func (r *HoldingRepository) CreateBatch(ctx context.Context, params []holding.CreateParams) (int, error) {
	if len(params) == 0 {
		return 0, nil
	}

	var inserted int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		n, err := insertHoldings(ctx, tx, params)
		inserted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplaceForAccount deletes the account's holdings and inserts params in
// the same transaction
func (r *HoldingRepository) ReplaceForAccount(ctx context.Context, accountID string, params []holding.CreateParams) (int, error) {
	for _, p := range params {
		if p.AccountID != accountID {
			return 0, fmt.Errorf("holding %s belongs to account %s, not %s", p.ID, p.AccountID, accountID)
		}
	}

	var inserted int
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM holdings WHERE account_id = $1`, accountID); err != nil {
			return fmt.Errorf("failed to delete holdings: %w", err)
		}
		n, err := insertHoldings(ctx, tx, params)
		inserted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetByID returns the holding with its account and connection
func (r *HoldingRepository) GetByID(ctx context.Context, id string) (*holding.Position, error) {
	pos, err := scanPosition(r.db.QueryRowContext(ctx, positionQuery+` WHERE h.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, holding.ErrHoldingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}
	return pos, nil
}

// ListByUser returns every position of the user, largest value first
func (r *HoldingRepository) ListByUser(ctx context.Context, userID string) ([]*holding.Position, error) {
	query := positionQuery + `
		WHERE c.user_id = $1
		ORDER BY h.value_usd DESC NULLS LAST, h.symbol ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var positions []*holding.Position
	for rows.Next() {
		pos, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		positions = append(positions, pos)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}

	return positions, nil
}

// UpdatePrice rewrites price, value and asOf of one holding
func (r *HoldingRepository) UpdatePrice(ctx context.Context, id string, priceUSD, valueUSD float64, asOf time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE holdings SET price_usd = $2, value_usd = $3, as_of = $4 WHERE id = $1`,
		id, priceUSD, valueUSD, asOf,
	)
	if err != nil {
		return fmt.Errorf("failed to update holding price: %w", err)
	}
	return expectAffected(result, holding.ErrHoldingNotFound)
}

// Delete removes a holding
func (r *HoldingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return expectAffected(result, holding.ErrHoldingNotFound)
}

func insertHoldings(ctx context.Context, db execer, params []holding.CreateParams) (int, error) {
	const cols = 10
	inserted := 0

	for start := 0; start < len(params); start += insertChunk {
		end := min(start+insertChunk, len(params))
		chunk := params[start:end]

		valueStrings := make([]string, 0, len(chunk))
		valueArgs := make([]any, 0, len(chunk)*cols)
		for i, p := range chunk {
			placeholders := make([]string, cols)
			for j := range cols {
				placeholders[j] = fmt.Sprintf("$%d", i*cols+j+1)
			}
			valueStrings = append(valueStrings, "("+strings.Join(placeholders, ", ")+")")
			valueArgs = append(valueArgs, holdingArgs(p)...)
		}

		query := fmt.Sprintf(`INSERT INTO holdings (%s) VALUES %s`, holdingColumns, strings.Join(valueStrings, ", "))
		result, err := db.ExecContext(ctx, query, valueArgs...)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert holdings: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get affected rows: %w", err)
		}
		inserted += int(n)
	}

	return inserted, nil
}

func holdingArgs(p holding.CreateParams) []any {
	return []any{
		p.ID, p.AccountID, p.Symbol, p.Quantity,
		nullFloat64(p.PriceUSD), nullFloat64(p.ValueUSD), nullFloat64(p.PurchasePriceUSD),
		p.AssetClass, p.AsOf, p.EffectiveDate,
	}
}

func scanPosition(row scanner) (*holding.Position, error) {
	var pos holding.Position
	var acc account.Account
	var conn connection.Connection
	var price, value, purchase sql.NullFloat64
	var externalID, chain, nickname sql.NullString

	err := row.Scan(
		&pos.ID, &pos.AccountID, &pos.Symbol, &pos.Quantity, &price, &value,
		&purchase, &pos.AssetClass, &pos.AsOf, &pos.EffectiveDate,
		&acc.ID, &acc.ConnectionID, &acc.Name, &acc.Type, &acc.Currency, &externalID, &acc.CreatedAt,
		&conn.ID, &conn.UserID, &conn.Provider, &conn.Identifier, &chain, &nickname, &conn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	pos.PriceUSD = floatPtr(price)
	pos.ValueUSD = floatPtr(value)
	pos.PurchasePriceUSD = floatPtr(purchase)
	acc.ExternalID = externalID.String
	conn.Chain = chain.String
	conn.Nickname = nickname.String
	pos.Account = &acc
	pos.Connection = &conn
	return &pos, nil
}

func expectAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
