package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"networth/internal/domain/realestate"
)

type RealEstateRepository struct {
	db *DB
}

var _ realestate.Repository = (*RealEstateRepository)(nil)

func NewRealEstateRepository(db *DB) *RealEstateRepository {
	return &RealEstateRepository{db: db}
}

const propertyColumns = `id, user_id, name, property_type, city, state, current_value_usd, purchase_price_usd, notes, created_at`

func (r *RealEstateRepository) Create(ctx context.Context, params realestate.CreateParams) (*realestate.Property, error) {
	query := `
		INSERT INTO real_estate_properties (id, user_id, name, property_type, city, state, current_value_usd, purchase_price_usd, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + propertyColumns

	p, err := scanProperty(r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.Name,
		nullString(params.PropertyType), nullString(params.City), nullString(params.State),
		params.CurrentValue(), nullFloat64(params.PurchasePriceUSD), nullString(params.Notes),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}
	return p, nil
}

func (r *RealEstateRepository) ListByUser(ctx context.Context, userID string) ([]*realestate.Property, error) {
	query := `
		SELECT ` + propertyColumns + `
		FROM real_estate_properties
		WHERE user_id = $1
		ORDER BY current_value_usd DESC, created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var out []*realestate.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		out = append(out, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating properties: %w", err)
	}

	return out, nil
}

func scanProperty(row scanner) (*realestate.Property, error) {
	var p realestate.Property
	var propertyType, city, state, notes sql.NullString
	var purchase sql.NullFloat64

	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &propertyType, &city, &state,
		&p.CurrentValueUSD, &purchase, &notes, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.PropertyType = propertyType.String
	p.City = city.String
	p.State = state.String
	p.PurchasePriceUSD = floatPtr(purchase)
	p.Notes = notes.String
	return &p, nil
}
