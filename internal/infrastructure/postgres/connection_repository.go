package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"networth/internal/domain/connection"
	"networth/internal/infrastructure/crypto"
)

// ConnectionRepository implements connection.Repository. Secret tokens are
// encrypted before they are written and decrypted on read.
type ConnectionRepository struct {
	db        *DB
	encryptor *crypto.Encryptor
}

var _ connection.Repository = (*ConnectionRepository)(nil)

func NewConnectionRepository(db *DB, encryptor *crypto.Encryptor) *ConnectionRepository {
	return &ConnectionRepository{db: db, encryptor: encryptor}
}

const connectionColumns = `id, user_id, provider, identifier, chain, nickname, secret_token, created_at`

func (r *ConnectionRepository) Create(ctx context.Context, params connection.CreateParams) (*connection.Connection, error) {
	secret, err := r.encryptor.Encrypt(params.SecretToken)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt secret token: %w", err)
	}

	query := `
		INSERT INTO connections (id, user_id, provider, identifier, chain, nickname, secret_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + connectionColumns

	conn, err := r.scan(r.db.QueryRowContext(
		ctx, query,
		params.ID, params.UserID, params.Provider, params.Identifier,
		nullString(params.Chain), nullString(params.Nickname), nullString(secret),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create connection: %w", err)
	}
	return conn, nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*connection.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`

	conn, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, connection.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	return conn, nil
}

func (r *ConnectionRepository) ListByUser(ctx context.Context, userID string, provider connection.Provider) ([]*connection.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE user_id = $1 AND provider = $2
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, provider)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var conns []*connection.Connection
	for rows.Next() {
		conn, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		conns = append(conns, conn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating connections: %w", err)
	}

	return conns, nil
}

// ListUserIDs returns every user owning at least one connection. The
// scheduler refreshes exactly these users.
func (r *ConnectionRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT user_id FROM connections ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list connection owners: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *ConnectionRepository) FindByIdentifier(ctx context.Context, userID string, provider connection.Provider, identifier string) (*connection.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE user_id = $1 AND provider = $2 AND identifier = $3
		ORDER BY created_at ASC
		LIMIT 1
	`

	conn, err := r.scan(r.db.QueryRowContext(ctx, query, userID, provider, identifier))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, connection.ErrConnectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find connection: %w", err)
	}
	return conn, nil
}

func (r *ConnectionRepository) scan(row scanner) (*connection.Connection, error) {
	var conn connection.Connection
	var chain, nickname, secret sql.NullString

	err := row.Scan(
		&conn.ID, &conn.UserID, &conn.Provider, &conn.Identifier,
		&chain, &nickname, &secret, &conn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	conn.Chain = chain.String
	conn.Nickname = nickname.String
	if secret.Valid && secret.String != "" {
		token, err := r.encryptor.Decrypt(secret.String)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt secret token: %w", err)
		}
		conn.SecretToken = token
	}
	return &conn, nil
}
