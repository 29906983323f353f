package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresStore creates a new Postgres store
func NewPostgresStore(url string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate runs database migrations
func (s *PostgresStore) Migrate(ctx context.Context) error {
	schema := `
	-- API keys
	CREATE TABLE IF NOT EXISTS api_keys (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		key_hash TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		last_used_at TIMESTAMPTZ,
		revoked_at TIMESTAMPTZ
	);

	-- Validation log
	CREATE TABLE IF NOT EXISTS checks (
		id UUID PRIMARY KEY,
		method TEXT NOT NULL,
		account TEXT NOT NULL,
		valid BOOLEAN NOT NULL,
		outcome TEXT NOT NULL,
		alternative INTEGER NOT NULL,
		key_id TEXT,
		request_id TEXT,
		created_at TIMESTAMPTZ NOT NULL
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_checks_created ON checks(created_at DESC, id DESC);
	CREATE INDEX IF NOT EXISTS idx_checks_method ON checks(method, created_at DESC);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	s.logger.Info("database migrations complete")
	return nil
}

// RecordCheck appends an entry to the validation log
func (s *PostgresStore) RecordCheck(ctx context.Context, c *Check) error {
	if c.ID == "" {
		c.ID = generateID()
	}
	c.CreatedAt = checkTime(c.CreatedAt)

	query := `
		INSERT INTO checks (id, method, account, valid, outcome, alternative, key_id, request_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Method, c.Account, c.Valid, c.Outcome, c.Alternative, c.KeyID, c.RequestID, c.CreatedAt,
	)
	return err
}

// ListChecks lists validation log entries, newest first
func (s *PostgresStore) ListChecks(ctx context.Context, filter CheckFilter, pagination PaginationParams) (*PaginatedResult[Check], error) {
	query := `SELECT id, method, account, valid, outcome, alternative, key_id, request_id, created_at FROM checks WHERE TRUE`
	var args []any

	if filter.Method != "" {
		args = append(args, filter.Method)
		query += fmt.Sprintf(` AND method = $%d`, len(args))
	}
	if pagination.Cursor != "" {
		ts, id, err := decodeCursor(pagination.Cursor)
		if err != nil {
			return nil, err
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidCursor, pagination.Cursor)
		}
		args = append(args, ts, id)
		query += fmt.Sprintf(` AND (created_at, id) < ($%d, $%d::uuid)`, len(args)-1, len(args))
	}
	args = append(args, pagination.Limit+1)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d`, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var c Check
		var keyID, requestID sql.NullString
		var createdAt time.Time
		if err := rows.Scan(&c.ID, &c.Method, &c.Account, &c.Valid, &c.Outcome, &c.Alternative, &keyID, &requestID, &createdAt); err != nil {
			return nil, err
		}
		c.KeyID = keyID.String
		c.RequestID = requestID.String
		c.CreatedAt = createdAt.UTC()
		checks = append(checks, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return page(checks, pagination.Limit), nil
}

// CreateAPIKey creates a new API key
func (s *PostgresStore) CreateAPIKey(ctx context.Context, name string) (string, error) {
	key := generateAPIKey()
	hash := hashAPIKey(key)
	id := generateID()
	_, err := s.db.ExecContext(ctx, "INSERT INTO api_keys (id, key_hash, name) VALUES ($1, $2, $3)", id, hash, name)
	if err != nil {
		return "", err
	}
	return key, nil
}

// ValidateAPIKey validates an API key
func (s *PostgresStore) ValidateAPIKey(ctx context.Context, key string) (*APIKey, error) {
	hash := hashAPIKey(key)
	var ak APIKey
	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, "SELECT id, key_hash, name, created_at FROM api_keys WHERE key_hash = $1 AND revoked_at IS NULL", hash).Scan(
		&ak.ID, &ak.KeyHash, &ak.Name, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ak.CreatedAt = createdAt.Format("2006-01-02 15:04:05")
	// Update last used
	_, _ = s.db.ExecContext(ctx, "UPDATE api_keys SET last_used_at = NOW() WHERE id = $1", ak.ID)
	return &ak, nil
}

// ListAPIKeys lists all API keys
func (s *PostgresStore) ListAPIKeys(ctx context.Context) ([]APIKey, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name, created_at, last_used_at FROM api_keys WHERE revoked_at IS NULL ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []APIKey
	for rows.Next() {
		var k APIKey
		var createdAt time.Time
		var lastUsed sql.NullTime
		if err := rows.Scan(&k.ID, &k.Name, &createdAt, &lastUsed); err != nil {
			return nil, err
		}
		k.CreatedAt = createdAt.Format("2006-01-02 15:04:05")
		if lastUsed.Valid {
			k.LastUsedAt = lastUsed.Time.Format("2006-01-02 15:04:05")
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// RevokeAPIKey revokes an API key
func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res, err := s.db.ExecContext(ctx, "UPDATE api_keys SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
