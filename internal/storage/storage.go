package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pendergraft/kontocheck/internal/config"
)

// APIKeyStore handles API key operations
type APIKeyStore interface {
	CreateAPIKey(ctx context.Context, name string) (key string, err error)
	ValidateAPIKey(ctx context.Context, key string) (*APIKey, error)
	ListAPIKeys(ctx context.Context) ([]APIKey, error)
	RevokeAPIKey(ctx context.Context, id string) error
}

// CheckStore handles the validation log
type CheckStore interface {
	RecordCheck(ctx context.Context, c *Check) error
	ListChecks(ctx context.Context, filter CheckFilter, pagination PaginationParams) (*PaginatedResult[Check], error)
}

// Store combines all storage interfaces with lifecycle methods.
// Domain services define their own minimal interfaces based on their actual usage.
type Store interface {
	APIKeyStore
	CheckStore

	// Lifecycle
	Close() error
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
}

// APIKey represents an API key
type APIKey struct {
	ID         string
	Name       string
	KeyHash    string
	CreatedAt  string
	LastUsedAt string
	RevokedAt  string
}

// Check is one entry of the validation log
type Check struct {
	ID          string
	Method      string
	Account     string // masked, see MaskAccount
	Valid       bool
	Outcome     string
	Alternative int // -1 when no chain entry decided
	KeyID       string
	RequestID   string
	CreatedAt   time.Time
}

// CheckFilter contains filter options for listing checks
type CheckFilter struct {
	Method string
}

// PaginationParams contains pagination options
type PaginationParams struct {
	Limit  int
	Cursor string
}

// PaginatedResult contains paginated results
type PaginatedResult[T any] struct {
	Data       []T
	HasMore    bool
	NextCursor string
}

// New creates a new store based on configuration
func New(cfg config.StorageConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Type {
	case config.StorageSQLite:
		return NewSQLiteStore(cfg.SQLite.Path, logger)
	case config.StoragePostgres:
		return NewPostgresStore(cfg.Postgres.URL, logger)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
