// internal/common/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hrdesk-automation/internal/common/config"

	_ "github.com/lib/pq"
)

// PostgresClient holds the connection pool behind the HRIS store. The store
// works against the raw DB handle; this wrapper owns pool sizing and
// lifecycle.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool. Connections are recycled on an interval so a
// failover on the HRIS database side is picked up without a restart.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
