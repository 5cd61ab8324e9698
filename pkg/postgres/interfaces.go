package postgres

import (
	"context"
	"database/sql"
)

// Client owns the connection pool of the calibration journal
type Client interface {
	// Connect opens the pool and verifies the server is reachable
	Connect(ctx context.Context) error

	// Disconnect closes the pool
	Disconnect() error

	// DB returns the underlying connection pool, nil before Connect
	DB() *sql.DB

	// HealthCheck reports connectivity, pgvector availability and pool usage
	HealthCheck(ctx context.Context) (*HealthStatus, error)
}
