package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"

	"github.com/saaga0h/colorlux/pkg/config"
)

// PostgresClient implements Client on database/sql with the lib/pq driver
type PostgresClient struct {
	db     *sql.DB
	config *config.Config
	logger *slog.Logger
}

// NewClient creates a new Postgres client
func NewClient(cfg *config.Config, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresClient{config: cfg, logger: logger}
}

// Connect opens the pool sized from the configuration and pings the server
func (c *PostgresClient) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to Postgres",
		"host", c.config.PostgresHost,
		"port", c.config.PostgresPort,
		"database", c.config.PostgresDB)

	db, err := sql.Open("postgres", c.config.PostgresConnectionString())
	if err != nil {
		return fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(c.config.PostgresMaxConnections)
	db.SetMaxIdleConns(c.config.PostgresMaxIdleConnections)
	db.SetConnMaxLifetime(c.config.PostgresConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping postgres %s:%d: %w", c.config.PostgresHost, c.config.PostgresPort, err)
	}

	c.db = db
	c.logger.Info("Connected to Postgres", "max_connections", c.config.PostgresMaxConnections)

	return nil
}

// Disconnect closes the pool. Calling it on a closed client is a no-op.
func (c *PostgresClient) Disconnect() error {
	if c.db == nil {
		return nil
	}

	if err := c.db.Close(); err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}

	c.db = nil
	c.logger.Info("Disconnected from Postgres")

	return nil
}

// DB returns the connection pool
func (c *PostgresClient) DB() *sql.DB {
	return c.db
}
