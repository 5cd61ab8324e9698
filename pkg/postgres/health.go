package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// HealthStatus describes the journal database as seen by the health endpoint
type HealthStatus struct {
	Connected       bool      `json:"connected"`
	Database        string    `json:"database"`
	VectorVersion   string    `json:"pgvector_version,omitempty"`
	OpenConnections int       `json:"open_connections"`
	InUse           int       `json:"in_use"`
	Idle            int       `json:"idle"`
	Error           string    `json:"error,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}

const vectorVersionQuery = `SELECT extversion FROM pg_extension WHERE extname = 'vector'`

// HealthCheck pings the server and looks up the installed pgvector version
func (c *PostgresClient) HealthCheck(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{
		Database:  c.config.PostgresDB,
		Timestamp: time.Now(),
	}

	if c.db == nil {
		status.Error = "not connected"
		return status, nil
	}

	stats := c.db.Stats()
	status.OpenConnections = stats.OpenConnections
	status.InUse = stats.InUse
	status.Idle = stats.Idle

	if err := c.db.PingContext(ctx); err != nil {
		status.Error = fmt.Sprintf("ping failed: %v", err)
		return status, nil
	}
	status.Connected = true

	err := c.db.QueryRowContext(ctx, vectorVersionQuery).Scan(&status.VectorVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		status.Error = "pgvector extension not installed"
	case err != nil:
		status.Error = fmt.Sprintf("failed to query pgvector version: %v", err)
	}

	return status, nil
}
