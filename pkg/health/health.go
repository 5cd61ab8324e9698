package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/saaga0h/colorlux/pkg/mqtt"
	"github.com/saaga0h/colorlux/pkg/postgres"
	"github.com/saaga0h/colorlux/pkg/redis"
)

// StatusFunc builds the device status document served on /status
type StatusFunc func(ctx context.Context) (interface{}, error)

// Checker provides health check functionality for the agent. Every dependency is optional;
// a nil client is reported as disabled.
type Checker struct {
	mqtt     mqtt.Client
	redis    redis.Client
	postgres postgres.Client
	status   StatusFunc
	logger   *slog.Logger
}

// NewChecker creates a new health checker with the given dependencies
func NewChecker(mqttClient mqtt.Client, redisClient redis.Client, pgClient postgres.Client, status StatusFunc, logger *slog.Logger) *Checker {
	return &Checker{
		mqtt:     mqttClient,
		redis:    redisClient,
		postgres: pgClient,
		status:   status,
		logger:   logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp string    `json:"timestamp"`
	Services  *Services `json:"services,omitempty"`
}

// Services reports each optional dependency as connected, disconnected or disabled
type Services struct {
	Redis    string `json:"redis"`
	MQTT     string `json:"mqtt"`
	Postgres string `json:"postgres"`
	PgVector string `json:"pgvector,omitempty"`
}

// HandlerFunc returns an HTTP handler function for health checks
// Returns 200 if process is alive without checking dependencies
func (h *Checker) HandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		}
		h.writeJSON(w, http.StatusOK, response)
	}
}

// DetailedHandlerFunc returns a handler that checks all enabled dependencies
func (h *Checker) DetailedHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		services := &Services{
			Redis:    "disabled",
			MQTT:     "disabled",
			Postgres: "disabled",
		}

		if h.mqtt != nil {
			services.MQTT = connectedState(h.mqtt.IsConnected())
		}
		if h.redis != nil {
			services.Redis = connectedState(h.redis.Ping(ctx) == nil)
		}
		if h.postgres != nil {
			pg, err := h.postgres.HealthCheck(ctx)
			services.Postgres = connectedState(err == nil && pg.Connected)
			if pg != nil {
				services.PgVector = pg.VectorVersion
			}
		}

		status := "healthy"
		statusCode := http.StatusOK
		if services.Redis == "disconnected" || services.MQTT == "disconnected" || services.Postgres == "disconnected" {
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			Services:  services,
		}
		h.writeJSON(w, statusCode, response)
	}
}

// StatusHandlerFunc serves the document built by the status function
func (h *Checker) StatusHandlerFunc() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.status == nil {
			h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "status not available"})
			return
		}

		doc, err := h.status(r.Context())
		if err != nil {
			h.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
			return
		}
		h.writeJSON(w, http.StatusOK, doc)
	}
}

func (h *Checker) writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode health response", "error", err)
	}
}

func connectedState(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}
