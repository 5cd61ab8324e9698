package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saaga0h/colorlux/internal/history"
	"github.com/saaga0h/colorlux/internal/journal"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/internal/telemetry"
	"github.com/saaga0h/colorlux/pkg/config"
	"github.com/saaga0h/colorlux/pkg/mqtt"
	"github.com/saaga0h/colorlux/pkg/postgres"
	"github.com/saaga0h/colorlux/pkg/redis"
)

// sinkSet holds the optional report consumers and their connections. Disabled clients stay nil.
type sinkSet struct {
	mqttClient  mqtt.Client
	redisClient redis.Client
	pgClient    postgres.Client

	publisher *telemetry.Publisher
	history   *history.Sink
	journal   *journal.Journal

	queues []*sensing.AsyncSink
}

// openSinks connects the enabled stores. On failure everything opened so far is closed again.
func openSinks(ctx context.Context, cfg *config.Config, debouncer *reference.Debouncer, logger *slog.Logger) (*sinkSet, error) {
	s := &sinkSet{}
	if err := s.open(ctx, cfg, debouncer, logger); err != nil {
		s.close(logger)
		return nil, err
	}
	return s, nil
}

func (s *sinkSet) open(ctx context.Context, cfg *config.Config, debouncer *reference.Debouncer, logger *slog.Logger) error {
	queue := func(name string, sink sensing.Sink) {
		s.queues = append(s.queues, sensing.NewAsyncSink(name, sink, cfg.TelemetryQueueSize, logger))
	}

	if cfg.MQTTEnabled {
		client := mqtt.NewClient(cfg, logger)
		s.publisher = telemetry.NewPublisher(client, cfg, logger)
		if err := s.publisher.Start(ctx); err != nil {
			return err
		}
		if err := telemetry.NewRemoteButton(client, cfg.DeviceID, debouncer, logger).Subscribe(); err != nil {
			return err
		}
		s.mqttClient = client
		queue("mqtt", s.publisher)
	}

	if cfg.RedisEnabled {
		client := redis.NewClient(cfg, logger)
		if err := client.Ping(ctx); err != nil {
			client.Close()
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Connected to Redis", "address", cfg.RedisAddress())
		s.redisClient = client
		s.history = history.NewSink(history.NewStorage(client, cfg, logger), cfg.DeviceID)
		queue("redis", s.history)
	}

	if cfg.PostgresEnabled {
		client := postgres.NewClient(cfg, logger)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		s.pgClient = client

		j := journal.NewJournal(client.DB())
		if err := j.Migrate(ctx); err != nil {
			return err
		}
		anchors, err := j.LatestAnchors(ctx, cfg.DeviceID)
		if err != nil {
			return err
		}

		recorder := journal.NewRecorder(j, cfg.DeviceID, logger)
		recorder.Seed(anchors)
		logger.Info("Calibration journal ready", "anchors", len(anchors))

		s.journal = j
		queue("postgres", recorder)
	}

	return nil
}

func (s *sinkSet) all() []sensing.Sink {
	sinks := make([]sensing.Sink, 0, len(s.queues))
	for _, q := range s.queues {
		sinks = append(sinks, q)
	}
	return sinks
}

// dropped reports the discarded reports per queue
func (s *sinkSet) dropped() map[string]uint64 {
	out := make(map[string]uint64, len(s.queues))
	for _, q := range s.queues {
		out[q.Name()] = q.Dropped()
	}
	return out
}

// close drains the queues before the connections go away
func (s *sinkSet) close(logger *slog.Logger) {
	for _, q := range s.queues {
		q.Close()
	}

	if s.publisher != nil {
		s.publisher.Stop()
	}
	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			logger.Error("Error closing Redis", "error", err)
		}
	}
	if s.pgClient != nil {
		if err := s.pgClient.Disconnect(); err != nil {
			logger.Error("Error closing Postgres", "error", err)
		}
	}
}
