package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/pkg/config"
	"github.com/saaga0h/colorlux/pkg/mqtt"
)

// Publisher sends cycle reports to MQTT: a throttled state snapshot plus one message per event
type Publisher struct {
	mqtt        mqtt.Client
	device      string
	bootID      uuid.UUID
	minInterval time.Duration
	limiter     *RateLimiter
	logger      *slog.Logger
}

// StateMessage is the snapshot published on the state topic
type StateMessage struct {
	Device     string       `json:"device"`
	BootID     string       `json:"boot_id"`
	Cycle      uint64       `json:"cycle"`
	Timestamp  string       `json:"timestamp"`
	Label      color.Label  `json:"label"`
	Sample     color.Sample `json:"sample"`
	Hex        string       `json:"hex"`
	Hue        float64      `json:"hue"`
	Saturation float64      `json:"saturation"`
	Lux        uint16       `json:"illuminance"`
	Brightness uint8        `json:"brightness"`
	Matrix     string       `json:"matrix"`
	Reference  string       `json:"reference"`
	LowLight   bool         `json:"low_light"`
}

// NewPublisher creates a publisher for the configured device
func NewPublisher(mqttClient mqtt.Client, cfg *config.Config, logger *slog.Logger) *Publisher {
	return &Publisher{
		mqtt:        mqttClient,
		device:      cfg.DeviceID,
		bootID:      uuid.New(),
		minInterval: config.Millis(cfg.TelemetryMinIntervalMs),
		limiter:     NewRateLimiter(),
		logger:      logger,
	}
}

// BootID identifies this run of the agent in every message
func (p *Publisher) BootID() uuid.UUID {
	return p.bootID
}

// Start connects to the broker and announces the device as online
func (p *Publisher) Start(ctx context.Context) error {
	if err := p.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	if err := p.mqtt.Publish(mqtt.AvailabilityTopic(p.device), 1, true, []byte(mqtt.PayloadOnline)); err != nil {
		return fmt.Errorf("failed to announce availability: %w", err)
	}

	p.logger.Info("Telemetry publisher started", "device", p.device, "boot_id", p.bootID)
	return nil
}

// Stop marks the device offline and disconnects
func (p *Publisher) Stop() {
	if p.mqtt.IsConnected() {
		if err := p.mqtt.Publish(mqtt.AvailabilityTopic(p.device), 1, true, []byte(mqtt.PayloadOffline)); err != nil {
			p.logger.Warn("Failed to announce offline status", "error", err)
		}
	}
	p.mqtt.Disconnect()
}

// Publish implements sensing.Sink
func (p *Publisher) Publish(_ context.Context, report sensing.Report) error {
	stateTopic := mqtt.StateTopic(p.device)
	hasEvent := report.ToneHz > 0 || report.Alert || report.ReferenceChanged

	// Events force a fresh snapshot so consumers never see an event ahead of the state
	send := hasEvent
	if hasEvent {
		p.limiter.Record(stateTopic)
	} else {
		send = p.limiter.Allow(stateTopic, p.minInterval)
	}

	if send {
		if err := p.publishJSON(stateTopic, false, p.stateMessage(report)); err != nil {
			return err
		}
	}

	timestamp := report.Timestamp.UTC().Format(time.RFC3339Nano)

	if report.ToneHz > 0 {
		msg := map[string]interface{}{
			"device":    p.device,
			"label":     report.Label,
			"name":      report.Label.DisplayName(),
			"tone_hz":   report.ToneHz,
			"timestamp": timestamp,
		}
		if err := p.publishJSON(mqtt.EventTopic(p.device, mqtt.EventColor), false, msg); err != nil {
			return err
		}
	}

	if report.Alert {
		msg := map[string]interface{}{
			"device":      p.device,
			"illuminance": report.Lux,
			"state":       "low_light",
			"timestamp":   timestamp,
		}
		if err := p.publishJSON(mqtt.EventTopic(p.device, mqtt.EventAlert), false, msg); err != nil {
			return err
		}
	}

	if report.ReferenceChanged {
		levels := report.Reference.Levels()
		msg := map[string]interface{}{
			"device":    p.device,
			"reference": report.Reference,
			"levels":    levels,
			"timestamp": timestamp,
		}
		if err := p.publishJSON(mqtt.EventTopic(p.device, mqtt.EventReference), true, msg); err != nil {
			return err
		}
	}

	return nil
}

func (p *Publisher) stateMessage(report sensing.Report) StateMessage {
	sensed := sampleColor(report.Sample)
	hue, _, _ := sensed.Hsv()

	return StateMessage{
		Device:     p.device,
		BootID:     p.bootID.String(),
		Cycle:      report.Cycle,
		Timestamp:  report.Timestamp.UTC().Format(time.RFC3339Nano),
		Label:      report.Label,
		Sample:     report.Sample,
		Hex:        sensed.Hex(),
		Hue:        hue,
		Saturation: report.Saturation,
		Lux:        report.Lux,
		Brightness: report.Brightness,
		Matrix:     report.Matrix.String(),
		Reference:  report.Reference.String(),
		LowLight:   report.LowLight,
	}
}

func (p *Publisher) publishJSON(topic string, retained bool, msg interface{}) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message for %s: %w", topic, err)
	}

	if err := p.mqtt.Publish(topic, 0, retained, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	p.logger.Debug("Published telemetry", "topic", topic, "size", len(payload))
	return nil
}

// sampleColor normalises the raw channels against the strongest one
func sampleColor(s color.Sample) colorful.Color {
	maxv := max(s.R, s.G, s.B)
	if maxv == 0 {
		return colorful.Color{}
	}
	m := float64(maxv)
	return colorful.Color{R: float64(s.R) / m, G: float64(s.G) / m, B: float64(s.B) / m}
}
