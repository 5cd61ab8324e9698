package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/saaga0h/colorlux/pkg/mqtt"
)

// CapturedMessage is one colorlux message seen by the monitor
type CapturedMessage struct {
	Timestamp time.Time   `json:"timestamp"`
	Topic     string      `json:"topic"`
	Kind      string      `json:"kind"`
	Device    string      `json:"device"`
	Name      string      `json:"name,omitempty"`
	Payload   interface{} `json:"payload"`
}

// Monitor records the telemetry of one device, or of every device when the filter is empty
type Monitor struct {
	mqtt   mqtt.Client
	device string
	logger *slog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	start    time.Time
	messages []CapturedMessage
}

// NewMonitor creates a monitor for device ("" watches every device)
func NewMonitor(mqttClient mqtt.Client, device string, logger *slog.Logger) *Monitor {
	return &Monitor{
		mqtt:   mqttClient,
		device: device,
		logger: logger,
		now:    time.Now,
	}
}

// Start connects and subscribes to every colorlux topic
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	m.start = m.now()
	m.mu.Unlock()

	if err := m.mqtt.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to MQTT: %w", err)
	}
	if err := m.mqtt.Subscribe(mqtt.AllTopics, 0, m.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", mqtt.AllTopics, err)
	}

	m.logger.Info("Monitoring telemetry", "topic", mqtt.AllTopics, "device", m.device)
	return nil
}

// Stop disconnects from the broker
func (m *Monitor) Stop() {
	m.mqtt.Disconnect()
}

func (m *Monitor) handleMessage(msg mqtt.Message) {
	kind, device, name, ok := mqtt.ParseTopic(msg.Topic())
	if !ok || (m.device != "" && device != m.device) {
		return
	}

	var payload interface{}
	if err := json.Unmarshal(msg.Payload(), &payload); err != nil {
		payload = string(msg.Payload())
	}

	captured := CapturedMessage{
		Timestamp: m.now(),
		Topic:     msg.Topic(),
		Kind:      kind,
		Device:    device,
		Name:      name,
		Payload:   payload,
	}

	m.mu.Lock()
	m.messages = append(m.messages, captured)
	m.mu.Unlock()

	m.logger.Info("Telemetry", "device", device, "kind", kind, "name", name, "summary", Describe(captured))
}

// Messages returns a copy of everything captured so far
func (m *Monitor) Messages() []CapturedMessage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]CapturedMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

// Timeline renders the captured messages one per line with the time since Start
func (m *Monitor) Timeline() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sb strings.Builder
	for _, msg := range m.messages {
		fmt.Fprintf(&sb, "[%7.2fs] %-8s %-10s %s\n",
			msg.Timestamp.Sub(m.start).Seconds(),
			msg.Device,
			topicLabel(msg),
			Describe(msg))
	}
	return sb.String()
}

// SaveCapture writes the captured messages to a JSON file, creating its directory
func (m *Monitor) SaveCapture(filename string) error {
	m.mu.RLock()
	data, err := json.MarshalIndent(m.messages, "", "  ")
	m.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal messages: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("failed to create capture directory: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to save capture: %w", err)
	}
	return nil
}

func topicLabel(msg CapturedMessage) string {
	if msg.Name == "" {
		return msg.Kind
	}
	return msg.Kind + "/" + msg.Name
}

// Describe summarises a captured message in one line
func Describe(msg CapturedMessage) string {
	fields, ok := msg.Payload.(map[string]interface{})
	if !ok {
		return fmt.Sprint(msg.Payload)
	}

	switch {
	case msg.Kind == "sensor" && msg.Name == "state":
		return fmt.Sprintf("%v %v lux=%v brightness=%v%% reference=%v",
			fields["label"], fields["hex"], fields["illuminance"], fields["brightness"], fields["reference"])
	case msg.Kind == "event" && msg.Name == mqtt.EventColor:
		return fmt.Sprintf("colour %v (%v) tone %v Hz", fields["label"], fields["name"], fields["tone_hz"])
	case msg.Kind == "event" && msg.Name == mqtt.EventAlert:
		return fmt.Sprintf("low light at %v lux", fields["illuminance"])
	case msg.Kind == "event" && msg.Name == mqtt.EventReference:
		return fmt.Sprintf("reference %v", fields["reference"])
	default:
		data, _ := json.Marshal(fields)
		return string(data)
	}
}
