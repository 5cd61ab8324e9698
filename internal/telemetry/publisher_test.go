package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/reference"
	"github.com/saaga0h/colorlux/internal/sensing"
	"github.com/saaga0h/colorlux/pkg/config"
	"github.com/saaga0h/colorlux/pkg/mqtt"
)

type published struct {
	topic    string
	retained bool
	payload  []byte
}

type fakeMQTT struct {
	mu        sync.Mutex
	connected bool
	messages  []published
	handlers  map[string]mqtt.MessageHandler
}

func newFakeMQTT() *fakeMQTT {
	return &fakeMQTT{handlers: make(map[string]mqtt.MessageHandler)}
}

func (f *fakeMQTT) Connect(context.Context) error {
	f.connected = true
	return nil
}

func (f *fakeMQTT) Disconnect() { f.connected = false }

func (f *fakeMQTT) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.handlers[topic] = handler
	return nil
}

func (f *fakeMQTT) Publish(topic string, _ byte, retained bool, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, published{topic: topic, retained: retained, payload: payload})
	return nil
}

func (f *fakeMQTT) IsConnected() bool { return f.connected }

func (f *fakeMQTT) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.messages {
		out = append(out, m.topic)
	}
	return out
}

func (f *fakeMQTT) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = nil
}

type fakeMessage struct {
	topic string
	acked bool
}

func (m *fakeMessage) Topic() string   { return m.topic }
func (m *fakeMessage) Payload() []byte { return nil }
func (m *fakeMessage) Ack()            { m.acked = true }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPublisher(t *testing.T) (*Publisher, *fakeMQTT, *time.Time) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.DeviceID = "bench"
	cfg.TelemetryMinIntervalMs = 1000

	client := newFakeMQTT()
	p := NewPublisher(client, cfg, testLogger())

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	p.limiter.now = func() time.Time { return now }
	return p, client, &now
}

func TestPublisher_StartAnnouncesOnline(t *testing.T) {
	p, client, _ := newTestPublisher(t)

	require.NoError(t, p.Start(context.Background()))
	require.Len(t, client.messages, 1)
	assert.Equal(t, "colorlux/status/bench", client.messages[0].topic)
	assert.True(t, client.messages[0].retained)
	assert.Equal(t, "online", string(client.messages[0].payload))

	p.Stop()
	assert.Equal(t, "offline", string(client.messages[1].payload))
	assert.False(t, client.connected)
}

func TestPublisher_ThrottlesState(t *testing.T) {
	p, client, now := newTestPublisher(t)
	ctx := context.Background()
	report := sensing.Report{Cycle: 1, Label: color.Dark, Lux: 300}

	require.NoError(t, p.Publish(ctx, report))
	require.NoError(t, p.Publish(ctx, report))
	*now = now.Add(500 * time.Millisecond)
	require.NoError(t, p.Publish(ctx, report))
	assert.Equal(t, []string{"colorlux/sensor/bench/state"}, client.topics())

	*now = now.Add(500 * time.Millisecond)
	require.NoError(t, p.Publish(ctx, report))
	assert.Len(t, client.topics(), 2)
}

func TestPublisher_EventsBypassThrottle(t *testing.T) {
	p, client, _ := newTestPublisher(t)
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, sensing.Report{Cycle: 1}))
	client.reset()

	report := sensing.Report{
		Cycle:            2,
		Timestamp:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		Sample:           color.Sample{R: 200, G: 190, B: 50},
		Label:            color.Yellow,
		ToneHz:           294,
		Lux:              40,
		Alert:            true,
		Reference:        reference.Cyan,
		ReferenceChanged: true,
	}
	require.NoError(t, p.Publish(ctx, report))

	assert.Equal(t, []string{
		"colorlux/sensor/bench/state",
		"colorlux/event/bench/color",
		"colorlux/event/bench/alert",
		"colorlux/event/bench/reference",
	}, client.topics())

	var state StateMessage
	require.NoError(t, json.Unmarshal(client.messages[0].payload, &state))
	assert.Equal(t, color.Yellow, state.Label)
	assert.Equal(t, "#fff240", state.Hex)
	assert.Equal(t, "cyan", state.Reference)
	assert.Equal(t, p.BootID().String(), state.BootID)

	var colorEvent map[string]interface{}
	require.NoError(t, json.Unmarshal(client.messages[1].payload, &colorEvent))
	assert.Equal(t, "yellow", colorEvent["label"])
	assert.Equal(t, "Amarelo", colorEvent["name"])
	assert.Equal(t, float64(294), colorEvent["tone_hz"])

	assert.True(t, client.messages[3].retained, "reference event is retained")
}

func TestSampleColor(t *testing.T) {
	assert.Equal(t, "#000000", sampleColor(color.Sample{}).Hex())
	assert.Equal(t, "#ff0000", sampleColor(color.Sample{R: 4000}).Hex())
	assert.Equal(t, "#ffffff", sampleColor(color.Sample{R: 900, G: 900, B: 900}).Hex())
}

type countingPresser struct {
	presses int
	accept  bool
}

func (c *countingPresser) Press() bool {
	c.presses++
	return c.accept
}

func TestRemoteButton(t *testing.T) {
	client := newFakeMQTT()
	presser := &countingPresser{accept: true}
	button := NewRemoteButton(client, "bench", presser, testLogger())

	require.NoError(t, button.Subscribe())
	handler, ok := client.handlers["colorlux/command/bench/button"]
	require.True(t, ok)

	msg := &fakeMessage{topic: "colorlux/command/bench/button"}
	handler(msg)
	presser.accept = false
	handler(msg)

	assert.Equal(t, 2, presser.presses)
	assert.True(t, msg.acked)
}
