package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/saaga0h/colorlux/pkg/mqtt"
)

// Presser accepts a button edge and reports whether it was acted on
type Presser interface {
	Press() bool
}

// RemoteButton turns messages on the button command topic into presses of the reference button
type RemoteButton struct {
	mqtt    mqtt.Client
	device  string
	presser Presser
	logger  *slog.Logger
}

// NewRemoteButton creates a remote button for device
func NewRemoteButton(mqttClient mqtt.Client, device string, presser Presser, logger *slog.Logger) *RemoteButton {
	return &RemoteButton{
		mqtt:    mqttClient,
		device:  device,
		presser: presser,
		logger:  logger,
	}
}

// Subscribe starts listening on colorlux/command/{device}/button
func (b *RemoteButton) Subscribe() error {
	topic := mqtt.CommandTopic(b.device, mqtt.CommandButton)
	if err := b.mqtt.Subscribe(topic, 1, b.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	b.logger.Info("Subscribed to remote button", "topic", topic)
	return nil
}

func (b *RemoteButton) handleMessage(msg mqtt.Message) {
	defer msg.Ack()

	if b.presser.Press() {
		b.logger.Info("Remote button press accepted", "topic", msg.Topic())
		return
	}
	b.logger.Debug("Remote button press debounced", "topic", msg.Topic())
}
