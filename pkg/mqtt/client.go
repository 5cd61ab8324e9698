package mqtt

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/saaga0h/colorlux/pkg/config"
)

// disconnectGrace is how long Disconnect lets in-flight work finish, in milliseconds
const disconnectGrace = 250

type subscription struct {
	qos     byte
	handler MessageHandler
}

// mqttClient implements Client on the Paho MQTT client
type mqttClient struct {
	client pahomqtt.Client
	cfg    *config.Config
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]subscription
}

// NewClient creates a new MQTT client for the configured device. Its last will marks the
// device offline.
func NewClient(cfg *config.Config, logger *slog.Logger) Client {
	return newClient(cfg, logger, true)
}

// NewListener creates a client that does not speak for the device, for tools that only watch
func NewListener(cfg *config.Config, logger *slog.Logger) Client {
	return newClient(cfg, logger, false)
}

func newClient(cfg *config.Config, logger *slog.Logger, device bool) Client {
	m := &mqttClient{
		cfg:    cfg,
		logger: logger,
		subs:   make(map[string]subscription),
	}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTAddress())

	clientID := cfg.MQTTClientID
	if clientID == "" {
		clientID = fmt.Sprintf("%s-%d", cfg.DeviceID, time.Now().Unix())
	}
	opts.SetClientID(clientID)
	opts.SetUsername(cfg.MQTTUser)
	opts.SetPassword(cfg.MQTTPassword)

	// Clean sessions drop subscriptions, so they are replayed from OnConnect
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)

	if device {
		opts.SetWill(AvailabilityTopic(cfg.DeviceID), PayloadOffline, 1, true)
	}

	opts.OnConnect = func(c pahomqtt.Client) {
		logger.Info("Connected to MQTT broker", "broker", cfg.MQTTAddress())
		m.resubscribe()
	}
	opts.OnConnectionLost = func(c pahomqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	}
	opts.OnReconnecting = func(c pahomqtt.Client, opts *pahomqtt.ClientOptions) {
		logger.Info("Reconnecting to MQTT broker", "broker", cfg.MQTTAddress())
	}

	m.client = pahomqtt.NewClient(opts)
	return m
}

// Connect establishes a connection to the MQTT broker
func (m *mqttClient) Connect(ctx context.Context) error {
	m.logger.Info("Connecting to MQTT broker", "broker", m.cfg.MQTTAddress())

	token := m.client.Connect()

	select {
	case <-token.Done():
		if token.Error() != nil {
			return fmt.Errorf("connect %s: %w", m.cfg.MQTTAddress(), token.Error())
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("connect %s: %w", m.cfg.MQTTAddress(), ctx.Err())
	}
}

// Disconnect closes the connection to the MQTT broker
func (m *mqttClient) Disconnect() {
	m.logger.Info("Disconnecting from MQTT broker", "broker", m.cfg.MQTTAddress())
	m.client.Disconnect(disconnectGrace)
}

// Subscribe subscribes to a topic and remembers it for reconnects
func (m *mqttClient) Subscribe(topic string, qos byte, handler MessageHandler) error {
	m.mu.Lock()
	m.subs[topic] = subscription{qos: qos, handler: handler}
	m.mu.Unlock()

	if err := m.subscribe(topic, qos, handler); err != nil {
		return err
	}

	m.logger.Info("Subscribed", "topic", topic, "qos", qos)
	return nil
}

func (m *mqttClient) subscribe(topic string, qos byte, handler MessageHandler) error {
	token := m.client.Subscribe(topic, qos, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		handler(&mqttMessage{msg: msg})
	})
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", topic, token.Error())
	}
	return nil
}

func (m *mqttClient) resubscribe() {
	m.mu.Lock()
	subs := make(map[string]subscription, len(m.subs))
	for topic, s := range m.subs {
		subs[topic] = s
	}
	m.mu.Unlock()

	for topic, s := range subs {
		// Runs on paho's callback goroutine; waiting here would stall the client
		go func(topic string, s subscription) {
			if err := m.subscribe(topic, s.qos, s.handler); err != nil {
				m.logger.Warn("Failed to restore subscription", "topic", topic, "error", err)
			}
		}(topic, s)
	}
}

// Publish publishes a message to a topic
func (m *mqttClient) Publish(topic string, qos byte, retained bool, payload []byte) error {
	token := m.client.Publish(topic, qos, retained, payload)
	token.Wait()

	if token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}

	m.logger.Debug("Published", "topic", topic, "bytes", len(payload))
	return nil
}

// IsConnected returns whether the client is currently connected
func (m *mqttClient) IsConnected() bool {
	return m.client.IsConnected()
}

// mqttMessage wraps a Paho message
type mqttMessage struct {
	msg pahomqtt.Message
}

func (m *mqttMessage) Topic() string   { return m.msg.Topic() }
func (m *mqttMessage) Payload() []byte { return m.msg.Payload() }
func (m *mqttMessage) Ack()            { m.msg.Ack() }
