package mqtt

import "context"

// Client is the broker connection used by the telemetry publisher, the remote button and
// the monitor
type Client interface {
	// Connect blocks until the broker accepts the connection or ctx ends
	Connect(ctx context.Context) error

	// Disconnect closes the connection after a short grace period
	Disconnect()

	// Subscribe registers handler for topic (wildcards allowed). Subscriptions are restored
	// after a reconnect.
	Subscribe(topic string, qos byte, handler MessageHandler) error

	// Publish sends payload and waits for the broker to acknowledge it
	Publish(topic string, qos byte, retained bool, payload []byte) error

	// IsConnected reports whether the connection is currently up
	IsConnected() bool
}

// MessageHandler receives messages of a subscription
type MessageHandler func(Message)

// Message is one received MQTT message
type Message interface {
	Topic() string
	Payload() []byte

	// Ack acknowledges a QoS 1/2 message
	Ack()
}
