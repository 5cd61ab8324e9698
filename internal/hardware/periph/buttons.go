package periph

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// edgePoll bounds how long a watcher blocks before rechecking its context
const edgePoll = 100 * time.Millisecond

// Presser receives accepted button edges
type Presser interface {
	Press() bool
}

// edgePin is the part of gpio.PinIO used for button inputs
type edgePin interface {
	In(pull gpio.Pull, edge gpio.Edge) error
	WaitForEdge(timeout time.Duration) bool
	String() string
}

// Button forwards falling edges of an active-low push button to a Presser
type Button struct {
	pin     edgePin
	presser Presser
	logger  *slog.Logger
}

// NewButton configures pin as a pulled-up input that reports falling edges
func NewButton(pin edgePin, presser Presser, logger *slog.Logger) (*Button, error) {
	if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		return nil, fmt.Errorf("failed to configure button %s: %w", pin, err)
	}
	return &Button{pin: pin, presser: presser, logger: logger}, nil
}

// Watch delivers edges until ctx is cancelled
func (b *Button) Watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if !b.pin.WaitForEdge(edgePoll) {
			continue
		}
		accepted := b.presser.Press()
		b.logger.Debug("Button edge", "pin", b.pin.String(), "accepted", accepted)
	}
}
