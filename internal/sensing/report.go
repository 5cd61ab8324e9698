package sensing

import (
	"time"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/reference"
)

// Report describes one completed cycle of the loop
type Report struct {
	Cycle     uint64    `json:"cycle"`
	Timestamp time.Time `json:"timestamp"`

	Sample     color.Sample `json:"sample"`
	Lux        uint16       `json:"lux"`
	Label      color.Label  `json:"label"`
	Saturation float64      `json:"saturation"`
	Brightness uint8        `json:"brightness"`
	Matrix     color.RGB8   `json:"matrix"`

	Reference        reference.State `json:"reference"`
	ReferenceChanged bool            `json:"reference_changed"`

	// ToneHz is the colour cue played this cycle, 0 when none
	ToneHz   uint16 `json:"tone_hz,omitempty"`
	Alert    bool   `json:"alert"`
	LowLight bool   `json:"low_light"`
}
