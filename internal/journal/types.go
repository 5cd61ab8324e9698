package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/reference"
)

// Event kinds
const (
	KindColor = "color"
	KindAlert = "alert"
)

// Anchor is the sample observed right after a reference state settled on the indicator
type Anchor struct {
	ID        uuid.UUID       `json:"id"`
	Device    string          `json:"device"`
	Reference reference.State `json:"reference"`
	Sample    color.Sample    `json:"sample"`
	Lux       uint16          `json:"lux"`
	Embedding pgvector.Vector `json:"embedding"` // 3-dimensional, unit length
	CreatedAt time.Time       `json:"created_at"`
}

// Event is a colour cue or low-light alert emitted by the loop
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Device    string          `json:"device"`
	Kind      string          `json:"kind"`
	Label     color.Label     `json:"label"`
	ToneHz    uint16          `json:"tone_hz"`
	Lux       uint16          `json:"lux"`
	Sample    color.Sample    `json:"sample"`
	Reference reference.State `json:"reference"`
	CreatedAt time.Time       `json:"created_at"`
}

// Match is the reference whose anchor lies closest to a sample
type Match struct {
	Reference reference.State `json:"reference"`
	AnchorID  uuid.UUID       `json:"anchor_id"`
	Distance  float64         `json:"distance"`
}
