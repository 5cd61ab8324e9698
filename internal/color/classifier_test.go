package color

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		r, g, b  uint16
		expected Label
	}{
		{"all zero", 0, 0, 0, Dark},
		{"just below dark total", 99, 0, 0, Dark},
		{"spread below dark total", 50, 25, 24, Dark},
		{"at dark total", 100, 0, 0, Red},
		{"full white", 255, 255, 255, White},
		{"min above 60 percent of max", 120, 100, 100, White},
		{"red and green", 255, 255, 0, Yellow},
		{"warm yellow", 200, 190, 50, Yellow},
		{"red and blue", 200, 50, 190, Magenta},
		{"green and blue", 50, 200, 190, Cyan},
		{"pure red", 255, 0, 0, Red},
		{"red with margin", 200, 150, 100, Red},
		{"pure green", 0, 255, 0, Green},
		{"pure blue", 0, 0, 255, Blue},
		{"no rule matches", 100, 100, 50, Undefined},
		{"saturated sensor", 65535, 65535, 65535, White},
		{"saturated red", 65535, 0, 0, Red},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.r, tt.g, tt.b),
				"Classify(%d, %d, %d)", tt.r, tt.g, tt.b)
		})
	}
}

func TestClassify_DarkBelowTotal(t *testing.T) {
	for r := uint16(0); r < 100; r += 7 {
		for g := uint16(0); r+g < 100; g += 5 {
			b := 99 - r - g
			assert.Equal(t, Dark, Classify(r, g, b), "Classify(%d, %d, %d)", r, g, b)
		}
	}
}

func TestClassify_PairRulesTakePrecedence(t *testing.T) {
	// 255,210,0 also satisfies the red dominance margin on blue but not on green
	assert.Equal(t, Yellow, Classify(255, 210, 0))
	// Red dominance is only reached once green drops below 0.8 of red
	assert.Equal(t, Red, Classify(255, 200, 0))
}

func TestLabelByShare(t *testing.T) {
	tests := []struct {
		r, g, b  float32
		expected Label
	}{
		{0.46, 0.31, 0.23, Yellow},
		{0.46, 0.30, 0.24, Undefined}, // green share must be strictly above 0.3
		{0.46, 0.31, 0.25, Undefined}, // blue share must be strictly below 0.25
		{0.29, 0.46, 0.25, Green},
		{0.30, 0.46, 0.24, Undefined},
		{0.25, 0.29, 0.46, Blue},
		{0.24, 0.30, 0.46, Undefined},
		{0.34, 0.33, 0.33, Undefined},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f_%.2f_%.2f", tt.r, tt.g, tt.b), func(t *testing.T) {
			assert.Equal(t, tt.expected, labelByShare(tt.r, tt.g, tt.b))
		})
	}
}

func TestSaturation(t *testing.T) {
	tests := []struct {
		r, g, b  uint16
		expected float64
	}{
		{0, 0, 0, 0},
		{255, 0, 0, 100},
		{200, 190, 50, 75},
		{100, 50, 100, 50},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_%d_%d", tt.r, tt.g, tt.b), func(t *testing.T) {
			assert.InDelta(t, tt.expected, Saturation(tt.r, tt.g, tt.b), 1e-4)
		})
	}
}

func TestSaturation_Bounds(t *testing.T) {
	values := []uint16{0, 1, 99, 100, 255, 256, 1000, 32768, 65534, 65535}

	for _, r := range values {
		for _, g := range values {
			for _, b := range values {
				s := Saturation(r, g, b)
				assert.GreaterOrEqual(t, s, 0.0)
				assert.LessOrEqual(t, s, 100.0)
			}
		}
		assert.Zero(t, Saturation(r, r, r), "grey %d", r)
	}
}

func TestSample_Scaled(t *testing.T) {
	tests := []struct {
		name       string
		sample     Sample
		brightness uint8
		expected   RGB8
	}{
		{"full brightness passes through", Sample{R: 200, G: 190, B: 50}, 255, RGB8{200, 190, 50}},
		{"channels clamp at 255", Sample{R: 1000, G: 256, B: 255}, 255, RGB8{255, 255, 255}},
		{"minimum brightness truncates", Sample{R: 255, G: 128, B: 25}, 10, RGB8{10, 5, 0}},
		{"half brightness", Sample{R: 255, G: 100, B: 0}, 128, RGB8{128, 50, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.sample.Scaled(tt.brightness))
		})
	}
}
