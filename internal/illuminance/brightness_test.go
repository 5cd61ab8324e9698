package illuminance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrightness(t *testing.T) {
	tests := []struct {
		lux      uint16
		expected uint8
	}{
		{0, 10},
		{9, 10},
		{10, 12},
		{50, 22},
		{500, 132},
		{999, 254},
		{1000, 255},
		{1001, 255},
		{65535, 255},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Brightness(tt.lux), "Brightness(%d)", tt.lux)
	}
}

func TestBrightness_Monotonic(t *testing.T) {
	prev := Brightness(0)
	for lux := 1; lux <= 65535; lux++ {
		b := Brightness(uint16(lux))
		if b < prev {
			t.Fatalf("Brightness(%d) = %d is below Brightness(%d) = %d", lux, b, lux-1, prev)
		}
		if b < 10 {
			t.Fatalf("Brightness(%d) = %d is below the floor", lux, b)
		}
		prev = b
	}
}

func TestLowLightLatch(t *testing.T) {
	latch := NewLowLightLatch(DefaultLowLightThreshold)

	var fired []bool
	for _, lux := range []uint16{100, 40, 40, 60} {
		fired = append(fired, latch.Update(lux))
	}

	assert.Equal(t, []bool{false, true, false, false}, fired)
	assert.False(t, latch.Active())
}

func TestLowLightLatch_Rearms(t *testing.T) {
	latch := NewLowLightLatch(50)

	assert.True(t, latch.Update(49))
	assert.True(t, latch.Active())
	assert.False(t, latch.Update(0))
	assert.False(t, latch.Update(50), "threshold itself is not low")
	assert.True(t, latch.Update(10))
	assert.True(t, latch.IsLow(49))
	assert.False(t, latch.IsLow(50))
}
