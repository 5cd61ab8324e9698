package color

import "fmt"

// Sample is one raw RGBC reading of the colour sensor
type Sample struct {
	R uint16 `json:"r"`
	G uint16 `json:"g"`
	B uint16 `json:"b"`
	C uint16 `json:"c"`
}

// RGB8 is a colour pushed to the LED matrix
type RGB8 struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c RGB8) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Scaled clamps each channel to 255 and scales it by brightness/255 with integer truncation
func (s Sample) Scaled(brightness uint8) RGB8 {
	scale := func(v uint16) uint8 {
		if v > 255 {
			v = 255
		}
		return uint8(uint32(v) * uint32(brightness) / 255)
	}

	return RGB8{R: scale(s.R), G: scale(s.G), B: scale(s.B)}
}
