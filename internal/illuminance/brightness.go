package illuminance

const (
	minBrightness = 10
	maxBrightness = 255

	brightnessFloorLux   = 10
	brightnessCeilingLux = 1000
)

// Brightness maps ambient lux onto the LED matrix intensity in [10,255].
// The middle segment is 10 + floor(lux*245/1000), so 999 lux gives 254 and only 1000 reaches 255.
func Brightness(lux uint16) uint8 {
	if lux < brightnessFloorLux {
		return minBrightness
	}
	if lux > brightnessCeilingLux {
		return maxBrightness
	}

	span := uint32(maxBrightness - minBrightness)
	return minBrightness + uint8(uint32(lux)*span/brightnessCeilingLux)
}
