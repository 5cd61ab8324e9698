package color

// DefaultToneHz is played for labels without their own note (G3)
const DefaultToneHz uint16 = 196

// FrequencyFor maps a label to the note played when it is first detected
func FrequencyFor(label Label) uint16 {
	toneMap := map[Label]uint16{
		Red:     262, // C4
		Yellow:  294, // D4
		Green:   330, // E4
		Magenta: 349, // F4
		Blue:    392, // G4
		Cyan:    440, // A4
		White:   523, // C5
	}

	if hz, exists := toneMap[label]; exists {
		return hz
	}

	return DefaultToneHz
}
