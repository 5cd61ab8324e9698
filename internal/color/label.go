package color

import "fmt"

// Label is the discrete colour classification of a sample
type Label uint8

const (
	Undefined Label = iota
	Dark
	White
	Yellow
	Magenta
	Cyan
	Red
	Green
	Blue
)

var labelNames = map[Label]string{
	Undefined: "undefined",
	Dark:      "dark",
	White:     "white",
	Yellow:    "yellow",
	Magenta:   "magenta",
	Cyan:      "cyan",
	Red:       "red",
	Green:     "green",
	Blue:      "blue",
}

// Names shown on the status display
var displayNames = map[Label]string{
	Undefined: "Indefinido",
	Dark:      "Escuro",
	White:     "Branco",
	Yellow:    "Amarelo",
	Magenta:   "Magenta",
	Cyan:      "Ciano",
	Red:       "Vermelho",
	Green:     "Verde",
	Blue:      "Azul",
}

// String returns the machine-friendly name used in logs and telemetry
func (l Label) String() string {
	if name, ok := labelNames[l]; ok {
		return name
	}
	return labelNames[Undefined]
}

// DisplayName returns the name rendered on the device display
func (l Label) DisplayName() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return displayNames[Undefined]
}

// Audible reports whether a change to this label deserves a colour cue
func (l Label) Audible() bool {
	return l != Dark && l != Undefined
}

// ParseLabel is the inverse of Label.String
func ParseLabel(name string) (Label, bool) {
	for l, n := range labelNames {
		if n == name {
			return l, true
		}
	}
	return Undefined, false
}

// MarshalText encodes the label by its String name
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText decodes a label name; unknown names are an error
func (l *Label) UnmarshalText(text []byte) error {
	parsed, ok := ParseLabel(string(text))
	if !ok {
		return fmt.Errorf("unknown colour label %q", text)
	}
	*l = parsed
	return nil
}
