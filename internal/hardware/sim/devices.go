package sim

import (
	"github.com/saaga0h/colorlux/internal/color"
	"github.com/saaga0h/colorlux/internal/sensing"
)

// ColorSensor reads the simulated RGBC channels
type ColorSensor struct{ env *Environment }

func (s ColorSensor) Read() (color.Sample, error) { return s.env.ReadColor() }

// LightSensor reads the simulated illuminance
type LightSensor struct{ env *Environment }

func (s LightSensor) Read() (uint16, error) { return s.env.ReadLux() }

// Indicator feeds the reference LED levels back into the environment and the panel
type Indicator struct {
	env   *Environment
	panel *Panel
}

func (i Indicator) SetLevels(r, g, b uint16) error {
	i.panel.setLevels(r, g, b)
	return i.env.SetLevels(r, g, b)
}

// NewHardware wires the simulated collaborators of one board
func NewHardware(env *Environment, panel *Panel) sensing.Hardware {
	return sensing.Hardware{
		ColorSensor: ColorSensor{env: env},
		LightSensor: LightSensor{env: env},
		Display:     panel.Display(),
		Indicator:   Indicator{env: env, panel: panel},
		Matrix:      panel.Matrix(),
		ColorBuzzer: panel.Buzzer(0),
		AlertBuzzer: panel.Buzzer(1),
	}
}
