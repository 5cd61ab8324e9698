package periph

import (
	"encoding/binary"
	"fmt"

	"periph.io/x/conn/v3/i2c"

	"github.com/saaga0h/colorlux/internal/color"
)

// GY-33 (TCS34725) registers; every register access sets the command bit
const (
	GY33Address = 0x29

	tcsCommand    = 0x80
	tcsRegEnable  = 0x00
	tcsRegATime   = 0x01
	tcsRegControl = 0x0F
	tcsRegCData   = 0x14
	tcsRegRData   = 0x16
	tcsRegGData   = 0x18
	tcsRegBData   = 0x1A

	tcsPowerOnAEN = 0x03 // PON | AEN
	tcsATime      = 0xF5 // 11 cycles, ~26ms integration
	tcsGain1x     = 0x00
)

// GY33 reads raw RGBC channels from a GY-33 colour sensor module
type GY33 struct {
	dev *i2c.Dev
}

// NewGY33 powers the sensor up with a short integration time and 1x gain
func NewGY33(bus i2c.Bus) (*GY33, error) {
	d := &GY33{dev: &i2c.Dev{Bus: bus, Addr: GY33Address}}

	init := [][]byte{
		{tcsCommand | tcsRegEnable, tcsPowerOnAEN},
		{tcsCommand | tcsRegATime, tcsATime},
		{tcsCommand | tcsRegControl, tcsGain1x},
	}
	for _, w := range init {
		if _, err := d.dev.Write(w); err != nil {
			return nil, fmt.Errorf("failed to initialise GY-33: %w", err)
		}
	}

	return d, nil
}

// Read returns one RGBC sample
func (d *GY33) Read() (color.Sample, error) {
	var s color.Sample
	channels := []struct {
		reg byte
		dst *uint16
	}{
		{tcsRegCData, &s.C},
		{tcsRegRData, &s.R},
		{tcsRegGData, &s.G},
		{tcsRegBData, &s.B},
	}

	for _, ch := range channels {
		var buf [2]byte
		if err := d.dev.Tx([]byte{tcsCommand | ch.reg}, buf[:]); err != nil {
			return color.Sample{}, fmt.Errorf("failed to read GY-33 register 0x%02x: %w", tcsCommand|ch.reg, err)
		}
		*ch.dst = binary.LittleEndian.Uint16(buf[:])
	}

	return s, nil
}

// BH1750 commands
const (
	BH1750Address = 0x23

	bhPowerOn         = 0x01
	bhContinuousHRes  = 0x10
	bhCountsPerLuxX10 = 12 // 1.2 counts per lux
)

// BH1750 reads illuminance from a BH1750 ambient light sensor
type BH1750 struct {
	dev *i2c.Dev
}

// NewBH1750 powers the sensor on in continuous high-resolution mode
func NewBH1750(bus i2c.Bus) (*BH1750, error) {
	d := &BH1750{dev: &i2c.Dev{Bus: bus, Addr: BH1750Address}}

	for _, cmd := range []byte{bhPowerOn, bhContinuousHRes} {
		if _, err := d.dev.Write([]byte{cmd}); err != nil {
			return nil, fmt.Errorf("failed to initialise BH1750: %w", err)
		}
	}

	return d, nil
}

// Read returns the latest measurement in lux
func (d *BH1750) Read() (uint16, error) {
	var buf [2]byte
	if err := d.dev.Tx(nil, buf[:]); err != nil {
		return 0, fmt.Errorf("failed to read BH1750: %w", err)
	}

	raw := uint32(binary.BigEndian.Uint16(buf[:]))
	return uint16(raw * 10 / bhCountsPerLuxX10), nil
}
