package illuminance

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Daylight describes the sun at the device location
type Daylight struct {
	SunAltitude           float64 `json:"sun_altitude_deg"`
	TheoreticalOutdoorLux float64 `json:"theoretical_outdoor_lux"`
	IsDaytime             bool    `json:"is_daytime"`
	IsGoldenHour          bool    `json:"is_golden_hour"`
}

// DaylightAt estimates outdoor light from the sun altitude. Overhead sun is taken as ~120000 lux.
func DaylightAt(lat, lon float64, t time.Time) Daylight {
	position := suncalc.GetPosition(t, lat, lon)
	altitude := position.Altitude * (180.0 / math.Pi)

	d := Daylight{
		SunAltitude:  altitude,
		IsDaytime:    altitude > 0,
		IsGoldenHour: altitude > 0 && altitude < 6,
	}
	if d.IsDaytime {
		d.TheoreticalOutdoorLux = math.Max(0, 120000.0*math.Sin(position.Altitude))
	}

	return d
}
