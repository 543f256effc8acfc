package environment

import "time"

const (
	// DefaultNightStartHour and DefaultNightEndHour bound the elevated
	// darkness window (23:00 through 04:59).
	DefaultNightStartHour = 23
	DefaultNightEndHour   = 4

	// NightDarknessFactor multiplies the risk component during night hours.
	NightDarknessFactor = 1.5

	neutralFactor = 1.0
)

// WeatherFunc supplies an external weather factor for a point in time.
// Neutral (1.0) absent real input.
type WeatherFunc func(t time.Time) float64

// Context produces multiplicative penalty factors purely from wall-clock
// time and an optional weather feed. Safe for concurrent use: it holds no
// mutable state.
type Context struct {
	nightStartHour int
	nightEndHour   int
	weather        WeatherFunc
}

func NewContext(nightStartHour, nightEndHour int, weather WeatherFunc) *Context {
	return &Context{
		nightStartHour: nightStartHour,
		nightEndHour:   nightEndHour,
		weather:        weather,
	}
}

func NewDefaultContext() *Context {
	return NewContext(DefaultNightStartHour, DefaultNightEndHour, nil)
}

// Penalty returns (darkness_factor, weather_factor) for t. Darkness is a
// step function elevated during the configured night hours.
func (c *Context) Penalty(t time.Time) (float64, float64) {
	darkness := neutralFactor
	if c.isNight(t.Hour()) {
		darkness = NightDarknessFactor
	}

	weather := neutralFactor
	if c.weather != nil {
		weather = c.weather(t)
		if weather <= 0 {
			weather = neutralFactor
		}
	}
	return darkness, weather
}

func (c *Context) isNight(hour int) bool {
	if c.nightStartHour <= c.nightEndHour {
		return hour >= c.nightStartHour && hour <= c.nightEndHour
	}
	// window wraps midnight, e.g. 23..4
	return hour >= c.nightStartHour || hour <= c.nightEndHour
}
