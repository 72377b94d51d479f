package sensehat

import (
	"fmt"
	"math"
)

// Angle is an angle stored in radians.
type Angle float64

// AngleFromDegrees builds an Angle from degrees.
func AngleFromDegrees(deg float64) Angle { return Angle(deg * math.Pi / 180.0) }

// AngleFromRadians builds an Angle from radians.
func AngleFromRadians(rad float64) Angle { return Angle(rad) }

// Radians returns the angle in radians.
func (a Angle) Radians() float64 { return float64(a) }

// Degrees returns the angle in degrees.
func (a Angle) Degrees() float64 { return float64(a) * 180.0 / math.Pi }

func (a Angle) String() string { return fmt.Sprintf("%.1f°", a.Degrees()) }

// Temperature is a temperature stored in degrees Celsius.
type Temperature float64

// Celsius returns the temperature in degrees Celsius.
func (t Temperature) Celsius() float64 { return float64(t) }

// Fahrenheit returns the temperature in degrees Fahrenheit.
func (t Temperature) Fahrenheit() float64 { return float64(t)*9.0/5.0 + 32.0 }

func (t Temperature) String() string { return fmt.Sprintf("%.1f°C", t.Celsius()) }

// Pressure is a pressure stored in hectopascals.
type Pressure float64

// Hectopascals returns the pressure in hPa.
func (p Pressure) Hectopascals() float64 { return float64(p) }

// Millibars returns the pressure in mbar (same magnitude as hPa).
func (p Pressure) Millibars() float64 { return float64(p) }

// Pascals returns the pressure in Pa.
func (p Pressure) Pascals() float64 { return float64(p) * 100.0 }

func (p Pressure) String() string { return fmt.Sprintf("%.1f hPa", p.Hectopascals()) }

// RelativeHumidity is a relative humidity reading in percent.
type RelativeHumidity float64

// Percent returns the relative humidity as a 0-100 percentage.
func (h RelativeHumidity) Percent() float64 { return float64(h) }

func (h RelativeHumidity) String() string { return fmt.Sprintf("%.1f%%", h.Percent()) }
