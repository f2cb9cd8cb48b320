// Package greenlife holds the plant node's shared value types and the
// plant-health classifier.
package greenlife

import (
	"fmt"
	"time"
)

// Reading is a single temperature/humidity sample.
type Reading struct {
	Temp     float64 `json:"temp"`     // degrees C
	Humidity float64 `json:"humidity"` // percent
}

// Comfort band limits, inclusive on both ends.
const (
	TempLow   = 20.0
	TempHigh  = 40.0
	HumidLow  = 20.0
	HumidHigh = 80.0
)

// TempOK reports whether the temperature is inside the comfort band.
func (r Reading) TempOK() bool {
	return r.Temp >= TempLow && r.Temp <= TempHigh
}

// HumidOK reports whether the humidity is inside the comfort band.
func (r Reading) HumidOK() bool {
	return r.Humidity >= HumidLow && r.Humidity <= HumidHigh
}

// Critical is true when both temperature and humidity are out of band.
func (r Reading) Critical() bool {
	return !r.TempOK() && !r.HumidOK()
}

func (r Reading) String() string {
	return fmt.Sprintf("%.1fC %.1f%%", r.Temp, r.Humidity)
}

// Mode selects where the temperature comes from.
type Mode uint8

// Enum of sensor modes
const (
	ModeAuto   Mode = iota // internal temperature sensor
	ModeManual             // joystick channel
)

func (m Mode) String() string {
	if m == ModeManual {
		return "Manual"
	}
	return "Auto"
}

// Label is the long form used on the status page.
func (m Mode) Label() string {
	if m == ModeManual {
		return "Manual"
	}
	return "Automatic"
}

// DisplayFocus selects a single quantity for the display. At most one field is set.
type DisplayFocus struct {
	ShowTemperature bool `json:"temperature"`
	ShowHumidity    bool `json:"humidity"`
}

// None is true when the display shows everything.
func (f DisplayFocus) None() bool {
	return !f.ShowTemperature && !f.ShowHumidity
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Status is one complete view of the node: what the loop last computed, or
// what a page request or report just sampled.
type Status struct {
	Time     time.Time    `json:"time"`
	Node     string       `json:"node,omitempty"`
	Reading  Reading      `json:"reading"`
	Category Category     `json:"category"`
	Message  string       `json:"message"`
	Mode     Mode         `json:"mode"`
	Alarm    bool         `json:"alarm"`
	Focus    DisplayFocus `json:"focus"`
}
