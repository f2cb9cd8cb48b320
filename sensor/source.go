// Package sensor converts raw ADC samples into temperature and humidity.
package sensor

import "gitlab.com/lologarithm/greenlife/greenlife"

// Channel is an ADC input.
type Channel uint8

// ADC inputs used by the node.
const (
	ChanHumidity     Channel = 0 // joystick X
	ChanJoystickTemp Channel = 1 // joystick Y
	ChanInternalTemp Channel = 4 // on-board temperature sensor
)

// MaxRaw is the largest 12 bit sample.
const MaxRaw = 4095

// Sampler returns the raw sample of a channel. Implementations must be safe
// for concurrent use: the loop, the page and the reporter all sample.
type Sampler interface {
	Sample(ch Channel) uint16
}

// Source produces temperature and humidity on demand.
type Source interface {
	ReadTemperature(mode greenlife.Mode) float64
	ReadHumidity() float64
}

// Read takes one temperature and one humidity reading from src.
func Read(src Source, mode greenlife.Mode) greenlife.Reading {
	return greenlife.Reading{
		Temp:     src.ReadTemperature(mode),
		Humidity: src.ReadHumidity(),
	}
}

// ADCSource reads both quantities from ADC channels.
// Automatic mode uses the internal sensor, manual mode the joystick.
type ADCSource struct {
	adc Sampler
}

// NewADCSource wraps a sampler.
func NewADCSource(adc Sampler) *ADCSource {
	return &ADCSource{adc: adc}
}

// ReadTemperature reads the channel selected by mode.
func (s *ADCSource) ReadTemperature(mode greenlife.Mode) float64 {
	if mode == greenlife.ModeManual {
		return JoystickTemp(s.adc.Sample(ChanJoystickTemp))
	}
	return InternalTemp(s.adc.Sample(ChanInternalTemp))
}

// ReadHumidity always reads the joystick channel.
func (s *ADCSource) ReadHumidity() float64 {
	return JoystickHumidity(s.adc.Sample(ChanHumidity))
}

// InternalTemp converts an internal sensor sample to degrees C.
// Samples are not validated, anything out of range maps linearly.
func InternalTemp(raw uint16) float64 {
	v := float64(raw) * 3.3 / 4096
	return 27.0 - (v-0.706)/0.001721
}

// JoystickTemp maps a joystick sample onto 0..60 C.
func JoystickTemp(raw uint16) float64 {
	return float64(raw) / MaxRaw * 60.0
}

// JoystickHumidity maps a joystick sample onto 0..100 %.
func JoystickHumidity(raw uint16) float64 {
	return float64(raw) / MaxRaw * 100.0
}

// JoystickRaw is the inverse of JoystickTemp/JoystickHumidity for a full scale.
func JoystickRaw(value, fullScale float64) uint16 {
	raw := value / fullScale * MaxRaw
	switch {
	case raw < 0:
		return 0
	case raw > MaxRaw:
		return MaxRaw
	}
	return uint16(raw + 0.5)
}
