// Package hw holds the peripheral interfaces the node drives and the
// implementations behind them: a go-rpio board and an in-memory recorder.
package hw

import "errors"

// ErrPeripheralInit is returned when a peripheral cannot be brought up.
// It is fatal at start-up.
var ErrPeripheralInit = errors.New("peripheral init failed")

// Channel is one colour of the RGB LED.
type Channel uint8

// RGB LED channels
const (
	Red Channel = iota
	Green
	Blue
)

// MaxLevel is the full-scale channel intensity.
const MaxLevel = 4095

// PWM sets channel intensities in 0..MaxLevel.
type PWM interface {
	SetIntensity(ch Channel, level uint16)
}

// Tone drives the buzzer. Zero hz is silence.
type Tone interface {
	SetTone(hz int)
}

// Display is a small text display. Nothing shows until Present.
type Display interface {
	Clear()
	DrawText(x, y int, s string)
	Present()
}

// Color is a 24 bit pixel.
type Color struct {
	R, G, B uint8
}

// MatrixSize is the pixel count of the 5x5 matrix.
const MatrixSize = 25

// Frame is one full matrix image in strip order.
type Frame [MatrixSize]Color

// Matrix pushes frames to the addressable LED matrix.
type Matrix interface {
	PushFrame(f Frame)
}

// TextLine is a string drawn at a display position.
type TextLine struct {
	X, Y int
	Text string
}
