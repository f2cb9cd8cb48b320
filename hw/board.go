package hw

import (
	"fmt"
	"log/slog"

	rpio "github.com/stianeikeland/go-rpio/v4"
)

// Pins is the BCM pin map of the board.
type Pins struct {
	Red         int `json:"red"`
	Green       int `json:"green"`
	Blue        int `json:"blue"`
	Buzzer      int `json:"buzzer"` // must be PWM capable (12, 13, 18 or 19)
	ModeButton  int `json:"mode_button"`
	FocusButton int `json:"focus_button"`
}

const (
	// buzzer pwm cycle length; the pwm clock is set to hz*toneCycle
	toneCycle = 64
)

// Board drives the RGB LED and buzzer through go-rpio.
// RGB pins are plain outputs: the feedback only ever uses full on or off,
// and the Pi has two hardware pwm channels which the buzzer needs one of.
type Board struct {
	log    *slog.Logger
	pins   Pins
	rgb    [3]rpio.Pin
	buzzer rpio.Pin
	hz     int
}

// OpenBoard maps GPIO memory and configures the output pins.
// Callers fall back to the simulated board when this fails off-Pi.
func OpenBoard(p Pins, log *slog.Logger) (*Board, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("%w: gpio: %v", ErrPeripheralInit, err)
	}
	b := &Board{
		log:    log,
		pins:   p,
		rgb:    [3]rpio.Pin{rpio.Pin(p.Red), rpio.Pin(p.Green), rpio.Pin(p.Blue)},
		buzzer: rpio.Pin(p.Buzzer),
	}
	for _, pin := range b.rgb {
		pin.Output()
		pin.Low()
	}
	b.buzzer.Mode(rpio.Pwm)
	b.buzzer.DutyCycle(0, toneCycle)
	log.Info("gpio board ready", "red", p.Red, "green", p.Green, "blue", p.Blue, "buzzer", p.Buzzer)
	return b, nil
}

// SetIntensity implements PWM. Any level at or above half scale is on.
func (b *Board) SetIntensity(ch Channel, level uint16) {
	if int(ch) >= len(b.rgb) {
		return
	}
	if level >= MaxLevel/2 {
		b.rgb[ch].High()
		return
	}
	b.rgb[ch].Low()
}

// SetTone implements Tone with a 50% duty square wave.
// Repeating the current tone is a no-op so the wave is not restarted.
func (b *Board) SetTone(hz int) {
	if hz == b.hz {
		return
	}
	b.hz = hz
	if hz <= 0 {
		b.buzzer.DutyCycle(0, toneCycle)
		return
	}
	b.buzzer.Freq(hz * toneCycle)
	b.buzzer.DutyCycle(toneCycle/2, toneCycle)
}

// Close turns everything off and unmaps GPIO memory.
func (b *Board) Close() error {
	for _, pin := range b.rgb {
		pin.Low()
	}
	b.buzzer.DutyCycle(0, toneCycle)
	b.hz = 0
	return rpio.Close()
}
