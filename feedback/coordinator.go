package feedback

import (
	"time"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/greenlife"
	"gitlab.com/lologarithm/greenlife/hw"
)

// Sinks are the peripherals the coordinator writes to.
type Sinks struct {
	PWM     hw.PWM
	Tone    hw.Tone
	Matrix  hw.Matrix
	Display hw.Display
}

// Input is everything one feedback pass depends on.
type Input struct {
	Reading  greenlife.Reading
	Category greenlife.Category
	State    control.Snapshot
}

// Output is what was written to the sinks.
type Output struct {
	RGB    RGB
	Frame  hw.Frame
	ToneHz int
	Lines  []hw.TextLine
}

// Coordinator fans one state out to every feedback sink. It owns the buzzer
// sequence and is driven from a single goroutine.
type Coordinator struct {
	sinks  Sinks
	buzzer *Buzzer
}

// NewCoordinator builds a coordinator with a tone step (0 uses ToneStep).
func NewCoordinator(s Sinks, toneStep time.Duration) *Coordinator {
	return &Coordinator{sinks: s, buzzer: NewBuzzer(toneStep)}
}

// Compute works out every target without touching the sinks. It advances the
// buzzer sequence to now.
func (c *Coordinator) Compute(now time.Time, in Input) Output {
	alarm := in.State.Alarm.Active
	cat := in.Category
	if alarm {
		cat = greenlife.AlarmActive
	}
	return Output{
		RGB:    RGBFor(cat),
		Frame:  MatrixFrame(in.Reading.Temp),
		ToneHz: c.buzzer.Step(now, alarm),
		Lines:  ScreenLines(in.Reading, in.State.Mode, alarm, in.State.Focus),
	}
}

// Apply computes and writes every target. Calling it again with the same
// input writes the same values.
func (c *Coordinator) Apply(now time.Time, in Input) Output {
	out := c.Compute(now, in)
	for ch, level := range out.RGB {
		c.sinks.PWM.SetIntensity(hw.Channel(ch), level)
	}
	c.sinks.Matrix.PushFrame(out.Frame)
	c.sinks.Tone.SetTone(out.ToneHz)

	c.sinks.Display.Clear()
	for _, l := range out.Lines {
		c.sinks.Display.DrawText(l.X, l.Y, l.Text)
	}
	c.sinks.Display.Present()
	return out
}

// StepTone only advances the buzzer, for wake-ups between polls.
func (c *Coordinator) StepTone(now time.Time, alarm bool) int {
	hz := c.buzzer.Step(now, alarm)
	c.sinks.Tone.SetTone(hz)
	return hz
}

// NextToneSwitch is when StepTone next needs to run; false while silent.
func (c *Coordinator) NextToneSwitch() (time.Time, bool) {
	return c.buzzer.NextSwitch()
}

// Silence stops the buzzer at once.
func (c *Coordinator) Silence(now time.Time) {
	c.StepTone(now, false)
}
