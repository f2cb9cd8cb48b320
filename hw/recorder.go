package hw

import (
	"log/slog"
	"sync"
)

// Recorder is the simulated board. It keeps the last value sent to every
// peripheral so the front panel and tests can look at them.
type Recorder struct {
	mu       sync.Mutex
	log      *slog.Logger
	rgb      [3]uint16
	tone     int
	drawing  []TextLine
	shown    []TextLine
	frame    Frame
	presents int
	frames   int
}

// Outputs is a copy of everything the recorder holds.
type Outputs struct {
	RGB      [3]uint16
	Tone     int
	Lines    []TextLine
	Frame    Frame
	Presents int
	Frames   int
}

// NewRecorder returns a dark, silent board.
func NewRecorder(log *slog.Logger) *Recorder {
	return &Recorder{log: log}
}

// SetIntensity implements PWM.
func (r *Recorder) SetIntensity(ch Channel, level uint16) {
	if int(ch) >= len(r.rgb) {
		return
	}
	if level > MaxLevel {
		level = MaxLevel
	}
	r.mu.Lock()
	changed := r.rgb[ch] != level
	r.rgb[ch] = level
	r.mu.Unlock()
	if changed {
		r.log.Debug("rgb channel set", "channel", ch, "level", level)
	}
}

// SetTone implements Tone.
func (r *Recorder) SetTone(hz int) {
	if hz < 0 {
		hz = 0
	}
	r.mu.Lock()
	changed := r.tone != hz
	r.tone = hz
	r.mu.Unlock()
	if changed {
		r.log.Debug("buzzer tone set", "hz", hz)
	}
}

// Clear implements Display.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.drawing = r.drawing[:0]
	r.mu.Unlock()
}

// DrawText implements Display.
func (r *Recorder) DrawText(x, y int, s string) {
	r.mu.Lock()
	r.drawing = append(r.drawing, TextLine{X: x, Y: y, Text: s})
	r.mu.Unlock()
}

// Present implements Display.
func (r *Recorder) Present() {
	r.mu.Lock()
	r.shown = append(r.shown[:0], r.drawing...)
	r.presents++
	r.mu.Unlock()
}

// PushFrame implements Matrix.
func (r *Recorder) PushFrame(f Frame) {
	r.mu.Lock()
	r.frame = f
	r.frames++
	r.mu.Unlock()
}

// Outputs copies the current outputs.
func (r *Recorder) Outputs() Outputs {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Outputs{
		RGB:      r.rgb,
		Tone:     r.tone,
		Lines:    append([]TextLine(nil), r.shown...),
		Frame:    r.frame,
		Presents: r.presents,
		Frames:   r.frames,
	}
}
