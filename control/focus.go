package control

import (
	"sync"
	"time"

	"gitlab.com/lologarithm/greenlife/greenlife"
)

// FocusControl is the secondary display button. While the alarm is active
// any press silences it instead.
//
// Only the temperature focus is reachable: the board wires a single focus
// button, and the humidity flag is only ever cleared.
type FocusControl struct {
	mu     sync.Mutex
	latch  *Latch
	window time.Duration
	focus  greenlife.DisplayFocus
	last   time.Time
}

// NewFocusControl starts with no focus.
func NewFocusControl(latch *Latch, window time.Duration) *FocusControl {
	return &FocusControl{latch: latch, window: window}
}

// Press handles one debounced button edge.
func (f *FocusControl) Press(now time.Time) Press {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.last.IsZero() && now.Sub(f.last) < f.window {
		return Ignored
	}
	f.last = now
	if f.latch.Silence() {
		return Silencing
	}
	f.focus.ShowTemperature = !f.focus.ShowTemperature
	f.focus.ShowHumidity = false
	return Toggled
}

// Focus returns the focus; it reads as none while the alarm is active.
func (f *FocusControl) Focus() greenlife.DisplayFocus {
	if f.latch.Active() {
		return greenlife.DisplayFocus{}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.focus
}
