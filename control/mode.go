package control

import (
	"sync"
	"time"

	"gitlab.com/lologarithm/greenlife/greenlife"
)

// Debounce windows of the physical controls.
const (
	ModeDebounce  = 300 * time.Millisecond
	FocusDebounce = 200 * time.Millisecond
)

// Press is the outcome of a button press or toggle request.
type Press uint8

// Enum of press outcomes
const (
	Ignored   Press = iota // inside the debounce window
	Toggled                // state flipped
	Silencing              // alarm silenced instead
)

func (p Press) String() string {
	switch p {
	case Toggled:
		return "toggled"
	case Silencing:
		return "silenced alarm"
	}
	return "ignored"
}

// ModeControl flips between automatic and manual sensing. The physical
// button and the web action share it, and with it the debounce window.
type ModeControl struct {
	mu     sync.Mutex
	latch  *Latch
	window time.Duration
	mode   greenlife.Mode
	last   time.Time
}

// NewModeControl starts in automatic mode.
func NewModeControl(latch *Latch, window time.Duration) *ModeControl {
	return &ModeControl{latch: latch, window: window}
}

// Toggle flips the mode, or silences the alarm when it is active.
// Requests closer than the window to the last accepted one are dropped.
func (m *ModeControl) Toggle(now time.Time) Press {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.last.IsZero() && now.Sub(m.last) < m.window {
		return Ignored
	}
	m.last = now
	if m.latch.Silence() {
		return Silencing
	}
	if m.mode == greenlife.ModeManual {
		m.mode = greenlife.ModeAuto
	} else {
		m.mode = greenlife.ModeManual
	}
	return Toggled
}

// Mode returns the current sensor mode.
func (m *ModeControl) Mode() greenlife.Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}
