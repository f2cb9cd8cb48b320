package control

import (
	"time"

	"gitlab.com/lologarithm/greenlife/greenlife"
)

// Timing holds the windows the state machines run on.
type Timing struct {
	AlarmHold     time.Duration
	ModeDebounce  time.Duration
	FocusDebounce time.Duration
}

// DefaultTiming matches the board firmware.
var DefaultTiming = Timing{
	AlarmHold:     DefaultHold,
	ModeDebounce:  ModeDebounce,
	FocusDebounce: FocusDebounce,
}

// State is the process-wide node state handed to the poll loop, the button
// watchers and the web handlers.
//
// Each field has a single writer path and guards itself. Nothing locks the
// whole struct, so a Snapshot may combine values from two adjacent poll
// cycles. Readers must accept being one cycle stale.
type State struct {
	Alarm *Latch
	Mode  *ModeControl
	Focus *FocusControl
}

// NewState returns the power-on state: automatic mode, alarm idle, no focus.
func NewState(t Timing) *State {
	latch := NewLatch(t.AlarmHold)
	return &State{
		Alarm: latch,
		Mode:  NewModeControl(latch, t.ModeDebounce),
		Focus: NewFocusControl(latch, t.FocusDebounce),
	}
}

// Snapshot is a copy of State taken field by field.
type Snapshot struct {
	Alarm AlarmState
	Mode  greenlife.Mode
	Focus greenlife.DisplayFocus
}

// Snapshot reads every field once.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Alarm: s.Alarm.Snapshot(),
		Mode:  s.Mode.Mode(),
		Focus: s.Focus.Focus(),
	}
}
