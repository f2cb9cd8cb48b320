// Package control holds the node's mutable state: the alarm latch, the
// sensor mode and the display focus. Each piece guards its own fields; see
// State for the consistency contract.
package control

import (
	"sync"
	"time"
)

// DefaultHold is how long the critical condition must last before the alarm trips.
const DefaultHold = 5 * time.Second

// LatchState is the phase of the alarm latch.
type LatchState uint8

// Enum of latch phases
const (
	LatchIdle LatchState = iota
	LatchMonitoring
	LatchActive
)

func (ls LatchState) String() string {
	switch ls {
	case LatchMonitoring:
		return "monitoring"
	case LatchActive:
		return "active"
	}
	return "idle"
}

// Transition is what a latch call changed, if anything.
type Transition uint8

// Enum of latch transitions
const (
	NoChange Transition = iota
	Armed               // idle -> monitoring
	Disarmed            // monitoring -> idle
	Tripped             // monitoring -> active
	Silenced            // active -> idle
)

func (t Transition) String() string {
	switch t {
	case Armed:
		return "armed"
	case Disarmed:
		return "disarmed"
	case Tripped:
		return "tripped"
	case Silenced:
		return "silenced"
	}
	return "none"
}

// AlarmState is a copy of the latch.
// CriticalSince is non-zero exactly while the latch is monitoring.
type AlarmState struct {
	Active        bool
	CriticalSince time.Time
}

// Latch trips once the critical condition has held for the hold time and
// stays tripped until silenced.
type Latch struct {
	mu    sync.Mutex
	hold  time.Duration
	state LatchState
	since time.Time
}

// NewLatch returns an idle latch. A non-positive hold uses DefaultHold.
func NewLatch(hold time.Duration) *Latch {
	if hold <= 0 {
		hold = DefaultHold
	}
	return &Latch{hold: hold}
}

// Observe feeds one poll result. It is meant to run once per poll cycle, so
// the trip time is only as precise as the poll period.
func (l *Latch) Observe(now time.Time, critical bool) Transition {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.state {
	case LatchIdle:
		if critical {
			l.state = LatchMonitoring
			l.since = now
			return Armed
		}
	case LatchMonitoring:
		if !critical {
			l.state = LatchIdle
			l.since = time.Time{}
			return Disarmed
		}
		if now.Sub(l.since) >= l.hold {
			l.state = LatchActive
			l.since = time.Time{}
			return Tripped
		}
	}
	return NoChange
}

// Silence resets an active latch regardless of the current condition.
// It returns false when the latch was not active.
func (l *Latch) Silence() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != LatchActive {
		return false
	}
	l.state = LatchIdle
	l.since = time.Time{}
	return true
}

// Active reports whether the alarm is latched.
func (l *Latch) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == LatchActive
}

// State returns the current phase.
func (l *Latch) State() LatchState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Snapshot copies the latch.
func (l *Latch) Snapshot() AlarmState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return AlarmState{Active: l.state == LatchActive, CriticalSince: l.since}
}
