// Package node runs the plant node's poll loop: sample, latch, classify and
// fan the result out to the feedback sinks.
package node

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/feedback"
	"gitlab.com/lologarithm/greenlife/greenlife"
	"gitlab.com/lologarithm/greenlife/sensor"
)

// DefaultPoll is the poll period of the board firmware.
const DefaultPoll = 200 * time.Millisecond

// AlarmHook is called from the loop after every latch transition.
type AlarmHook func(tr control.Transition, st greenlife.Status)

// Node owns the loop. Feedback is only touched from the goroutine running
// Run (or calling Tick); Probe and Last are safe from anywhere.
type Node struct {
	log   *slog.Logger
	id    string
	src   sensor.Source
	state *control.State
	fb    *feedback.Coordinator
	poll  time.Duration

	last atomic.Pointer[greenlife.Status]
	kick chan struct{}

	hookMu     sync.Mutex
	hooks      []AlarmHook
	pressHooks []func(control.Press)
}

// New builds a node. A non-positive poll uses DefaultPoll.
func New(log *slog.Logger, id string, src sensor.Source, state *control.State, fb *feedback.Coordinator, poll time.Duration) *Node {
	if poll <= 0 {
		poll = DefaultPoll
	}
	return &Node{
		log:   log,
		id:    id,
		src:   src,
		state: state,
		fb:    fb,
		poll:  poll,
		kick:  make(chan struct{}, 1),
	}
}

// ID is the node id stamped on every status.
func (n *Node) ID() string { return n.id }

// State is the shared state the node runs on.
func (n *Node) State() *control.State { return n.state }

// OnAlarm registers a hook for latch transitions.
func (n *Node) OnAlarm(h AlarmHook) {
	n.hookMu.Lock()
	n.hooks = append(n.hooks, h)
	n.hookMu.Unlock()
}

// OnModePress registers a hook for accepted mode button presses.
func (n *Node) OnModePress(h func(control.Press)) {
	n.hookMu.Lock()
	n.pressHooks = append(n.pressHooks, h)
	n.hookMu.Unlock()
}

// PressMode is button A: toggle the mode, or silence the alarm.
func (n *Node) PressMode(now time.Time) control.Press {
	p := n.state.Mode.Toggle(now)
	switch p {
	case control.Silencing:
		n.log.Info("alarm deactivated", "source", "button")
	case control.Toggled:
		n.log.Info("mode toggled", "source", "button", "mode", n.state.Mode.Mode().String())
	}
	if p != control.Ignored {
		n.hookMu.Lock()
		hooks := n.pressHooks
		n.hookMu.Unlock()
		for _, h := range hooks {
			h(p)
		}
		n.Kick()
	}
	return p
}

// PressFocus is button B: toggle the temperature focus, or silence the alarm.
func (n *Node) PressFocus(now time.Time) control.Press {
	p := n.state.Focus.Press(now)
	switch p {
	case control.Silencing:
		n.log.Info("alarm deactivated", "source", "focus button")
	case control.Toggled:
		n.log.Debug("display focus changed", "temperature", n.state.Focus.Focus().ShowTemperature)
	}
	if p != control.Ignored {
		n.Kick()
	}
	return p
}

// Kick asks the loop to run a cycle now, e.g. after a button silenced the alarm.
func (n *Node) Kick() {
	select {
	case n.kick <- struct{}{}:
	default:
	}
}

// Tick runs one poll cycle.
func (n *Node) Tick(now time.Time) greenlife.Status {
	r := sensor.Read(n.src, n.state.Mode.Mode())
	tr := n.state.Alarm.Observe(now, r.Critical())
	snap := n.state.Snapshot()
	class := greenlife.Classify(r, snap.Alarm.Active)

	n.fb.Apply(now, feedback.Input{Reading: r, Category: class.Category, State: snap})

	st := n.status(now, r, class, snap)
	n.last.Store(&st)

	switch tr {
	case control.Armed:
		n.log.Info("critical condition, alarm armed", "reading", r.String())
	case control.Disarmed:
		n.log.Info("critical condition cleared", "reading", r.String())
	case control.Tripped:
		n.log.Warn("critical condition detected")
		n.log.Warn("alarm activated", "reading", r.String())
	}
	if tr != control.NoChange {
		n.hookMu.Lock()
		hooks := n.hooks
		n.hookMu.Unlock()
		for _, h := range hooks {
			h(tr, st)
		}
	}
	return st
}

// Probe samples and classifies without advancing the latch or the feedback.
// Page requests and reports use it.
func (n *Node) Probe(now time.Time) greenlife.Status {
	snap := n.state.Snapshot()
	r := sensor.Read(n.src, snap.Mode)
	return n.status(now, r, greenlife.Classify(r, snap.Alarm.Active), snap)
}

// Last is the status of the most recent Tick.
func (n *Node) Last() (greenlife.Status, bool) {
	st := n.last.Load()
	if st == nil {
		return greenlife.Status{}, false
	}
	return *st, true
}

func (n *Node) status(now time.Time, r greenlife.Reading, c greenlife.Classification, snap control.Snapshot) greenlife.Status {
	return greenlife.Status{
		Time:     now,
		Node:     n.id,
		Reading:  r,
		Category: c.Category,
		Message:  c.Message,
		Mode:     snap.Mode,
		Alarm:    snap.Alarm.Active,
		Focus:    snap.Focus,
	}
}

// Run polls until ctx is done. Between polls it wakes on buzzer tone
// boundaries, so the alarm pattern keeps its cadence without blocking
// sampling, the display or the network.
func (n *Node) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.poll)
	defer ticker.Stop()
	tone := time.NewTimer(time.Hour)
	tone.Stop()
	defer tone.Stop()
	defer func() { n.fb.Silence(time.Now()) }()

	n.log.Info("poll loop started", "poll", n.poll.String())
	n.Tick(time.Now())
	for {
		if next, on := n.fb.NextToneSwitch(); on {
			tone.Reset(max(time.Until(next), 0))
		} else {
			tone.Stop()
		}

		select {
		case <-ctx.Done():
			n.log.Info("poll loop stopped")
			return nil
		case now := <-ticker.C:
			n.Tick(now)
		case <-n.kick:
			n.Tick(time.Now())
		case now := <-tone.C:
			n.fb.StepTone(now, n.state.Alarm.Active())
		}
	}
}
