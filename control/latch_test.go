package control

import (
	"testing"
	"time"
)

const poll = 200 * time.Millisecond

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

// run feeds the latch one observation per poll from start for the given span
// and returns the last transition seen that was not NoChange.
func run(l *Latch, start time.Time, span time.Duration, critical bool) (time.Time, Transition) {
	last := NoChange
	now := start
	for elapsed := time.Duration(0); elapsed <= span; elapsed += poll {
		now = start.Add(elapsed)
		if tr := l.Observe(now, critical); tr != NoChange {
			last = tr
		}
	}
	return now, last
}

func TestLatchTripsAfterHold(t *testing.T) {
	l := NewLatch(DefaultHold)
	if tr := l.Observe(t0, true); tr != Armed {
		t.Fatalf("first critical poll: got %s, want armed", tr)
	}
	st := l.Snapshot()
	if st.Active || !st.CriticalSince.Equal(t0) {
		t.Fatalf("monitoring snapshot: got %+v", st)
	}
	for i := 1; i < 25; i++ {
		if tr := l.Observe(t0.Add(time.Duration(i)*poll), true); tr != NoChange {
			t.Fatalf("poll %d (%s): unexpected %s", i, time.Duration(i)*poll, tr)
		}
	}
	if tr := l.Observe(t0.Add(5*time.Second), true); tr != Tripped {
		t.Fatalf("at 5.0s: got %s, want tripped", tr)
	}
	st = l.Snapshot()
	if !st.Active || !st.CriticalSince.IsZero() {
		t.Fatalf("active snapshot: got %+v", st)
	}
}

func TestLatchResetsBeforeHold(t *testing.T) {
	l := NewLatch(DefaultHold)
	now, tr := run(l, t0, 4800*time.Millisecond, true)
	if tr != Armed || l.State() != LatchMonitoring {
		t.Fatalf("after 4.8s: got %s/%s, want armed/monitoring", tr, l.State())
	}
	// condition clears at 4.9s
	if tr := l.Observe(now.Add(100*time.Millisecond), false); tr != Disarmed {
		t.Fatalf("clear at 4.9s: got %s, want disarmed", tr)
	}
	if st := l.Snapshot(); st.Active || !st.CriticalSince.IsZero() {
		t.Fatalf("idle snapshot: got %+v", st)
	}
	// re-arming starts a fresh timer
	start := now.Add(300 * time.Millisecond)
	l.Observe(start, true)
	if tr := l.Observe(start.Add(4*time.Second), true); tr != NoChange {
		t.Fatalf("fresh timer must not trip early: got %s", tr)
	}
}

func TestLatchSilenceIsUnconditional(t *testing.T) {
	l := NewLatch(DefaultHold)
	now, tr := run(l, t0, 5*time.Second, true)
	if tr != Tripped {
		t.Fatalf("got %s, want tripped", tr)
	}
	// stays latched while critical, and while not
	if tr := l.Observe(now.Add(poll), false); tr != NoChange || !l.Active() {
		t.Fatalf("latch must hold: got %s active=%v", tr, l.Active())
	}
	if !l.Silence() {
		t.Fatal("Silence on an active latch must report true")
	}
	if l.Silence() {
		t.Fatal("Silence on an idle latch must report false")
	}
	// still critical: a new 5s window begins
	if tr := l.Observe(now.Add(2*poll), true); tr != Armed {
		t.Fatalf("after silence: got %s, want armed", tr)
	}
}

func TestLatchDefaultHold(t *testing.T) {
	if l := NewLatch(0); l.hold != DefaultHold {
		t.Errorf("NewLatch(0): hold %s, want %s", l.hold, DefaultHold)
	}
}
