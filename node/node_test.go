package node

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/feedback"
	"gitlab.com/lologarithm/greenlife/greenlife"
	"gitlab.com/lologarithm/greenlife/hw"
)

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

type fixedSource struct {
	mu          sync.Mutex
	temp, humid float64
}

func (f *fixedSource) set(temp, humid float64) {
	f.mu.Lock()
	f.temp, f.humid = temp, humid
	f.mu.Unlock()
}

func (f *fixedSource) ReadTemperature(greenlife.Mode) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.temp
}

func (f *fixedSource) ReadHumidity() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.humid
}

func newTestNode(temp, humid float64) (*Node, *fixedSource, *hw.Recorder) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := hw.NewRecorder(log)
	fb := feedback.NewCoordinator(feedback.Sinks{PWM: rec, Tone: rec, Matrix: rec, Display: rec}, feedback.ToneStep)
	src := &fixedSource{temp: temp, humid: humid}
	return New(log, "test", src, control.NewState(control.DefaultTiming), fb, 0), src, rec
}

func TestCriticalTripsAlarm(t *testing.T) {
	n, _, rec := newTestNode(45, 90)

	var trips []control.Transition
	n.OnAlarm(func(tr control.Transition, st greenlife.Status) { trips = append(trips, tr) })

	for i := 0; i < 5; i++ {
		st := n.Tick(t0.Add(time.Duration(i) * time.Second))
		if st.Alarm {
			t.Fatalf("alarm active after %ds", i)
		}
		if st.Category != greenlife.Danger {
			t.Fatalf("category %v, want danger", st.Category)
		}
	}
	st := n.Tick(t0.Add(5 * time.Second))
	if !st.Alarm || st.Category != greenlife.AlarmActive {
		t.Fatalf("status %+v, want alarm", st)
	}
	if len(trips) != 2 || trips[0] != control.Armed || trips[1] != control.Tripped {
		t.Errorf("transitions %v, want [armed tripped]", trips)
	}

	out := rec.Outputs()
	if out.RGB != [3]uint16(feedback.RGBRed) {
		t.Errorf("rgb %v, want red", out.RGB)
	}
	if out.Tone != feedback.ToneLow {
		t.Errorf("tone %d, want %d", out.Tone, feedback.ToneLow)
	}
	next, on := n.fb.NextToneSwitch()
	if !on {
		t.Fatal("buzzer idle while alarm is active")
	}
	if hz := n.fb.StepTone(next, true); hz != feedback.ToneHigh {
		t.Errorf("tone after step %d, want %d", hz, feedback.ToneHigh)
	}

	if !n.State().Alarm.Silence() {
		t.Fatal("silence did nothing")
	}
	n.Tick(t0.Add(6 * time.Second))
	if out := rec.Outputs(); out.Tone != 0 {
		t.Errorf("tone %d after silence, want 0", out.Tone)
	}
}

func TestHealthyAndColdFeedback(t *testing.T) {
	n, src, rec := newTestNode(25, 50)
	st := n.Tick(t0)
	if st.Category != greenlife.Happy || st.Alarm {
		t.Fatalf("status %+v, want happy", st)
	}
	if out := rec.Outputs(); out.RGB != [3]uint16(feedback.RGBGreen) || out.Tone != 0 {
		t.Errorf("outputs %+v, want green and silent", out)
	}

	src.set(5, 50)
	st = n.Tick(t0.Add(time.Second))
	if st.Category != greenlife.Cold {
		t.Fatalf("category %v, want cold", st.Category)
	}
	out := rec.Outputs()
	if out.Frame[0] != feedback.PotColor || out.Frame[12] != feedback.PlantCold {
		t.Errorf("frame pot %v plant %v", out.Frame[0], out.Frame[12])
	}
	if out.RGB != [3]uint16(feedback.RGBAmber) {
		t.Errorf("rgb %v, want amber", out.RGB)
	}
}

func TestProbeDoesNotAdvance(t *testing.T) {
	n, _, rec := newTestNode(45, 90)
	for i := 0; i < 10; i++ {
		st := n.Probe(t0.Add(time.Duration(i) * time.Second))
		if st.Alarm {
			t.Fatal("probe tripped the alarm")
		}
	}
	if _, ok := n.Last(); ok {
		t.Error("probe stored a status")
	}
	if got := n.State().Alarm.State(); got != control.LatchIdle {
		t.Errorf("latch %v, want idle", got)
	}
	if rec.Outputs().Presents != 0 {
		t.Error("probe touched the display")
	}
}

func TestRunStopsSilent(t *testing.T) {
	n, _, rec := newTestNode(25, 50)
	n.poll = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- n.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := n.Last(); ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("loop never ticked")
		}
		time.Sleep(time.Millisecond)
	}
	n.Kick()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop")
	}
	if out := rec.Outputs(); out.Tone != 0 {
		t.Errorf("tone %d after stop", out.Tone)
	}
}

func TestButtons(t *testing.T) {
	n, _, rec := newTestNode(45, 90)
	var presses []control.Press
	n.OnModePress(func(p control.Press) { presses = append(presses, p) })

	if p := n.PressMode(t0); p != control.Toggled {
		t.Fatalf("press %v, want toggled", p)
	}
	if p := n.PressMode(t0.Add(100 * time.Millisecond)); p != control.Ignored {
		t.Errorf("bounce %v, want ignored", p)
	}
	if n.State().Mode.Mode() != greenlife.ModeManual {
		t.Errorf("mode %v, want manual", n.State().Mode.Mode())
	}

	if p := n.PressFocus(t0); p != control.Toggled || !n.State().Focus.Focus().ShowTemperature {
		t.Errorf("focus press %v focus %+v", p, n.State().Focus.Focus())
	}

	n.Tick(t0)
	n.Tick(t0.Add(5 * time.Second))
	if !n.State().Alarm.Active() {
		t.Fatal("alarm did not trip")
	}
	if p := n.PressFocus(t0.Add(6 * time.Second)); p != control.Silencing {
		t.Errorf("focus press during alarm %v, want silencing", p)
	}
	n.Tick(t0.Add(6 * time.Second))
	if rec.Outputs().Tone != 0 {
		t.Error("buzzer still sounding after silence")
	}
	if n.State().Mode.Mode() != greenlife.ModeManual {
		t.Error("silencing press changed the mode")
	}
	if len(presses) != 1 || presses[0] != control.Toggled {
		t.Errorf("press hooks %v", presses)
	}
}
