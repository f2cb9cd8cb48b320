package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/greenlife"
)

var t0 = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func status(temp, humid float64, alarm bool) greenlife.Status {
	r := greenlife.Reading{Temp: temp, Humidity: humid}
	c := greenlife.Classify(r, alarm)
	return greenlife.Status{
		Time:     t0,
		Node:     "test-node",
		Reading:  r,
		Category: c.Category,
		Message:  c.Message,
		Alarm:    alarm,
	}
}

type probeFunc func(time.Time) greenlife.Status

func (f probeFunc) Probe(now time.Time) greenlife.Status { return f(now) }

type sinkFunc func(context.Context, greenlife.Status) error

func (f sinkFunc) Publish(ctx context.Context, st greenlife.Status) error { return f(ctx, st) }

func TestReporterPublishesToEverySink(t *testing.T) {
	r := NewReporter(quiet(), probeFunc(func(now time.Time) greenlife.Status {
		st := status(25, 50, false)
		st.Time = now
		return st
	}), 0)
	if r.every != DefaultEvery {
		t.Errorf("period %v, want %v", r.every, DefaultEvery)
	}

	var got []string
	r.Add("broken", sinkFunc(func(context.Context, greenlife.Status) error {
		got = append(got, "broken")
		return errors.New("boom")
	}))
	r.Add("ok", sinkFunc(func(_ context.Context, st greenlife.Status) error {
		got = append(got, "ok")
		if !st.Time.Equal(t0) {
			t.Errorf("time %v, want %v", st.Time, t0)
		}
		return nil
	}))

	st := r.Report(context.Background(), t0)
	if st.Category != greenlife.Happy {
		t.Errorf("category %v, want happy", st.Category)
	}
	if strings.Join(got, ",") != "broken,ok" {
		t.Errorf("sinks called %v", got)
	}
}

func TestLine(t *testing.T) {
	got := Line(status(24.815, 50, false))
	want := "[Report] Temp: 24.82 C | Humid: 50.00 %"
	if got != want {
		t.Errorf("line %q, want %q", got, want)
	}

	var buf strings.Builder
	LogSink{Log: slog.New(slog.NewTextHandler(&buf, nil))}.Publish(context.Background(), status(5, 50, false))
	if out := buf.String(); !strings.Contains(out, "Temp: 5.00 C") || !strings.Contains(out, "Your plant is cold!") {
		t.Errorf("log output %q", out)
	}
}

func TestHubDelivers(t *testing.T) {
	hub := NewHub(quiet())
	srv := httptest.NewServer(Router(hub, nil))
	defer srv.Close()
	defer hub.Close()

	hub.Publish(context.Background(), status(25, 50, false))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	c.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first map[string]interface{}
	if err := c.ReadJSON(&first); err != nil {
		t.Fatalf("read last report: %v", err)
	}
	if first["category"] != "happy" || first["node"] != "test-node" {
		t.Errorf("first message %v", first)
	}

	hub.Publish(context.Background(), status(45, 90, true))
	var next map[string]interface{}
	if err := c.ReadJSON(&next); err != nil {
		t.Fatalf("read report: %v", err)
	}
	if next["category"] != "alarm" || next["alarm"] != true {
		t.Errorf("second message %v", next)
	}
	reading, _ := next["reading"].(map[string]interface{})
	if reading["temp"] != 45.0 {
		t.Errorf("reading %v", reading)
	}
}

func TestHubDropsClosedStreams(t *testing.T) {
	hub := NewHub(quiet())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitFor(t, func() bool { return hub.Len() == 1 })
	c.Close()
	waitFor(t, func() bool {
		hub.Publish(context.Background(), status(25, 50, false))
		return hub.Len() == 0
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

type fakeToken struct {
	done chan struct{}
	err  error
}

func (f *fakeToken) Wait() bool                     { <-f.done; return true }
func (f *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (f *fakeToken) Done() <-chan struct{}          { return f.done }
func (f *fakeToken) Error() error                   { return f.err }

type fakeBroker struct {
	mu     sync.Mutex
	topic  string
	sent   [][]byte
	err    error
	silent bool
}

func (b *fakeBroker) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.topic = topic
	b.sent = append(b.sent, payload.([]byte))
	tok := &fakeToken{done: make(chan struct{}), err: b.err}
	if !b.silent {
		close(tok.done)
	}
	return tok
}

func TestMQTTPublish(t *testing.T) {
	b := &fakeBroker{}
	m := newMQTT(b, "greenlife/status")
	if err := m.Publish(context.Background(), status(25, 90, false)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if b.topic != "greenlife/status" || len(b.sent) != 1 {
		t.Fatalf("topic %q sent %d", b.topic, len(b.sent))
	}
	var got greenlife.Status
	if err := json.Unmarshal(b.sent[0], &struct {
		Reading *greenlife.Reading `json:"reading"`
	}{&got.Reading}); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if got.Reading.Humidity != 90 {
		t.Errorf("payload reading %+v", got.Reading)
	}

	b.err = errors.New("not connected")
	if err := m.Publish(context.Background(), status(25, 50, false)); err == nil {
		t.Error("broker error not returned")
	}

	b.err, b.silent = nil, true
	m.timeout = 10 * time.Millisecond
	if err := m.Publish(context.Background(), status(25, 50, false)); !errors.Is(err, ErrPublishTimeout) {
		t.Errorf("err %v, want timeout", err)
	}
}

func TestMetrics(t *testing.T) {
	m := NewMetrics("test-node")
	m.Publish(context.Background(), status(45, 90, true))

	if v := testutil.ToFloat64(m.temperature); v != 45 {
		t.Errorf("temperature %v", v)
	}
	if v := testutil.ToFloat64(m.alarm); v != 1 {
		t.Errorf("alarm %v", v)
	}
	if v := testutil.ToFloat64(m.category.WithLabelValues("alarm")); v != 1 {
		t.Errorf("alarm category %v", v)
	}
	if v := testutil.ToFloat64(m.category.WithLabelValues("happy")); v != 0 {
		t.Errorf("happy category %v", v)
	}

	m.AlarmTransition(control.Armed, greenlife.Status{})
	m.AlarmTransition(control.Tripped, greenlife.Status{})
	if v := testutil.ToFloat64(m.trips); v != 1 {
		t.Errorf("trips %v, want 1", v)
	}
	m.ModePress(control.Ignored)
	m.ModePress(control.Toggled)
	if v := testutil.ToFloat64(m.toggles.WithLabelValues("toggled")); v != 1 {
		t.Errorf("toggles %v, want 1", v)
	}

	rec := httptest.NewRecorder()
	Router(nil, m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `greenlife_temperature_celsius{node="test-node"} 45`) {
		t.Errorf("metrics page %d:\n%s", rec.Code, rec.Body.String())
	}
}

func TestAlertMessage(t *testing.T) {
	st := status(45, 90, true)
	st.Mode = greenlife.ModeManual
	subj, body := alertMessage(st)
	if subj != "Green Life alarm: test-node" {
		t.Errorf("subject %q", subj)
	}
	for _, want := range []string{"Temperature: 45.0 C", "Humidity: 90.0 %", "Mode: Manual", "button A"} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if (MailgunConfig{Domain: "mg.example.com", APIKey: "key"}).Enabled() {
		t.Error("config without recipients enabled")
	}
}
