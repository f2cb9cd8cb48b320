// Package report publishes the node's status on a fixed period to the log,
// websocket clients, an MQTT broker and Prometheus, and mails alarm alerts.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gitlab.com/lologarithm/greenlife/greenlife"
)

// DefaultEvery is the firmware's terminal report period.
const DefaultEvery = 5 * time.Second

// Sink receives every report.
type Sink interface {
	Publish(ctx context.Context, st greenlife.Status) error
}

// Prober builds a fresh status without advancing the node.
type Prober interface {
	Probe(now time.Time) greenlife.Status
}

type namedSink struct {
	name string
	sink Sink
}

// Reporter fans a periodic status out to its sinks. Sink failures are logged
// and never stop the reporter.
type Reporter struct {
	log   *slog.Logger
	probe Prober
	every time.Duration
	sinks []namedSink
}

// NewReporter builds a reporter. A non-positive every uses DefaultEvery.
func NewReporter(log *slog.Logger, probe Prober, every time.Duration) *Reporter {
	if every <= 0 {
		every = DefaultEvery
	}
	return &Reporter{log: log, probe: probe, every: every}
}

// Add registers a sink. Call before Run.
func (r *Reporter) Add(name string, s Sink) {
	r.sinks = append(r.sinks, namedSink{name: name, sink: s})
}

// Report probes once and publishes to every sink.
func (r *Reporter) Report(ctx context.Context, now time.Time) greenlife.Status {
	st := r.probe.Probe(now)
	for _, ns := range r.sinks {
		if err := ns.sink.Publish(ctx, st); err != nil {
			r.log.Error("failed to publish report", "sink", ns.name, "err", err)
		}
	}
	return st
}

// Run reports every period until ctx is done.
func (r *Reporter) Run(ctx context.Context) error {
	t := time.NewTicker(r.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			r.Report(ctx, now)
		}
	}
}

// Line is the one-line text report.
func Line(st greenlife.Status) string {
	return fmt.Sprintf("[Report] Temp: %.2f C | Humid: %.2f %%", st.Reading.Temp, st.Reading.Humidity)
}

// LogSink writes reports to a logger.
type LogSink struct {
	Log *slog.Logger
}

// Publish implements Sink.
func (s LogSink) Publish(_ context.Context, st greenlife.Status) error {
	s.Log.Info(Line(st))
	s.Log.Info(st.Message, "category", st.Category.String(), "mode", st.Mode.String(), "alarm", st.Alarm)
	return nil
}
