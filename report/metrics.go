package report

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/greenlife"
)

var categories = []greenlife.Category{
	greenlife.Happy,
	greenlife.Danger,
	greenlife.Cold,
	greenlife.Hot,
	greenlife.Thirsty,
	greenlife.Flooded,
	greenlife.AlarmActive,
}

// Metrics exports reports and control events to Prometheus.
type Metrics struct {
	reg *prometheus.Registry

	temperature prometheus.Gauge
	humidity    prometheus.Gauge
	alarm       prometheus.Gauge
	manual      prometheus.Gauge
	category    *prometheus.GaugeVec
	trips       prometheus.Counter
	toggles     *prometheus.CounterVec
}

// NewMetrics registers the collectors on a private registry.
func NewMetrics(node string) *Metrics {
	labels := prometheus.Labels{"node": node}
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		temperature: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "greenlife_temperature_celsius",
			Help:        "Last reported temperature.",
			ConstLabels: labels,
		}),
		humidity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "greenlife_humidity_percent",
			Help:        "Last reported humidity.",
			ConstLabels: labels,
		}),
		alarm: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "greenlife_alarm_active",
			Help:        "1 while the alarm is sounding.",
			ConstLabels: labels,
		}),
		manual: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "greenlife_mode_manual",
			Help:        "1 in manual mode, 0 in automatic mode.",
			ConstLabels: labels,
		}),
		category: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "greenlife_category",
			Help:        "1 for the current plant category.",
			ConstLabels: labels,
		}, []string{"category"}),
		trips: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "greenlife_alarm_trips_total",
			Help:        "Total alarm activations.",
			ConstLabels: labels,
		}),
		toggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "greenlife_mode_presses_total",
			Help:        "Accepted mode control presses by result.",
			ConstLabels: labels,
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		m.temperature,
		m.humidity,
		m.alarm,
		m.manual,
		m.category,
		m.trips,
		m.toggles,
	)
	for _, c := range categories {
		m.category.WithLabelValues(c.String()).Set(0)
	}
	return m
}

// Publish implements Sink.
func (m *Metrics) Publish(_ context.Context, st greenlife.Status) error {
	m.temperature.Set(st.Reading.Temp)
	m.humidity.Set(st.Reading.Humidity)
	m.alarm.Set(boolGauge(st.Alarm))
	m.manual.Set(boolGauge(st.Mode == greenlife.ModeManual))
	for _, c := range categories {
		m.category.WithLabelValues(c.String()).Set(boolGauge(c == st.Category))
	}
	return nil
}

// AlarmTransition counts trips. It has the node's alarm hook signature.
func (m *Metrics) AlarmTransition(tr control.Transition, _ greenlife.Status) {
	if tr == control.Tripped {
		m.trips.Inc()
	}
}

// ModePress counts accepted mode presses.
func (m *Metrics) ModePress(p control.Press) {
	if p != control.Ignored {
		m.toggles.WithLabelValues(p.String()).Inc()
	}
}

// Handler serves the registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
