// Package config loads the node configuration from a JSON file with
// environment overrides for secrets.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/hw"
	"gitlab.com/lologarithm/greenlife/report"
	"gitlab.com/lologarithm/greenlife/rnet"
)

// Environment overrides.
const (
	EnvWifiPassword = "GREENLIFE_WIFI_PASSWORD"
	EnvMailgunKey   = "MAILGUN_API_KEY"
	EnvNodeID       = "GREENLIFE_NODE_ID"
)

// Duration is a time.Duration written as a string ("200ms") in JSON.
type Duration time.Duration

// D is the plain duration.
func (d Duration) D() time.Duration { return time.Duration(d) }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts "1.5s" style strings or nanosecond numbers.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		*d = Duration(time.Duration(val))
	case string:
		pd, err := time.ParseDuration(val)
		if err != nil {
			return err
		}
		*d = Duration(pd)
	default:
		return fmt.Errorf("invalid duration %s", b)
	}
	return nil
}

// Network is the Wi-Fi join configuration.
type Network struct {
	SSID       string   `json:"ssid"`
	Password   string   `json:"password"`
	Timeout    Duration `json:"timeout"`
	RetryDelay Duration `json:"retry_delay"`
	Attempts   int      `json:"attempts"`
}

// Join converts to the rnet join settings.
func (n Network) Join() rnet.Config {
	return rnet.Config{
		SSID:       n.SSID,
		Password:   n.Password,
		Timeout:    n.Timeout.D(),
		RetryDelay: n.RetryDelay.D(),
		Attempts:   n.Attempts,
	}
}

// ADC is the MCP3008 wiring.
type ADC struct {
	ChipSelect uint8 `json:"chip_select"`
	SpeedHz    int   `json:"speed_hz"`
}

// Timing holds every period and window the node runs on.
type Timing struct {
	Poll          Duration `json:"poll"`
	Report        Duration `json:"report"`
	AlarmHold     Duration `json:"alarm_hold"`
	ModeDebounce  Duration `json:"mode_debounce"`
	FocusDebounce Duration `json:"focus_debounce"`
	ToneStep      Duration `json:"tone_step"`
	ButtonPoll    Duration `json:"button_poll"`
}

// Control converts to the state machine windows.
func (t Timing) Control() control.Timing {
	return control.Timing{
		AlarmHold:     t.AlarmHold.D(),
		ModeDebounce:  t.ModeDebounce.D(),
		FocusDebounce: t.FocusDebounce.D(),
	}
}

// Config is the node configuration.
type Config struct {
	NodeID       string               `json:"node_id"`
	Listen       string               `json:"listen"`
	ReportListen string               `json:"report_listen"`
	LogFile      string               `json:"log_file"`
	LogLevel     string               `json:"log_level"`
	Network      Network              `json:"network"`
	Pins         hw.Pins              `json:"pins"`
	ADC          ADC                  `json:"adc"`
	Timing       Timing               `json:"timing"`
	Mailgun      report.MailgunConfig `json:"mailgun"`
	MQTT         report.MQTTConfig    `json:"mqtt"`
}

// Default is the board firmware's configuration.
func Default() Config {
	return Config{
		Listen:   ":80",
		LogLevel: "info",
		Network: Network{
			Timeout:    Duration(rnet.DefaultConfig.Timeout),
			RetryDelay: Duration(rnet.DefaultConfig.RetryDelay),
			Attempts:   rnet.DefaultConfig.Attempts,
		},
		Pins: hw.Pins{
			Red:         13,
			Green:       11,
			Blue:        12,
			Buzzer:      18,
			ModeButton:  5,
			FocusButton: 6,
		},
		ADC: ADC{ChipSelect: 0, SpeedHz: 1350000},
		Timing: Timing{
			Poll:          Duration(200 * time.Millisecond),
			Report:        Duration(report.DefaultEvery),
			AlarmHold:     Duration(control.DefaultHold),
			ModeDebounce:  Duration(control.ModeDebounce),
			FocusDebounce: Duration(control.FocusDebounce),
			ToneStep:      Duration(300 * time.Millisecond),
			ButtonPoll:    Duration(10 * time.Millisecond),
		},
		MQTT: report.MQTTConfig{Topic: "greenlife/status"},
	}
}

// Load reads path over the defaults. A missing file is not an error: the
// defaults are used and a warning is logged.
func Load(log *slog.Logger, path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("config file not found, using defaults", "path", path)
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvWifiPassword); ok {
		c.Network.Password = v
	}
	if v, ok := lookup(EnvMailgunKey); ok {
		c.Mailgun.APIKey = v
	}
	if v, ok := lookup(EnvNodeID); ok {
		c.NodeID = strings.TrimSpace(v)
	}
	if c.NodeID == "" {
		c.NodeID = uuid.NewString()
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "greenlife-" + c.NodeID
	}
}

// Validate rejects settings the node cannot run with.
func (c Config) Validate() error {
	t := c.Timing
	for name, d := range map[string]Duration{
		"poll":       t.Poll,
		"report":     t.Report,
		"alarm_hold": t.AlarmHold,
		"tone_step":  t.ToneStep,
	} {
		if d <= 0 {
			return fmt.Errorf("timing.%s must be positive, got %s", name, d.D())
		}
	}
	if t.ModeDebounce < 0 || t.FocusDebounce < 0 {
		return errors.New("debounce windows cannot be negative")
	}
	switch c.Pins.Buzzer {
	case 12, 13, 18, 19:
	default:
		return fmt.Errorf("buzzer pin %d is not pwm capable", c.Pins.Buzzer)
	}
	if c.Listen == "" {
		return errors.New("listen address is required")
	}
	return nil
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
