package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"gitlab.com/lologarithm/greenlife/config"
	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/feedback"
	"gitlab.com/lologarithm/greenlife/hw"
	"gitlab.com/lologarithm/greenlife/node"
	"gitlab.com/lologarithm/greenlife/panel"
	"gitlab.com/lologarithm/greenlife/report"
	"gitlab.com/lologarithm/greenlife/rnet"
	"gitlab.com/lologarithm/greenlife/sensor"
	"gitlab.com/lologarithm/greenlife/web"
)

func main() {
	cfgPath := flag.String("config", "config.json", "path to the json config file")
	addr := flag.String("addr", "", "host:port for the status page, overrides the config")
	reportAddr := flag.String("report-addr", "", "host:port for /stream and /metrics, overrides the config")
	sim := flag.Bool("sim", false, "run on the simulated board")
	tui := flag.Bool("tui", false, "show the terminal front panel (implies -sim)")
	flag.Parse()

	boot := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg, err := config.Load(boot, *cfgPath)
	if err != nil {
		boot.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Listen = *addr
	}
	if *reportAddr != "" {
		cfg.ReportListen = *reportAddr
	}

	logger, closeLog := initLogger(cfg.LogFile, cfg.Level(), *tui)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, logger, cfg, *sim || *tui, *tui)
	stop()
	if err != nil {
		logger.Error("node stopped", "err", err)
		closeLog()
		os.Exit(1)
	}
	logger.Info("Done!")
	closeLog()
}

// devices is what the node runs on, real or simulated.
type devices struct {
	source sensor.Source
	sinks  feedback.Sinks
	board  *hw.Board      // nil when simulated
	sim    *sensor.SimADC // nil on hardware
	rec    *hw.Recorder
	close  func()
}

func openDevices(log *slog.Logger, cfg config.Config, sim bool) (*devices, error) {
	// No display or matrix driver on the Pi build; both are recorded.
	rec := hw.NewRecorder(log.With("device", "recorder"))
	d := &devices{
		rec:   rec,
		sinks: feedback.Sinks{PWM: rec, Tone: rec, Matrix: rec, Display: rec},
		close: func() {},
	}

	if !sim {
		board, err := hw.OpenBoard(cfg.Pins, log)
		if err != nil {
			log.Warn("gpio unavailable, using simulated board", "err", err)
			sim = true
		} else {
			adc, err := sensor.OpenMCP3008(cfg.ADC.ChipSelect, cfg.ADC.SpeedHz)
			if err != nil {
				board.Close()
				return nil, fmt.Errorf("%w: adc: %v", hw.ErrPeripheralInit, err)
			}
			d.board = board
			d.source = sensor.NewADCSource(adc)
			d.sinks.PWM = board
			d.sinks.Tone = board
			d.close = func() {
				adc.Close()
				board.Close()
			}
		}
	}
	if sim {
		d.sim = sensor.NewSimADC()
		d.source = sensor.NewADCSource(d.sim)
	}
	return d, nil
}

func run(ctx context.Context, log *slog.Logger, cfg config.Config, sim, tui bool) error {
	log.Info("starting node", "node", cfg.NodeID, "sim", sim)
	dev, err := openDevices(log, cfg, sim)
	if err != nil {
		return err
	}
	defer dev.close()

	if _, err := rnet.NewJoiner(log).Join(ctx, cfg.Network.Join()); err != nil {
		if dev.board != nil {
			return err
		}
		log.Warn("continuing without network", "err", err)
	}

	state := control.NewState(cfg.Timing.Control())
	fb := feedback.NewCoordinator(dev.sinks, cfg.Timing.ToneStep.D())
	n := node.New(log, cfg.NodeID, dev.source, state, fb, cfg.Timing.Poll.D())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var wg sync.WaitGroup
	errc := make(chan error, 8)
	spawn := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errc <- fmt.Errorf("%s: %w", name, err)
				cancel()
			}
		}()
	}

	reporter := report.NewReporter(log, n, cfg.Timing.Report.D())
	reporter.Add("log", report.LogSink{Log: log})

	if cfg.Mailgun.Enabled() {
		n.OnAlarm(report.NewMailer(log, cfg.Mailgun).AlarmTransition)
	}
	if cfg.MQTT.Broker != "" {
		mq, err := report.DialMQTT(cfg.MQTT)
		if err != nil {
			log.Error("mqtt unavailable", "err", err)
		} else {
			defer mq.Close()
			reporter.Add("mqtt", mq)
		}
	}

	var access io.Writer
	if !tui {
		access = os.Stdout
	}
	page := web.NewServer(log, access, state, n)
	if cfg.ReportListen != "" {
		hub := report.NewHub(log)
		defer hub.Close()
		metrics := report.NewMetrics(cfg.NodeID)
		reporter.Add("stream", hub)
		reporter.Add("metrics", metrics)
		n.OnAlarm(metrics.AlarmTransition)
		n.OnModePress(metrics.ModePress)
		page.OnToggle(metrics.ModePress)

		side := &http.Server{
			Addr:              cfg.ReportListen,
			Handler:           report.Router(hub, metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		spawn("sideband", func() error { return web.Serve(ctx, log, side) })
	}
	page.OnToggle(func(control.Press) { n.Kick() })

	spawn("status page", func() error { return page.ListenAndServe(ctx, cfg.Listen) })
	spawn("reporter", func() error { return reporter.Run(ctx) })
	spawn("poll loop", func() error { return n.Run(ctx) })

	if dev.board != nil {
		interval := cfg.Timing.ButtonPoll.D()
		spawn("mode button", func() error {
			hw.WatchButton(ctx, cfg.Pins.ModeButton, interval, func(t time.Time) { n.PressMode(t) })
			return nil
		})
		spawn("focus button", func() error {
			hw.WatchButton(ctx, cfg.Pins.FocusButton, interval, func(t time.Time) { n.PressFocus(t) })
			return nil
		})
	}

	if dev.sim != nil {
		if tui {
			spawn("front panel", func() error {
				defer cancel()
				return panel.Run(panel.New(dev.rec, dev.sim, n, n))
			})
		} else {
			go dev.sim.Wander(ctx, time.Second, 8, rand.New(rand.NewSource(time.Now().UnixNano())))
		}
	}

	<-ctx.Done()
	wg.Wait()
	close(errc)
	var errs []error
	for err := range errc {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
