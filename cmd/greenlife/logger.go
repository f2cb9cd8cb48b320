package main

import (
	"io"
	"log/slog"
	"os"
)

// initLogger writes to stdout and, when path is set, appends to a log file.
// The front panel owns the terminal, so quiet drops stdout.
func initLogger(path string, level slog.Level, quiet bool) (*slog.Logger, func()) {
	var out io.Writer = os.Stdout
	if quiet {
		out = io.Discard
	}
	opts := &slog.HandlerOptions{Level: level}
	if path == "" {
		return slog.New(slog.NewTextHandler(out, opts)), func() {}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		l := slog.New(slog.NewTextHandler(out, opts))
		l.Error("failed to open log file", "path", path, "err", err)
		return l, func() {}
	}
	if quiet {
		out = f
	} else {
		out = io.MultiWriter(os.Stdout, f)
	}
	l := slog.New(slog.NewTextHandler(out, opts))
	l.Info("logger initialized", "file", path)
	return l, func() { f.Close() }
}
