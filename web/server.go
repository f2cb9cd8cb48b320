// Package web serves the node's status page.
package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"gitlab.com/lologarithm/greenlife/control"
	"gitlab.com/lologarithm/greenlife/greenlife"
)

// TogglePath flips the monitoring mode.
const TogglePath = "/toggle_modo"

// Prober builds a fresh status without advancing the node.
type Prober interface {
	Probe(now time.Time) greenlife.Status
}

// Server renders the status page and takes the web mode toggle.
type Server struct {
	log       *slog.Logger
	accessLog io.Writer
	state     *control.State
	probe     Prober
	now       func() time.Time

	onToggle []func(control.Press)
}

// NewServer builds a server. Access logs go to accessLog in combined log
// format; nil disables them.
func NewServer(log *slog.Logger, accessLog io.Writer, state *control.State, probe Prober) *Server {
	return &Server{
		log:       log,
		accessLog: accessLog,
		state:     state,
		probe:     probe,
		now:       time.Now,
	}
}

// OnToggle registers a callback for every accepted web toggle.
func (s *Server) OnToggle(fn func(control.Press)) {
	s.onToggle = append(s.onToggle, fn)
}

// Handler is the full middleware-wrapped router.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(TogglePath, s.toggle).Methods(http.MethodGet)
	r.HandleFunc("/", s.page)

	// Anything else gets the default page.
	r.NotFoundHandler = http.HandlerFunc(s.page)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.page)

	var h http.Handler = r
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(slog.NewLogLogger(s.log.Handler(), slog.LevelError)),
		handlers.PrintRecoveryStack(true),
	)(h)
	if s.accessLog != nil {
		h = handlers.CombinedLoggingHandler(s.accessLog, h)
	}
	return h
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	st := s.probe.Probe(s.now())

	buf := &bytes.Buffer{}
	if err := page.Execute(buf, newPageData(st)); err != nil {
		s.log.Error("failed to render status page", "err", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) toggle(w http.ResponseWriter, r *http.Request) {
	press := s.state.Mode.Toggle(s.now())
	switch press {
	case control.Silencing:
		s.log.Info("alarm deactivated", "source", "web")
	case control.Toggled:
		s.log.Info("mode toggled", "source", "web", "mode", s.state.Mode.Mode().String())
	}
	if press != control.Ignored {
		for _, fn := range s.onToggle {
			fn(press)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ListenAndServe serves until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return Serve(ctx, s.log, srv)
}

// Serve runs srv until ctx is done, then shuts it down.
func Serve(ctx context.Context, log *slog.Logger, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Info("starting webhost", "addr", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}
