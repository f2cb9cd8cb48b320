package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gitlab.com/lologarithm/greenlife/greenlife"
)

const writeWait = 2 * time.Second

// Hub pushes every report to the connected websocket streams.
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	streams []*websocket.Conn
	last    []byte
}

// NewHub builds an empty hub.
func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log}
}

// ServeHTTP upgrades the request and sends the last report straight away.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("upgrade failure", "err", err)
		return
	}

	h.mu.Lock()
	if h.last != nil {
		c.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.WriteMessage(websocket.TextMessage, h.last); err != nil {
			h.mu.Unlock()
			c.Close()
			return
		}
	}
	h.streams = append(h.streams, c)
	n := len(h.streams)
	h.mu.Unlock()
	h.log.Info("stream connected", "remote", r.RemoteAddr, "streams", n)

	// Streams are read only to notice the client going away.
	go func() {
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				h.log.Info("disconnecting stream", "remote", r.RemoteAddr, "err", err)
				break
			}
		}
		h.drop(c)
	}()
}

// Publish implements Sink.
func (h *Hub) Publish(_ context.Context, st greenlife.Status) error {
	d, err := json.Marshal(st)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = d
	deadstreams := []int{}
	for i, cs := range h.streams {
		cs.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cs.WriteMessage(websocket.TextMessage, d); err != nil {
			deadstreams = append(deadstreams, i)
		}
	}
	for i := len(deadstreams) - 1; i > -1; i-- {
		idx := deadstreams[i]
		h.streams[idx].Close()
		h.streams = append(h.streams[:idx], h.streams[idx+1:]...)
	}
	return nil
}

// Len is the number of open streams.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.streams)
}

// Close disconnects every stream.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.streams {
		c.Close()
	}
	h.streams = nil
}

func (h *Hub) drop(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, cs := range h.streams {
		if cs == c {
			h.streams = append(h.streams[:i], h.streams[i+1:]...)
			break
		}
	}
	c.Close()
}
