package report

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Router serves /stream and /metrics. Either may be nil.
func Router(hub *Hub, metrics *Metrics) *mux.Router {
	r := mux.NewRouter()
	if hub != nil {
		r.Handle("/stream", hub).Methods(http.MethodGet)
	}
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}
