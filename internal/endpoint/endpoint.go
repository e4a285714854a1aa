// Package endpoint is the HTTP surface of the status core: the
// webhook ingestion entry point, the badge, and the JSON data
// contract the page front end consumes.
package endpoint

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/goccy/go-json"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/rajnandan1/kener-sub002/internal/aggregate"
	"github.com/rajnandan1/kener-sub002/internal/badge"
	"github.com/rajnandan1/kener-sub002/internal/config"
	"github.com/rajnandan1/kener-sub002/internal/incident"
	"github.com/rajnandan1/kener-sub002/internal/ingest"
	"github.com/rajnandan1/kener-sub002/internal/store"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// Backend bundles the components the endpoints dispatch into.
type Backend struct {
	Site       *config.Site
	Store      *store.Store
	Aggregator *aggregate.Aggregator
	Correlator *incident.Correlator
	Ingest     *ingest.Writer
	Badge      *badge.Renderer

	// AccessLog receives Apache-style request logs. Nil disables.
	AccessLog io.Writer

	// Now is replaceable for tests. Nil means time.Now.
	Now func() time.Time
}

func (b Backend) now() time.Time {
	if b.Now != nil {
		return b.Now()
	}
	return time.Now()
}

// New builds the route table.
func New(b Backend) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", HealthzEndpoint(b)).Methods(http.MethodGet)

	r.Handle("/api/webhook", WithAuth(b.Site, WebhookEndpoint(b))).Methods(http.MethodPost)
	r.Handle("/api/now/{tag}", WithAuth(b.Site, NowEndpoint(b))).Methods(http.MethodPost)

	r.HandleFunc("/api/badge/{tag}", BadgeEndpoint(b)).Methods(http.MethodGet)
	r.HandleFunc("/api/status/{tag}", StatusEndpoint(b)).Methods(http.MethodGet)
	r.HandleFunc("/api/incidents/{tag}", IncidentsEndpoint(b)).Methods(http.MethodGet)

	var h http.Handler = r
	if b.AccessLog != nil {
		h = handlers.LoggingHandler(b.AccessLog, h)
	}
	return gziphandler.GzipHandler(h)
}

func handleError(b Backend, scope string, err error) {
	if err != nil {
		b.Store.ReportInternalError("endpoint:"+scope, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. The webhook
// routes report unknown tags as 400 like any other payload problem;
// the read routes use notFoundAs = 404.
func writeError(w http.ResponseWriter, err error, notFoundAs int) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, api.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, api.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, api.ErrNotFound):
		status = notFoundAs
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
