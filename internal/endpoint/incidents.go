package endpoint

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// IncidentsEndpoint serves the monitor's recent incidents from the
// issue tracker, split into active and past.
//
// A tracker failure degrades to an empty set with HTTP 200. The
// failure is already on the internal error list; the page should
// still render.
func IncidentsEndpoint(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitor, err := b.Site.MonitorByTag(mux.Vars(r)["tag"])
		if err != nil {
			writeError(w, err, http.StatusNotFound)
			return
		}

		sinceHours := b.Site.IncidentSinceHours
		if raw := r.URL.Query().Get("sinceHours"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil && n > 0 {
				sinceHours = n
			}
		}

		set, err := b.Correlator.IncidentsForMonitor(r.Context(), monitor.Tag, sinceHours)
		handleError(b, "incidents", err)

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		writeJSON(w, http.StatusOK, set)
	}
}
