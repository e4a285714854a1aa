package endpoint

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rajnandan1/kener-sub002/internal/tzbound"
)

// StatusEndpoint serves the aggregated day grid and 90-day summary
// for one monitor, normalized to the viewer's day boundary.
//
// The viewer passes tz as an IANA zone name or a raw minute offset;
// missing means UTC.
func StatusEndpoint(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitor, err := b.Site.MonitorByTag(mux.Vars(r)["tag"])
		if err != nil {
			writeError(w, err, http.StatusNotFound)
			return
		}

		now := b.now()
		bounds, err := tzbound.Resolve(now, r.URL.Query().Get("tz"))
		if err != nil {
			writeError(w, err, http.StatusBadRequest)
			return
		}

		result := b.Aggregator.Aggregate(monitor, bounds, now)

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET")
		writeJSON(w, http.StatusOK, map[string]any{
			"tag":     monitor.Tag,
			"status":  result,
			"path0":   monitor.Path0Day,
			"path90":  monitor.Path90Day,
			"hidden":  monitor.Hidden,
			"image":   monitor.Image,
			"about":   monitor.Description,
			"section": monitor.Category,
		})
	}
}
