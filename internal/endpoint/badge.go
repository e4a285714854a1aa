package endpoint

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rajnandan1/kener-sub002/internal/badge"
)

// defaultLookback is the badge window when sinceLast is not given.
const defaultLookback = 90 * 86400

// BadgeEndpoint serves the uptime badge SVG for one monitor.
// Query: sinceLast (seconds), color, labelColor, style.
//
// Compacted history contributes at day granularity: a day the window
// boundary cuts through is not counted.
func BadgeEndpoint(b Backend) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monitor, err := b.Site.MonitorByTag(mux.Vars(r)["tag"])
		if err != nil {
			writeError(w, err, http.StatusNotFound)
			return
		}

		query := r.URL.Query()

		lookback := int64(defaultLookback)
		if raw := query.Get("sinceLast"); raw != "" {
			if n, err := strconv.ParseInt(raw, 10, 64); err == nil && n > 0 {
				lookback = n
			}
		}

		svg, err := b.Badge.Render(monitor, time.Duration(lookback)*time.Second, b.now(), badge.Options{
			Color:      query.Get("color"),
			LabelColor: query.Get("labelColor"),
			Style:      query.Get("style"),
		})
		if err != nil {
			handleError(b, "badge", err)
			writeError(w, err, http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "image/svg+xml; charset=UTF-8")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write([]byte(svg))
	}
}
