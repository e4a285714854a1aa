// Package badge renders a monitor's recent uptime as a compact
// two-segment SVG badge.
package badge

import (
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/store"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

//go:embed templates/badge.svg
var badgeTemplate string

var tmpl = template.Must(template.New("badge.svg").Parse(badgeTemplate))

const (
	defaultLabelColor = "#555"

	colorUp       = "#3bd671"
	colorDegraded = "#dfb317"
	colorDown     = "#e05d44"
	colorNoData   = "#9f9f9f"
)

// Options are the caller-supplied overrides from the badge endpoint.
type Options struct {
	// Color fills the value segment. Empty picks a status-derived
	// default.
	Color string

	// LabelColor fills the label segment.
	LabelColor string

	// Style is "flat" (default) or "flat-square".
	Style string
}

// Renderer computes and renders uptime badges from the event store.
type Renderer struct {
	Store *store.Store
}

// Render scans the monitor's event log over the lookback window and
// renders the uptime badge.
func (r *Renderer) Render(m api.Monitor, lookback time.Duration, now time.Time, opts Options) (string, error) {
	obs, err := r.Store.ReadTodayLog(m)
	if err != nil {
		return "", err
	}
	rollup, err := r.Store.ReadRollup(m)
	if err != nil {
		return "", err
	}

	since := now.Add(-lookback).Unix()

	var up, degraded, down int
	for _, o := range obs {
		if o.Timestamp < since || o.Timestamp > now.Unix() {
			continue
		}
		switch o.Status {
		case api.StatusUp:
			up++
		case api.StatusDegraded:
			degraded++
		case api.StatusDown:
			down++
		}
	}

	// Compacted days and the live log cover disjoint minutes, so the
	// counts add cleanly. The rollup only knows whole days: a day the
	// window boundary cuts through is left out rather than counted in
	// full.
	for dayStart, entry := range rollup {
		if dayStart < since || dayStart+86400 > now.Unix() {
			continue
		}
		up += entry.Up
		degraded += entry.Degraded
		down += entry.Down
	}

	value := api.ParseUptime(float64(up+degraded), float64(up+degraded+down)) + "%"

	color := opts.Color
	if color == "" {
		switch {
		case down > 0:
			color = colorDown
		case degraded > 0:
			color = colorDegraded
		case up > 0:
			color = colorUp
		default:
			color = colorNoData
		}
	}

	labelColor := opts.LabelColor
	if labelColor == "" {
		labelColor = defaultLabelColor
	}

	return render(m.Tag, value, color, labelColor, opts.Style)
}

// textWidth approximates rendered width for 11px Verdana. Close
// enough for a badge; nothing downstream measures it.
func textWidth(s string) int {
	return 7*len(s) + 10
}

func render(label, value, color, labelColor, style string) (string, error) {
	lw := textWidth(label)
	vw := textWidth(value)

	radius := 3
	gradient := true
	if style == "flat-square" {
		radius = 0
		gradient = false
	}

	var b strings.Builder
	err := tmpl.Execute(&b, map[string]any{
		"Label":      label,
		"Value":      value,
		"Color":      color,
		"LabelColor": labelColor,
		"LabelWidth": lw,
		"ValueWidth": vw,
		"TotalWidth": lw + vw,
		"LabelX":     lw * 5,
		"ValueX":     (lw + vw/2) * 10,
		"Radius":     radius,
		"Gradient":   gradient,
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}
