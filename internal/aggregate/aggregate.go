// Package aggregate turns a monitor's stored observations into the
// viewer-facing "today" minute grid and the rolling 90-day daily
// summary.
package aggregate

import (
	"fmt"
	"math"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/store"
	"github.com/rajnandan1/kener-sub002/internal/tzbound"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

const daySeconds = 86400

// Slot is one minute of the "today" grid.
type Slot struct {
	Timestamp int64      `json:"timestamp"`
	Status    api.Status `json:"status"`
	CSSClass  string     `json:"cssClass"`
	Index     int        `json:"index"`
}

// DayBucket is one calendar day of the 90-day summary.
type DayBucket struct {
	Timestamp int64 `json:"timestamp"`

	Up       int `json:"UP"`
	Degraded int `json:"DEGRADED"`
	Down     int `json:"DOWN"`

	// UptimePercentage counts degraded minutes as available.
	UptimePercentage float64 `json:"uptimePercentage"`

	CSSClass string `json:"cssClass"`
	Message  string `json:"message"`
}

// Result is everything the presentation layer needs for one monitor.
type Result struct {
	DayGrid      []Slot      `json:"dayGrid"`
	DailyBuckets []DayBucket `json:"dailyBuckets"`

	UptimeToday string `json:"uptimeToday"`
	Uptime90Day string `json:"uptime90Day"`

	DailyUps      int `json:"dailyUps"`
	DailyDown     int `json:"dailyDown"`
	DailyDegraded int `json:"dailyDegraded"`
}

// Aggregator builds Results from the event store. It is stateless and
// re-reads storage on every call.
type Aggregator struct {
	Store *store.Store
}

// Aggregate builds the day grid and daily buckets for one monitor and
// one viewer day boundary.
//
// Storage problems degrade to empty data rather than failing the
// request; a status page showing partial data beats one showing none.
func (a *Aggregator) Aggregate(m api.Monitor, bounds tzbound.DayBounds, now time.Time) *Result {
	obs, err := a.Store.ReadTodayLog(m)
	if err != nil {
		a.Store.ReportInternalError("aggregate:log", err.Error())
		obs = nil
	}

	rollup, err := a.Store.ReadRollup(m)
	if err != nil {
		a.Store.ReportInternalError("aggregate:rollup", err.Error())
		rollup = nil
	}

	r := &Result{}

	nowMinute := api.FloorMinute(now.Unix())
	a.buildDayGrid(r, m, bounds, nowMinute, obs)
	a.buildDailyBuckets(r, bounds, rollup, obs)

	r.UptimeToday = api.ParseUptime(
		float64(r.DailyUps+r.DailyDegraded),
		float64(r.DailyUps+r.DailyDegraded+r.DailyDown),
	)

	return r
}

// buildDayGrid makes one slot per minute from the viewer's local
// midnight through the current minute, then overlays observations.
// Duplicate observations for a minute overwrite; the today counters
// move exactly once per matched slot.
func (a *Aggregator) buildDayGrid(r *Result, m api.Monitor, bounds tzbound.DayBounds, nowMinute int64, obs []api.Observation) {
	n := int((nowMinute-bounds.TodayStart)/60) + 1
	if n < 0 {
		n = 0
	}

	defaultStatus := api.StatusNoData
	if m.DefaultStatus.IsObservable() {
		defaultStatus = m.DefaultStatus
	}

	grid := make([]Slot, n)
	for i := range grid {
		grid[i] = Slot{
			Timestamp: bounds.TodayStart + int64(i)*60,
			Status:    defaultStatus,
			CSSClass:  defaultStatus.String(),
			Index:     i,
		}
	}

	counted := make(map[int]bool)
	for _, o := range obs {
		if o.Timestamp < bounds.TodayStart || o.Timestamp > nowMinute {
			continue
		}
		i := int((o.Timestamp - bounds.TodayStart) / 60)

		grid[i].Status = o.Status
		grid[i].CSSClass = o.Status.String()

		if counted[i] {
			continue
		}
		counted[i] = true

		switch o.Status {
		case api.StatusUp:
			r.DailyUps++
		case api.StatusDegraded:
			r.DailyDegraded++
		case api.StatusDown:
			r.DailyDown++
		}
	}

	r.DayGrid = grid
}

// buildDailyBuckets initializes the fixed 91-day grid and fills it
// from the pre-compacted rollup plus the minute-level log. Compaction
// keeps the two sources disjoint, so counts never double.
func (a *Aggregator) buildDailyBuckets(r *Result, bounds tzbound.DayBounds, rollup map[int64]store.RollupEntry, obs []api.Observation) {
	buckets := make([]DayBucket, tzbound.LookbackDays+1)
	for i := range buckets {
		buckets[i] = DayBucket{
			Timestamp: bounds.NinetyDaysAgoStart + int64(i)*daySeconds,
			CSSClass:  api.StatusNoData.String(),
			Message:   "No Data",
		}
	}

	bucketIndex := func(ts int64) (int, bool) {
		if ts < bounds.NinetyDaysAgoStart || ts >= bounds.TomorrowStart {
			return 0, false
		}
		return int((ts - bounds.NinetyDaysAgoStart) / daySeconds), true
	}

	for day, e := range rollup {
		if i, ok := bucketIndex(day); ok {
			buckets[i].Up += e.Up
			buckets[i].Degraded += e.Degraded
			buckets[i].Down += e.Down
		}
	}

	for _, o := range obs {
		if i, ok := bucketIndex(o.Timestamp); ok {
			switch o.Status {
			case api.StatusUp:
				buckets[i].Up++
			case api.StatusDegraded:
				buckets[i].Degraded++
			case api.StatusDown:
				buckets[i].Down++
			}
		}
	}

	var sum float64
	var sampled int
	for i := range buckets {
		b := &buckets[i]
		total := b.Up + b.Degraded + b.Down

		switch {
		case b.Down > 0:
			b.CSSClass = api.StatusDown.String()
			b.Message = fmt.Sprintf("Down for %d minutes", b.Down)
		case b.Degraded > 0:
			b.CSSClass = api.StatusDegraded.String()
			b.Message = fmt.Sprintf("Degraded for %d minutes", b.Degraded)
		case total > 0:
			b.CSSClass = api.StatusUp.String()
			b.Message = "Status OK"
		default:
			// stays "No Data" and out of the 90-day average
			continue
		}

		b.UptimePercentage = float64(b.Up+b.Degraded) / float64(total) * 100
		sum += b.UptimePercentage
		sampled++
	}

	// Unweighted mean across days: a day with one sample counts the
	// same as a fully sampled day.
	mean := math.NaN()
	if sampled > 0 {
		mean = sum / float64(sampled)
	}

	r.DailyBuckets = buckets
	r.Uptime90Day = api.ParsePercentage(mean)
}
