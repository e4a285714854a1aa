// Package ingest validates webhook observations and records them
// durably as fragment files, pending compaction.
package ingest

import (
	"math"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	"github.com/rajnandan1/kener-sub002/internal/store"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// maxAgeSeconds rejects observations older than the 90-day window.
const maxAgeSeconds = 90 * 86400

// futureGraceSeconds tolerates small clock skew from reporters.
const futureGraceSeconds = 60

// Payload is one webhook body. Latency and TimestampInSeconds stay
// untyped so that a wrong JSON type reports the same specific message
// as a missing field.
type Payload struct {
	Tag                string `json:"tag"`
	Status             string `json:"status"`
	Latency            any    `json:"latency"`
	TimestampInSeconds any    `json:"timestampInSeconds"`
}

// Writer validates and records observations.
type Writer struct {
	Store    *store.Store
	Monitors map[string]api.Monitor

	// Now is replaceable for tests. Nil means time.Now.
	Now func() time.Time
}

// NewWriter makes a Writer over the given monitors, indexed by tag.
func NewWriter(s *store.Store, monitors []api.Monitor) *Writer {
	byTag := make(map[string]api.Monitor, len(monitors))
	for _, m := range monitors {
		byTag[m.Tag] = m
	}
	return &Writer{Store: s, Monitors: byTag}
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// asNumber accepts the JSON number shapes a duck-typed reporter may
// send.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Ingest validates the payload fail-fast, in a fixed order, and on
// success writes a new uniquely named fragment file.
//
// It returns the minute the observation was stored at, after flooring.
func (w *Writer) Ingest(p Payload) (writtenAtMinute int64, err error) {
	status := api.ParseStatus(p.Status)
	if !status.IsObservable() {
		return 0, kenererr.New(api.ErrValidation, nil, "status missing")
	}

	latency, ok := asNumber(p.Latency)
	if !ok || math.IsNaN(latency) || math.IsInf(latency, 0) {
		return 0, kenererr.New(api.ErrValidation, nil, "latency missing or not a number")
	}

	now := w.now().Unix()

	timestamp := now
	if p.TimestampInSeconds != nil {
		ts, ok := asNumber(p.TimestampInSeconds)
		if !ok {
			return 0, kenererr.New(api.ErrValidation, nil, "timestampInSeconds is not a number")
		}
		timestamp = int64(ts)
	}

	timestamp = api.FloorMinute(timestamp)

	if timestamp > now+futureGraceSeconds {
		return 0, kenererr.New(api.ErrValidation, nil, "timestampInSeconds is in future")
	}
	if now-timestamp > maxAgeSeconds {
		return 0, kenererr.New(api.ErrValidation, nil, "timestampInSeconds is older than 90days")
	}

	monitor, ok := w.Monitors[p.Tag]
	if !ok {
		return 0, kenererr.New(api.ErrValidation, nil, "invalid tag")
	}

	_, err = w.Store.WriteFragment(monitor, api.Observation{
		Timestamp: timestamp,
		Status:    status,
		Latency:   latency,
	})
	if err != nil {
		return 0, err
	}

	return timestamp, nil
}
