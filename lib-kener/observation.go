package kener

import (
	"io"
	"sort"
	"strconv"

	"github.com/goccy/go-json"
)

// Observation is one minute-granularity health check result.
type Observation struct {
	// Timestamp is UTC epoch seconds, always minute aligned.
	Timestamp int64

	Status Status

	// Latency is the check latency in milliseconds.
	Latency float64
}

// FloorMinute rounds epoch seconds down to the minute boundary.
func FloorMinute(sec int64) int64 {
	return sec - sec%60
}

// logEntry is the value shape of the per-monitor event log file:
// a JSON object keyed by epoch-second strings.
type logEntry struct {
	Status  Status  `json:"status"`
	Latency float64 `json:"latency"`
}

// ParseEventLog decodes a per-monitor event log file.
//
// Entries with an unparsable key or a status that is not
// UP/DEGRADED/DOWN are skipped rather than failing the whole read; a
// status page with partial data beats one with none. The result is
// sorted by timestamp.
func ParseEventLog(data []byte) ([]Observation, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var raw map[string]logEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	obs := make([]Observation, 0, len(raw))
	for key, e := range raw {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil || !e.Status.IsObservable() {
			continue
		}
		obs = append(obs, Observation{
			Timestamp: FloorMinute(ts),
			Status:    e.Status,
			Latency:   e.Latency,
		})
	}

	sort.Slice(obs, func(i, j int) bool {
		return obs[i].Timestamp < obs[j].Timestamp
	})

	return obs, nil
}

// WriteEventLog encodes observations in the event log file shape.
// Later entries for the same minute overwrite earlier ones.
func WriteEventLog(w io.Writer, obs []Observation) error {
	raw := make(map[string]logEntry, len(obs))
	for _, o := range obs {
		raw[strconv.FormatInt(o.Timestamp, 10)] = logEntry{
			Status:  o.Status,
			Latency: o.Latency,
		}
	}
	return json.NewEncoder(w).Encode(raw)
}
