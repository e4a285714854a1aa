package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

const fragmentPrefix = "webhook."

// fragmentEntry is the value shape of a fragment file, a JSON object
// with the minute timestamp as its only key.
type fragmentEntry struct {
	Status  api.Status `json:"status"`
	Latency float64    `json:"latency"`
	Type    string     `json:"type"`
}

// WriteFragment durably records one observation as a new, uniquely
// named file in the monitor's directory.
//
// Uniqueness of the name is the whole concurrency story: no two
// writers ever touch the same file, so no locking is needed. The file
// appears under its final name only after a rename, so a concurrent
// compaction never consumes a half-written fragment.
func (s *Store) WriteFragment(m api.Monitor, obs api.Observation) (string, error) {
	name := fmt.Sprintf("%s%d.%s.json", fragmentPrefix, obs.Timestamp, uuid.NewString())
	path := filepath.Join(s.monitorDir(m), name)

	raw := map[string]fragmentEntry{
		fmt.Sprintf("%d", obs.Timestamp): {
			Status:  obs.Status,
			Latency: obs.Latency,
			Type:    "webhook",
		},
	}

	err := writeFileAtomic(path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(raw)
	})
	if err != nil {
		return "", kenererr.New(api.ErrStorage, err, "failed to write observation for %s", m.Tag)
	}

	return path, nil
}

// listFragments snapshots the monitor's pending fragment files.
// Compaction consumes only the files returned here, so fragments
// written afterwards survive untouched.
func (s *Store) listFragments(m api.Monitor) ([]string, error) {
	entries, err := os.ReadDir(s.monitorDir(m))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, kenererr.New(api.ErrStorage, err, "failed to list fragments for %s", m.Tag)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.Type().IsRegular() && strings.HasPrefix(name, fragmentPrefix) && strings.HasSuffix(name, ".json") {
			paths = append(paths, filepath.Join(s.monitorDir(m), name))
		}
	}
	return paths, nil
}

// readFragment reads one fragment file. Corrupt fragments return an
// empty slice so a single bad write cannot wedge compaction.
func readFragment(path string) []api.Observation {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var raw map[string]fragmentEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	var obs []api.Observation
	for key, e := range raw {
		var ts int64
		if _, err := fmt.Sscanf(key, "%d", &ts); err != nil || !e.Status.IsObservable() {
			continue
		}
		obs = append(obs, api.Observation{
			Timestamp: api.FloorMinute(ts),
			Status:    e.Status,
			Latency:   e.Latency,
		})
	}
	return obs
}
