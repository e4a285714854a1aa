// Package store is the durable home of per-monitor health data: the
// "today" event log, the compacted 90-day rollup, and the uniquely
// named fragment files the webhook writer drops for later compaction.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

const (
	todayLogName = "0day.utc.json"
	rollupName   = "90day.utc.json"

	// internalErrorLimit bounds the healthz error list.
	internalErrorLimit = 10
)

// RollupEntry is one pre-compacted day of the 90-day rollup file.
type RollupEntry struct {
	Up       int `json:"UP"`
	Degraded int `json:"DEGRADED"`
	Down     int `json:"DOWN"`
}

// Store reads and writes all monitor data below a single data dir.
//
// Fragment writes need no lock because every writer targets a unique
// file; the mutex only serializes compaction runs.
type Store struct {
	dataDir string

	Console io.Writer

	compactLock sync.Mutex

	// snapshotHook runs right after compaction snapshots the fragment
	// list; tests use it to interleave writes.
	snapshotHook func()

	errorsLock sync.RWMutex
	errors     []string
	healthy    bool
}

// New makes a Store rooted at dataDir, creating it if needed.
func New(dataDir string, console io.Writer) (*Store, error) {
	if console == nil {
		console = io.Discard
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, kenererr.New(api.ErrStorage, err, "failed to prepare data directory")
	}
	return &Store{
		dataDir: dataDir,
		Console: console,
		healthy: true,
	}, nil
}

// Path returns the data directory the store is rooted at.
func (s *Store) Path() string {
	return s.dataDir
}

func (s *Store) monitorDir(m api.Monitor) string {
	return filepath.Join(s.dataDir, m.FolderName)
}

// Prepare creates the monitor's directory. Call it once at startup for
// every configured monitor so later fragment writes cannot fail on a
// missing parent.
func (s *Store) Prepare(m api.Monitor) error {
	if err := os.MkdirAll(s.monitorDir(m), 0755); err != nil {
		return kenererr.New(api.ErrStorage, err, "failed to prepare store for %s", m.Tag)
	}
	return nil
}

// ReadTodayLog reads the monitor's merged minute-level event log.
// A missing file is an empty log, not an error.
func (s *Store) ReadTodayLog(m api.Monitor) ([]api.Observation, error) {
	data, err := os.ReadFile(filepath.Join(s.monitorDir(m), todayLogName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, kenererr.New(api.ErrStorage, err, "failed to read event log for %s", m.Tag)
	}

	obs, err := api.ParseEventLog(data)
	if err != nil {
		return nil, kenererr.New(api.ErrStorage, err, "corrupt event log for %s", m.Tag)
	}
	return obs, nil
}

// ReadRollup reads the monitor's pre-compacted daily rollup, keyed by
// UTC day start. A missing file is an empty rollup.
func (s *Store) ReadRollup(m api.Monitor) (map[int64]RollupEntry, error) {
	data, err := os.ReadFile(filepath.Join(s.monitorDir(m), rollupName))
	if os.IsNotExist(err) {
		return map[int64]RollupEntry{}, nil
	}
	if err != nil {
		return nil, kenererr.New(api.ErrStorage, err, "failed to read rollup for %s", m.Tag)
	}

	var raw map[string]RollupEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, kenererr.New(api.ErrStorage, err, "corrupt rollup for %s", m.Tag)
	}

	rollup := make(map[int64]RollupEntry, len(raw))
	for key, e := range raw {
		ts, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		rollup[ts] = e
	}
	return rollup, nil
}

// writeFileAtomic writes to path via a temp file and rename, so a
// concurrent reader never observes a half-written file.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (s *Store) writeTodayLog(m api.Monitor, obs []api.Observation) error {
	path := filepath.Join(s.monitorDir(m), todayLogName)
	err := writeFileAtomic(path, func(w io.Writer) error {
		return api.WriteEventLog(w, obs)
	})
	if err != nil {
		return kenererr.New(api.ErrStorage, err, "failed to write event log for %s", m.Tag)
	}
	return nil
}

func writeRollupFile(path string, rollup map[int64]RollupEntry) error {
	raw := make(map[string]RollupEntry, len(rollup))
	for ts, e := range rollup {
		raw[strconv.FormatInt(ts, 10)] = e
	}

	return writeFileAtomic(path, func(w io.Writer) error {
		return json.NewEncoder(w).Encode(raw)
	})
}

// ReportInternalError reports a non-fatal internal error. It is shown
// on the console and kept for the healthz endpoint.
func (s *Store) ReportInternalError(scope, message string) {
	s.errorsLock.Lock()
	defer s.errorsLock.Unlock()

	fmt.Fprintf(s.Console, "error: %s: %s\n", scope, message)

	s.healthy = false
	s.errors = append(s.errors, fmt.Sprintf("%s: %s", scope, message))
	if len(s.errors) > internalErrorLimit {
		s.errors = s.errors[1:]
	}
}

// Errors returns the health flag and the recent internal errors.
func (s *Store) Errors() (healthy bool, messages []string) {
	s.errorsLock.RLock()
	defer s.errorsLock.RUnlock()

	messages = make([]string, len(s.errors))
	copy(messages, s.errors)

	return s.healthy, messages
}
