package store

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

const daySeconds = 86400

// rollupRetentionDays keeps a margin past the 90-day window so a
// viewer-local "90 days ago" boundary never falls off the rollup.
const rollupRetentionDays = 92

// stagePattern matches a staged rollup waiting to be committed, with
// the cutoff it was computed for embedded in the name.
var stagePattern = regexp.MustCompile(
	"^" + regexp.QuoteMeta(rollupName) + `\.(\d+)\.stage$`)

func floorDay(sec int64) int64 {
	return sec - sec%daySeconds
}

// Compact merges the monitor's pending fragment files into the event
// log, rolls entries older than the previous UTC day into the 90-day
// rollup, and prunes rollup days outside the retention window.
//
// The log keeps at least a full 24 hours before "now", which covers
// "today" for a viewer in any timezone.
//
// The rollup update is staged so that a crash mid-run never counts a
// minute twice: the merged rollup is written under a staged name
// first, then the trimmed log is renamed into place, the consumed
// fragments are deleted, and only then the staged rollup replaces the
// live one. A later run that finds a leftover staged file adopts it
// and skips the minutes it had already counted.
func (s *Store) Compact(m api.Monitor, now time.Time) error {
	s.compactLock.Lock()
	defer s.compactLock.Unlock()

	rolledThrough, err := s.adoptStagedRollup(m)
	if err != nil {
		return err
	}

	fragments, err := s.listFragments(m)
	if err != nil {
		return err
	}
	if s.snapshotHook != nil {
		s.snapshotHook()
	}

	obs, err := s.ReadTodayLog(m)
	if err != nil {
		return err
	}

	merged := make(map[int64]api.Observation, len(obs)+len(fragments))
	for _, o := range obs {
		merged[o.Timestamp] = o
	}
	for _, path := range fragments {
		for _, o := range readFragment(path) {
			merged[o.Timestamp] = o
		}
	}

	cutoff := floorDay(now.Unix()) - daySeconds
	horizon := floorDay(now.Unix()) - rollupRetentionDays*daySeconds

	var keep []api.Observation
	var aged []api.Observation
	for _, o := range merged {
		if o.Timestamp < cutoff {
			aged = append(aged, o)
		} else {
			keep = append(keep, o)
		}
	}

	var stagePath string
	if len(aged) > 0 {
		rollup, err := s.ReadRollup(m)
		if err != nil {
			return err
		}

		for _, o := range aged {
			// Minutes below rolledThrough are already in the adopted
			// rollup from the interrupted run.
			if o.Timestamp < horizon || o.Timestamp < rolledThrough {
				continue
			}
			day := floorDay(o.Timestamp)
			e := rollup[day]
			switch o.Status {
			case api.StatusUp:
				e.Up++
			case api.StatusDegraded:
				e.Degraded++
			case api.StatusDown:
				e.Down++
			}
			rollup[day] = e
		}

		for day := range rollup {
			if day < horizon {
				delete(rollup, day)
			}
		}

		stagePath = filepath.Join(s.monitorDir(m),
			fmt.Sprintf("%s.%d.stage", rollupName, cutoff))
		if err := writeRollupFile(stagePath, rollup); err != nil {
			return kenererr.New(api.ErrStorage, err, "failed to stage rollup for %s", m.Tag)
		}
	}

	if err := s.writeTodayLog(m, keep); err != nil {
		return err
	}

	for _, path := range fragments {
		os.Remove(path)
	}

	if stagePath != "" {
		if err := os.Rename(stagePath, filepath.Join(s.monitorDir(m), rollupName)); err != nil {
			return kenererr.New(api.ErrStorage, err, "failed to commit rollup for %s", m.Tag)
		}
	}

	return nil
}

// adoptStagedRollup finishes an interrupted compaction: a staged
// rollup already holds every minute the interrupted run aged out, so
// it becomes the live rollup, and its cutoff is returned so the
// caller can skip those minutes.
func (s *Store) adoptStagedRollup(m api.Monitor) (rolledThrough int64, err error) {
	entries, err := os.ReadDir(s.monitorDir(m))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, kenererr.New(api.ErrStorage, err, "failed to list store for %s", m.Tag)
	}

	for _, e := range entries {
		match := stagePattern.FindStringSubmatch(e.Name())
		if match == nil {
			continue
		}
		cutoff, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}

		staged := filepath.Join(s.monitorDir(m), e.Name())
		if err := os.Rename(staged, filepath.Join(s.monitorDir(m), rollupName)); err != nil {
			return 0, kenererr.New(api.ErrStorage, err, "failed to recover rollup for %s", m.Tag)
		}
		return cutoff, nil
	}

	return 0, nil
}

// CompactAll compacts every monitor, reporting failures instead of
// stopping, so one bad monitor directory cannot stall the rest.
func (s *Store) CompactAll(monitors []api.Monitor, now time.Time) {
	for _, m := range monitors {
		if err := s.Compact(m, now); err != nil {
			s.ReportInternalError("store:compact", err.Error())
		}
	}
}
