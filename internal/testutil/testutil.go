// Package testutil holds shared fixtures for package tests.
package testutil

import (
	"io"
	"testing"

	"github.com/rajnandan1/kener-sub002/internal/store"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// NewStore makes a store over a throwaway data dir.
func NewStore(t testing.TB) *store.Store {
	t.Helper()

	s, err := store.New(t.TempDir(), io.Discard)
	if err != nil {
		t.Fatalf("failed to create store: %s", err)
	}
	return s
}

// Monitor is a minimal monitor for store and aggregate tests.
func Monitor(tag string) api.Monitor {
	return api.Monitor{
		Tag:        tag,
		FolderName: tag,
	}
}

// Prepare makes the monitor's directory on the store, or fails the
// test.
func Prepare(t testing.TB, s *store.Store, m api.Monitor) {
	t.Helper()

	if err := s.Prepare(m); err != nil {
		t.Fatalf("failed to prepare monitor dir: %s", err)
	}
}
