package checker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/checker"
	"github.com/rajnandan1/kener-sub002/internal/ingest"
	"github.com/rajnandan1/kener-sub002/internal/testutil"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

func newWriter(t *testing.T, monitors []api.Monitor) *ingest.Writer {
	t.Helper()

	s := testutil.NewStore(t)
	for _, m := range monitors {
		testutil.Prepare(t, s, m)
	}

	w := ingest.NewWriter(s, monitors)
	w.Now = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return w
}

func apiMonitor(tag, url, eval string) api.Monitor {
	m := testutil.Monitor(tag)
	m.API = &api.APIConfig{URL: url, Eval: eval}
	return m
}

func lastStatus(t *testing.T, w *ingest.Writer, m api.Monitor) api.Status {
	t.Helper()

	if err := w.Store.Compact(m, time.Unix(1700000000, 0).UTC()); err != nil {
		t.Fatalf("failed to compact: %s", err)
	}
	obs, err := w.Store.ReadTodayLog(m)
	if err != nil {
		t.Fatalf("failed to read log: %s", err)
	}
	if len(obs) == 0 {
		t.Fatal("no observation was recorded")
	}
	return obs[len(obs)-1].Status
}

func TestChecker_statusCodeOnly(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := apiMonitor("api", srv.URL, "")
	w := newWriter(t, []api.Monitor{m})

	c, err := checker.New(w, []api.Monitor{m})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := c.Check(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got := lastStatus(t, w, m); got != api.StatusUp {
		t.Errorf("recorded %s, want UP", got)
	}
}

func TestChecker_serverErrorIsDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	m := apiMonitor("api", srv.URL, "")
	w := newWriter(t, []api.Monitor{m})

	c, err := checker.New(w, []api.Monitor{m})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := c.Check(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got := lastStatus(t, w, m); got != api.StatusDown {
		t.Errorf("recorded %s, want DOWN", got)
	}
}

func TestChecker_unreachableHostIsDown(t *testing.T) {
	t.Parallel()

	m := apiMonitor("api", "http://127.0.0.1:1", "")
	w := newWriter(t, []api.Monitor{m})

	c, err := checker.New(w, []api.Monitor{m})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := c.Check(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got := lastStatus(t, w, m); got != api.StatusDown {
		t.Errorf("recorded %s, want DOWN", got)
	}
}

func TestChecker_evalExpression(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"state": "degraded"}`))
	}))
	defer srv.Close()

	eval := `if .body.state == "degraded" then {status: "DEGRADED"} else {status: "UP"} end`
	m := apiMonitor("api", srv.URL, eval)
	w := newWriter(t, []api.Monitor{m})

	c, err := checker.New(w, []api.Monitor{m})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := c.Check(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got := lastStatus(t, w, m); got != api.StatusDegraded {
		t.Errorf("recorded %s, want DEGRADED", got)
	}
}

func TestChecker_evalReturningGarbageIsDown(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	m := apiMonitor("api", srv.URL, `"not an object"`)
	w := newWriter(t, []api.Monitor{m})

	c, err := checker.New(w, []api.Monitor{m})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := c.Check(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if got := lastStatus(t, w, m); got != api.StatusDown {
		t.Errorf("recorded %s, want DOWN", got)
	}
}

func TestChecker_rejectsBrokenEval(t *testing.T) {
	t.Parallel()

	m := apiMonitor("api", "http://example.test", "this is not jq ((")
	w := newWriter(t, []api.Monitor{m})

	if _, err := checker.New(w, []api.Monitor{m}); err == nil {
		t.Error("a broken eval expression should be rejected at construction")
	}
}

func TestChecker_skipsMonitorsWithoutAPI(t *testing.T) {
	t.Parallel()

	m := testutil.Monitor("passive")
	w := newWriter(t, []api.Monitor{m})

	c, err := checker.New(w, []api.Monitor{m})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if err := c.Check(context.Background(), m); err != nil {
		t.Errorf("a monitor without an api block should be a no-op, got %v", err)
	}
}
