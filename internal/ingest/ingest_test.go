package ingest_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/ingest"
	"github.com/rajnandan1/kener-sub002/internal/testutil"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

func newWriter(t *testing.T, now time.Time) *ingest.Writer {
	t.Helper()

	s := testutil.NewStore(t)
	m := testutil.Monitor("api")
	testutil.Prepare(t, s, m)

	w := ingest.NewWriter(s, []api.Monitor{m})
	w.Now = func() time.Time { return now }
	return w
}

func TestWriter_Ingest_validation(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()

	tests := []struct {
		Name    string
		Payload ingest.Payload
		Message string
	}{
		{
			"missing status",
			ingest.Payload{Tag: "api", Latency: 10.0},
			"status missing",
		},
		{
			"unknown status",
			ingest.Payload{Tag: "api", Status: "FINE", Latency: 10.0},
			"status missing",
		},
		{
			"missing latency",
			ingest.Payload{Tag: "api", Status: "UP"},
			"latency missing or not a number",
		},
		{
			"latency wrong type",
			ingest.Payload{Tag: "api", Status: "UP", Latency: "fast"},
			"latency missing or not a number",
		},
		{
			"timestamp wrong type",
			ingest.Payload{Tag: "api", Status: "UP", Latency: 10.0, TimestampInSeconds: "yesterday"},
			"timestampInSeconds is not a number",
		},
		{
			"timestamp in future",
			ingest.Payload{Tag: "api", Status: "UP", Latency: 10.0, TimestampInSeconds: float64(now.Unix() + 300)},
			"timestampInSeconds is in future",
		},
		{
			"timestamp too old",
			ingest.Payload{Tag: "api", Status: "UP", Latency: 10.0, TimestampInSeconds: float64(now.Unix() - 91*86400)},
			"timestampInSeconds is older than 90days",
		},
		{
			"unknown tag",
			ingest.Payload{Tag: "nope", Status: "UP", Latency: 10.0},
			"invalid tag",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			t.Parallel()

			w := newWriter(t, now)

			_, err := w.Ingest(tt.Payload)
			if !errors.Is(err, api.ErrValidation) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.Message) {
				t.Errorf("error %q does not contain %q", err, tt.Message)
			}
		})
	}
}

func TestWriter_Ingest_unknownTagIndependentOfPayload(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	w := newWriter(t, now)

	// A perfectly valid payload still fails on the tag.
	_, err := w.Ingest(ingest.Payload{
		Tag:                "nope",
		Status:             "UP",
		Latency:            5.0,
		TimestampInSeconds: float64(now.Unix() - 60),
	})
	if err == nil || !strings.Contains(err.Error(), "invalid tag") {
		t.Errorf("expected an invalid tag error, got %v", err)
	}
}

func TestWriter_Ingest_floorsToMinute(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	w := newWriter(t, now)

	minute, err := w.Ingest(ingest.Payload{
		Tag:                "api",
		Status:             "DOWN",
		Latency:            0.0,
		TimestampInSeconds: float64(1699999997),
	})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if minute != 1699999980 {
		t.Errorf("stored at %d, want 1699999980", minute)
	}
}

func TestWriter_Ingest_defaultsToNow(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	w := newWriter(t, now)

	minute, err := w.Ingest(ingest.Payload{Tag: "api", Status: "UP", Latency: 8.0})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if want := api.FloorMinute(now.Unix()); minute != want {
		t.Errorf("stored at %d, want %d", minute, want)
	}
}

func TestWriter_Ingest_clockSkewGrace(t *testing.T) {
	t.Parallel()

	now := time.Unix(1700000000, 0).UTC()
	w := newWriter(t, now)

	// One minute ahead is tolerated; the floored minute may sit just
	// past now.
	if _, err := w.Ingest(ingest.Payload{
		Tag:                "api",
		Status:             "UP",
		Latency:            1.0,
		TimestampInSeconds: float64(now.Unix() + 59),
	}); err != nil {
		t.Errorf("59s of skew should be accepted, got %v", err)
	}
}
