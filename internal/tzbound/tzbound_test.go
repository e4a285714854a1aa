package tzbound_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/tzbound"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

func TestBounds_utc(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

	b := tzbound.Bounds(now, time.UTC)

	wantToday := time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC).Unix()
	if b.TodayStart != wantToday {
		t.Errorf("TodayStart = %d, want %d", b.TodayStart, wantToday)
	}
	if b.TomorrowStart != wantToday+86400 {
		t.Errorf("TomorrowStart = %d, want %d", b.TomorrowStart, wantToday+86400)
	}
	if b.NinetyDaysAgoStart != wantToday-90*86400 {
		t.Errorf("NinetyDaysAgoStart = %d, want %d", b.NinetyDaysAgoStart, wantToday-90*86400)
	}
}

func TestBounds_fixedZone(t *testing.T) {
	t.Parallel()

	// 22:13 UTC is already the next day at UTC+5:30.
	now := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)
	kolkata := time.FixedZone("IST", 5*3600+30*60)

	b := tzbound.Bounds(now, kolkata)

	wantToday := time.Date(2023, 11, 15, 0, 0, 0, 0, kolkata).Unix()
	if b.TodayStart != wantToday {
		t.Errorf("TodayStart = %d, want %d", b.TodayStart, wantToday)
	}
}

func TestBoundsOffset_matchesFixedZone(t *testing.T) {
	t.Parallel()

	// For a zone without DST the two strategies must agree.
	for _, offsetMinutes := range []int{0, 330, -480, 840, -720} {
		now := time.Date(2023, 6, 1, 3, 4, 5, 0, time.UTC)
		zone := time.FixedZone("test", offsetMinutes*60)

		byZone := tzbound.Bounds(now, zone)
		byOffset := tzbound.BoundsOffset(now, offsetMinutes)

		if byZone != byOffset {
			t.Errorf("offset %d: Bounds = %+v, BoundsOffset = %+v", offsetMinutes, byZone, byOffset)
		}
	}
}

func TestBounds_windowSize(t *testing.T) {
	t.Parallel()

	b := tzbound.Bounds(time.Now(), time.UTC)

	if got := (b.TomorrowStart - b.NinetyDaysAgoStart) / 86400; got != 91 {
		t.Errorf("window covers %d days, want 91", got)
	}
}

func TestBounds_dst(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata not available: %s", err)
	}

	// The day after the 2023 spring-forward transition.
	now := time.Date(2023, 3, 13, 12, 0, 0, 0, time.UTC)

	b := tzbound.Bounds(now, loc)

	want := time.Date(2023, 3, 13, 0, 0, 0, 0, loc).Unix()
	if b.TodayStart != want {
		t.Errorf("TodayStart = %d, want %d", b.TodayStart, want)
	}
}

func TestResolve(t *testing.T) {
	t.Parallel()

	now := time.Date(2023, 11, 14, 22, 13, 20, 0, time.UTC)

	t.Run("empty is UTC", func(t *testing.T) {
		b, err := tzbound.Resolve(now, "")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if want := tzbound.Bounds(now, time.UTC); b != want {
			t.Errorf("got %+v, want %+v", b, want)
		}
	})

	t.Run("minute offset", func(t *testing.T) {
		b, err := tzbound.Resolve(now, "330")
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if want := tzbound.BoundsOffset(now, 330); b != want {
			t.Errorf("got %+v, want %+v", b, want)
		}
	})

	t.Run("offset out of range", func(t *testing.T) {
		if _, err := tzbound.Resolve(now, "100000"); !errors.Is(err, api.ErrValidation) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})

	t.Run("unknown zone name", func(t *testing.T) {
		if _, err := tzbound.Resolve(now, "Not/AZone"); !errors.Is(err, api.ErrValidation) {
			t.Errorf("expected a validation error, got %v", err)
		}
	})
}
