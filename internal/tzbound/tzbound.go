// Package tzbound computes viewer-local day boundaries for the
// aggregation windows.
package tzbound

import (
	"strconv"
	"time"

	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

// LookbackDays is the length of the rolling daily summary.
const LookbackDays = 90

const daySeconds = 86400

// DayBounds are the aggregation window boundaries as UTC epoch seconds.
//
// NinetyDaysAgoStart is always exactly LookbackDays*86400 seconds
// before TodayStart, so the daily grid steps by fixed-length days even
// when a DST transition falls inside the window.
type DayBounds struct {
	TodayStart         int64
	NinetyDaysAgoStart int64
	TomorrowStart      int64
}

func boundsFrom(todayStart int64) DayBounds {
	return DayBounds{
		TodayStart:         todayStart,
		NinetyDaysAgoStart: todayStart - LookbackDays*daySeconds,
		TomorrowStart:      todayStart + daySeconds,
	}
}

// Bounds computes the day boundaries for a viewer in the given IANA
// location. This is the canonical, DST-correct strategy.
func Bounds(now time.Time, loc *time.Location) DayBounds {
	local := now.In(loc)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return boundsFrom(midnight.Unix())
}

// BoundsOffset computes the day boundaries from a raw minute offset
// east of UTC, as captured once by a legacy client.
//
// Known limitation: a fixed offset cannot follow daylight saving
// transitions, so for DST-observing viewers the boundary drifts by an
// hour for part of the year. Use Bounds with an IANA location instead
// wherever the zone name is available.
func BoundsOffset(now time.Time, offsetMinutes int) DayBounds {
	off := int64(offsetMinutes) * 60
	shifted := now.Unix() + off
	floored := shifted - mod(shifted, daySeconds)
	return boundsFrom(floored - off)
}

// mod is a floored modulo so that pre-1970 timestamps still bucket
// correctly.
func mod(a, n int64) int64 {
	m := a % n
	if m < 0 {
		m += n
	}
	return m
}

// Resolve interprets a timezone descriptor from a request: an IANA
// zone name like "Asia/Kolkata", a signed minute offset like "330" or
// "-480", or empty for UTC.
func Resolve(now time.Time, descriptor string) (DayBounds, error) {
	if descriptor == "" {
		return Bounds(now, time.UTC), nil
	}

	if offset, err := strconv.Atoi(descriptor); err == nil {
		if offset < -14*60 || offset > 14*60 {
			return DayBounds{}, kenererr.New(api.ErrValidation, nil, "timezone offset out of range: %d", offset)
		}
		return BoundsOffset(now, offset), nil
	}

	loc, err := time.LoadLocation(descriptor)
	if err != nil {
		return DayBounds{}, kenererr.New(api.ErrValidation, err, "unknown timezone %q", descriptor)
	}
	return Bounds(now, loc), nil
}
