package kener

const (
	// StatusNoData means there is no observation for the minute or day.
	// It is never stored in the event log; it only appears in derived
	// grids and buckets.
	StatusNoData Status = iota

	// StatusUp means the monitor answered and was healthy.
	StatusUp

	// StatusDegraded means the monitor answered but slower or weaker
	// than expected. Degraded minutes count as available for uptime
	// math, but are shown distinctly.
	StatusDegraded

	// StatusDown means the monitor was unavailable.
	StatusDown
)

// Status is the health of a monitor at one minute, or the worst health
// of a day bucket.
type Status int8

// ParseStatus parses a status string from the event log or a webhook
// payload.
//
// It returns StatusNoData for anything that is not UP, DEGRADED, or
// DOWN.
func ParseStatus(raw string) Status {
	switch raw {
	case "UP":
		return StatusUp
	case "DEGRADED":
		return StatusDegraded
	case "DOWN":
		return StatusDown
	default:
		return StatusNoData
	}
}

// String makes Status a string.
func (s Status) String() string {
	switch s {
	case StatusUp:
		return "UP"
	case StatusDegraded:
		return "DEGRADED"
	case StatusDown:
		return "DOWN"
	default:
		return "NO_DATA"
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// This function always returns nil. Unsupported values parse as
// StatusNoData instead of raising an error, so one bad entry never
// poisons a whole log file.
func (s *Status) UnmarshalText(text []byte) error {
	*s = ParseStatus(string(text))
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsObservable reports whether the status is one a health check can
// actually report, as opposed to the derived NO_DATA.
func (s Status) IsObservable() bool {
	return s == StatusUp || s == StatusDegraded || s == StatusDown
}
