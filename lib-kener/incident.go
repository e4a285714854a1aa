package kener

// Incident is an issue-tracker record reshaped for the status page.
type Incident struct {
	Number int    `json:"number"`
	Title  string `json:"title"`

	// Body is the issue body rendered to HTML, with the
	// start/end_datetime markers stripped out.
	Body string `json:"body"`

	Labels []string `json:"labels"`
	State  string   `json:"state"`

	// IncidentStartTime is recovered from a [start_datetime:N] marker
	// in the issue body, falling back to the issue creation time.
	IncidentStartTime int64 `json:"incidentStartTime"`

	// IncidentEndTime is recovered from an [end_datetime:N] marker,
	// falling back to the issue close time. Nil while the incident is
	// still open.
	IncidentEndTime *int64 `json:"incidentEndTime"`

	// Priority is StatusDown or StatusDegraded when the issue carries
	// an incident-down or incident-degraded label, StatusNoData
	// otherwise.
	Priority Status `json:"priority"`

	// Independent state flags; not mutually exclusive with Priority
	// or with each other.
	Identified  bool `json:"identified"`
	Resolved    bool `json:"resolved"`
	Maintenance bool `json:"maintenance"`

	// DurationMessage is empty unless a positive duration is known,
	// e.g. "Was DOWN for 12 minutes" or "Has been DOWN for 12 minutes".
	DurationMessage string `json:"durationMessage,omitempty"`

	Comments []IncidentComment `json:"comments"`
}

// IncidentComment is one issue comment rendered for display.
type IncidentComment struct {
	// Body is the comment body rendered to HTML.
	Body string `json:"body"`

	CreatedAt int64 `json:"createdAt"`

	// RelativeTime is a human phrase like "3 hours ago".
	RelativeTime string `json:"relativeTime"`
}

// IncidentSet is the correlator output for one monitor.
type IncidentSet struct {
	Active []Incident `json:"active"`
	Past   []Incident `json:"past"`
}
