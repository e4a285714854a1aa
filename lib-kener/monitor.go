package kener

// Monitor is the static configuration of one monitored component.
// It is loaded once at startup and read-only at request time.
type Monitor struct {
	// Tag identifies the monitor and labels its incidents in the
	// issue tracker.
	Tag string `yaml:"tag" json:"tag"`

	// FolderName is the directory under the data dir that holds the
	// monitor's event log, rollup, and pending fragments.
	FolderName string `yaml:"folderName" json:"folderName"`

	Category string `yaml:"category,omitempty" json:"category,omitempty"`
	Hidden   bool   `yaml:"hidden,omitempty" json:"hidden,omitempty"`

	// API enables active polling for this monitor. Nil means the
	// monitor is fed by webhooks only.
	API *APIConfig `yaml:"api,omitempty" json:"api,omitempty"`

	// DefaultStatus fills grid slots that have no observation when it
	// is an observable status. The zero value keeps NO_DATA.
	DefaultStatus Status `yaml:"defaultStatus,omitempty" json:"defaultStatus,omitempty"`

	// Path0Day and Path90Day are the public paths the rendered page
	// fetches the day grid and rollup from. They default to
	// /s/<folderName>/0day.utc.json and /s/<folderName>/90day.utc.json.
	Path0Day  string `yaml:"path0Day,omitempty" json:"path0Day,omitempty"`
	Path90Day string `yaml:"path90Day,omitempty" json:"path90Day,omitempty"`

	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Image       string `yaml:"image,omitempty" json:"image,omitempty"`
}

// APIConfig describes how the active checker polls a monitor.
type APIConfig struct {
	URL     string            `yaml:"url" json:"url"`
	Method  string            `yaml:"method,omitempty" json:"method,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`

	// TimeoutMs bounds one poll. Zero means the checker default.
	TimeoutMs int `yaml:"timeoutMs,omitempty" json:"timeoutMs,omitempty"`

	// Eval is a gojq expression over
	// {"status": httpStatus, "latency": ms, "body": decodedBody}
	// that yields {"status": "UP"|"DOWN"|"DEGRADED", "latency": n?}.
	// Empty means 2xx is UP and anything else is DOWN.
	Eval string `yaml:"eval,omitempty" json:"eval,omitempty"`

	// Interval is a cron spec for the poll schedule.
	// Empty means "@every 1m".
	Interval string `yaml:"interval,omitempty" json:"interval,omitempty"`
}

// Method returns the HTTP method to poll with.
func (a *APIConfig) HTTPMethod() string {
	if a.Method == "" {
		return "GET"
	}
	return a.Method
}
