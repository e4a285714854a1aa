// Package config loads the site configuration file and the secrets
// that come from the environment.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rajnandan1/kener-sub002/internal/incident"
	"github.com/rajnandan1/kener-sub002/internal/kenererr"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

const (
	DefaultPort               = 3000
	DefaultIncidentSinceHours = 720
)

// Env var names for the secrets that never live in the YAML file.
const (
	EnvWebhookSecret = "KENER_SECRET"
	EnvGitHubToken   = "GH_TOKEN"
)

// Site is the full static configuration, loaded once at startup and
// passed around by reference after that.
type Site struct {
	// DataDir is where per-monitor event data lives.
	DataDir string `yaml:"dataDir"`

	Port int `yaml:"port"`

	// IncidentSinceHours bounds which tracker incidents count as
	// recent.
	IncidentSinceHours int `yaml:"incidentSinceHours"`

	// AllowedIPs optionally restricts webhook sources. Empty allows
	// any source that presents the bearer token.
	AllowedIPs []string `yaml:"allowedIPs"`

	GitHub incident.GitHubConfig `yaml:"github"`

	Monitors []api.Monitor `yaml:"monitors"`

	// WebhookSecret is the bearer token webhook callers must present.
	// Comes from KENER_SECRET, never from the file.
	WebhookSecret string `yaml:"-"`

	// AllowInsecureWebhooks lets the server start without a webhook
	// secret, for local development or a private network.
	AllowInsecureWebhooks bool `yaml:"allowInsecureWebhooks"`
}

// Load reads and validates the site configuration. All problems are
// collected and reported together, not one by one.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kenererr.New(api.ErrValidation, err, "failed to read configuration")
	}

	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, kenererr.New(api.ErrValidation, err, "failed to parse configuration")
	}

	site.WebhookSecret = os.Getenv(EnvWebhookSecret)
	site.GitHub.Token = os.Getenv(EnvGitHubToken)

	if err := site.normalize(); err != nil {
		return nil, err
	}
	return &site, nil
}

func (s *Site) normalize() error {
	errs := &kenererr.ListBuilder{What: api.ErrValidation}

	if s.DataDir == "" {
		s.DataDir = "./data"
	}
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.IncidentSinceHours == 0 {
		s.IncidentSinceHours = DefaultIncidentSinceHours
	}

	if len(s.Monitors) == 0 {
		errs.Pushf("at least one monitor is required")
	}

	seen := make(map[string]bool)
	for i := range s.Monitors {
		m := &s.Monitors[i]

		if m.Tag == "" {
			errs.Pushf("monitor #%d: tag is required", i+1)
			continue
		}
		if seen[m.Tag] {
			errs.Pushf("monitor %q: duplicate tag", m.Tag)
		}
		seen[m.Tag] = true

		if m.FolderName == "" {
			m.FolderName = folderName(m.Tag)
		}
		if strings.ContainsAny(m.FolderName, `/\.`) {
			errs.Pushf("monitor %q: folderName must be a plain directory name", m.Tag)
		}

		if m.Path0Day == "" {
			m.Path0Day = fmt.Sprintf("/s/%s/0day.utc.json", m.FolderName)
		}
		if m.Path90Day == "" {
			m.Path90Day = fmt.Sprintf("/s/%s/90day.utc.json", m.FolderName)
		}

		if m.API != nil && m.API.URL == "" {
			errs.Pushf("monitor %q: api.url is required when api is set", m.Tag)
		}
	}

	return errs.Build()
}

// folderName derives a safe directory name from a monitor tag.
func folderName(tag string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, tag)
	return strings.Trim(mapped, "-")
}

// ValidateForServing rejects a configuration that would expose the
// webhook routes with no authentication at all. Loading stays legal
// for offline commands like conv; only serving requires this check.
func (s *Site) ValidateForServing() error {
	if s.WebhookSecret == "" && !s.AllowInsecureWebhooks {
		return kenererr.New(api.ErrValidation, nil,
			"%s is not set; set it, or set allowInsecureWebhooks: true to serve without webhook auth",
			EnvWebhookSecret)
	}
	return nil
}

// MonitorByTag finds a monitor, or reports which tag was unknown.
func (s *Site) MonitorByTag(tag string) (api.Monitor, error) {
	for _, m := range s.Monitors {
		if m.Tag == tag {
			return m, nil
		}
	}
	return api.Monitor{}, kenererr.New(api.ErrNotFound, nil, "unknown monitor %q", tag)
}
