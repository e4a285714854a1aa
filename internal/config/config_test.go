package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rajnandan1/kener-sub002/internal/config"
	api "github.com/rajnandan1/kener-sub002/lib-kener"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kener.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("failed to write config: %s", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		`monitors:`,
		`  - tag: api`,
		`  - tag: "Earth Observer"`,
		`    folderName: earth`,
		`    hidden: true`,
	}, "\n"))

	t.Setenv(config.EnvWebhookSecret, "s3cret")
	t.Setenv(config.EnvGitHubToken, "ghp_token")

	site, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}

	if site.Port != config.DefaultPort {
		t.Errorf("port is %d, want default %d", site.Port, config.DefaultPort)
	}
	if site.DataDir != "./data" {
		t.Errorf("dataDir is %q, want ./data", site.DataDir)
	}
	if site.IncidentSinceHours != config.DefaultIncidentSinceHours {
		t.Errorf("incidentSinceHours is %d, want %d", site.IncidentSinceHours, config.DefaultIncidentSinceHours)
	}
	if site.WebhookSecret != "s3cret" {
		t.Errorf("webhook secret not taken from environment: %q", site.WebhookSecret)
	}
	if site.GitHub.Token != "ghp_token" {
		t.Errorf("github token not taken from environment: %q", site.GitHub.Token)
	}

	m := site.Monitors[0]
	if m.FolderName != "api" {
		t.Errorf("folderName is %q, want api", m.FolderName)
	}
	if m.Path0Day != "/s/api/0day.utc.json" {
		t.Errorf("path0Day is %q", m.Path0Day)
	}
	if m.Path90Day != "/s/api/90day.utc.json" {
		t.Errorf("path90Day is %q", m.Path90Day)
	}

	if got := site.Monitors[1].FolderName; got != "earth" {
		t.Errorf("explicit folderName lost: %q", got)
	}
}

func TestLoad_derivesFolderName(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		`monitors:`,
		`  - tag: "My API (prod)"`,
	}, "\n"))

	site, err := config.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if got := site.Monitors[0].FolderName; got != "My-API--prod" {
		t.Errorf("derived folderName is %q", got)
	}
}

func TestLoad_collectsAllErrors(t *testing.T) {
	path := writeConfig(t, strings.Join([]string{
		`monitors:`,
		`  - tag: api`,
		`  - tag: api`,
		`  - tag: bad`,
		`    folderName: "../escape"`,
		`  - tag: probe`,
		`    api: {}`,
	}, "\n"))

	_, err := config.Load(path)
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, api.ErrValidation) {
		t.Fatalf("expected a validation error, got %v", err)
	}

	for _, want := range []string{
		`monitor "api": duplicate tag`,
		`monitor "bad": folderName must be a plain directory name`,
		`monitor "probe": api.url is required when api is set`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %q:\n%s", want, err)
		}
	}
}

func TestLoad_requiresAMonitor(t *testing.T) {
	path := writeConfig(t, "port: 8080\n")

	_, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "at least one monitor is required") {
		t.Errorf("expected a missing-monitor error, got %v", err)
	}
}

func TestLoad_missingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !errors.Is(err, api.ErrValidation) {
		t.Errorf("expected a validation error, got %v", err)
	}
}

func TestSite_ValidateForServing(t *testing.T) {
	t.Parallel()

	site := &config.Site{}
	err := site.ValidateForServing()
	if !errors.Is(err, api.ErrValidation) {
		t.Errorf("serving without a secret should be refused, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), config.EnvWebhookSecret) {
		t.Errorf("the error should name the missing variable, got %v", err)
	}

	site = &config.Site{AllowInsecureWebhooks: true}
	if err := site.ValidateForServing(); err != nil {
		t.Errorf("allowInsecureWebhooks should permit serving: %s", err)
	}

	site = &config.Site{WebhookSecret: "s3cret"}
	if err := site.ValidateForServing(); err != nil {
		t.Errorf("a configured secret should permit serving: %s", err)
	}
}

func TestMonitorByTag(t *testing.T) {
	site := &config.Site{Monitors: []api.Monitor{{Tag: "api"}}}

	if _, err := site.MonitorByTag("api"); err != nil {
		t.Errorf("unexpected error: %s", err)
	}

	_, err := site.MonitorByTag("nope")
	if !errors.Is(err, api.ErrNotFound) {
		t.Errorf("expected a not-found error, got %v", err)
	}
}
