package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultValues(t *testing.T) {
	cfg := Default()
	if cfg.ProbeTimeout() != 3*time.Second {
		t.Fatalf("probe timeout = %v, want 3s", cfg.ProbeTimeout())
	}
	if cfg.TickInterval() != time.Second {
		t.Fatalf("tick interval = %v, want 1s", cfg.TickInterval())
	}
	if cfg.CampaignDuration() != 5*time.Minute {
		t.Fatalf("duration = %v, want 5m", cfg.CampaignDuration())
	}
}

func TestLoadOverridesAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netverdict.yaml")
	content := "probe:\n  timeout_sec: 1.5\ncampaign:\n  region: Singapore\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProbeTimeout() != 1500*time.Millisecond {
		t.Fatalf("timeout = %v, want 1.5s", cfg.ProbeTimeout())
	}
	if cfg.Campaign.Region != "Singapore" {
		t.Fatalf("region = %q", cfg.Campaign.Region)
	}
	// unset values fall back to defaults
	if cfg.TickInterval() != time.Second {
		t.Fatalf("tick interval = %v, want default 1s", cfg.TickInterval())
	}
	if cfg.Output.Dir != "." {
		t.Fatalf("output dir = %q, want default", cfg.Output.Dir)
	}
}

func TestLoadRejectsUnknownRegion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netverdict.yaml")
	if err := os.WriteFile(path, []byte("campaign:\n  region: Atlantis\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown region")
	}
}

func TestLoadServiceSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netverdict.yaml")
	if err := os.WriteFile(path, []byte("campaign:\n  service: Cloudflare\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Campaign.Service != "Cloudflare" {
		t.Fatalf("service = %q", cfg.Campaign.Service)
	}

	if err := os.WriteFile(path, []byte("campaign:\n  service: MySpace\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown service")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netverdict.yaml")
	if err := os.WriteFile(path, []byte("probe: ["), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestLoadFromEnvMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(envConfigPath, filepath.Join(t.TempDir(), "absent.yaml"))
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	if cfg.ProbeTimeout() != 3*time.Second {
		t.Fatalf("expected default config, got %+v", cfg)
	}
}
