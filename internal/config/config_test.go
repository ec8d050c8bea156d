package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInitPortalDirCreatesStructure(t *testing.T) {
	base := t.TempDir()
	if err := InitPortalDir(base); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, dir := range []string{"logs", "state"} {
		if fi, err := os.Stat(filepath.Join(base, PortalDir, dir)); err != nil || !fi.IsDir() {
			t.Fatalf("missing %s directory: %v", dir, err)
		}
	}
	data, err := os.ReadFile(filepath.Join(base, PortalDir, "config.yaml"))
	if err != nil {
		t.Fatalf("default config missing: %v", err)
	}
	if !strings.Contains(string(data), "source: demo") {
		t.Fatalf("default config does not start in demo mode:\n%s", data)
	}

	// A second init must leave an edited config alone.
	custom := []byte("version: 1\nserver:\n  source: demo\nsession:\n  role: head\n  user: head@example.com\n")
	path := filepath.Join(base, PortalDir, "config.yaml")
	if err := os.WriteFile(path, custom, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := InitPortalDir(base); err != nil {
		t.Fatalf("re-init: %v", err)
	}
	again, _ := os.ReadFile(path)
	if string(again) != string(custom) {
		t.Fatalf("re-init overwrote an existing config")
	}
}

func TestNewConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if !cfg.DemoMode() {
		t.Fatalf("missing config should default to demo mode")
	}
	if cfg.Role() != "applicant" {
		t.Fatalf("role = %q", cfg.Role())
	}
	if cfg.ItemsPerPage() != 10 {
		t.Fatalf("items per page = %d", cfg.ItemsPerPage())
	}
	if !strings.HasSuffix(cfg.LogbookPath(), filepath.Join(PortalDir, "logs", "portal.log")) {
		t.Fatalf("logbook path = %s", cfg.LogbookPath())
	}
}

func TestNewConfigReadsAndValidates(t *testing.T) {
	base := t.TempDir()
	if err := InitPortalDir(base); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(base, PortalDir, "config.yaml")

	good := "version: 1\nserver:\n  source: Frappe\n  url: https://admissions.example.edu/\nsession:\n  role: STAFF\n  user: staff@example.com\nui:\n  items_per_page: 25\n"
	if err := os.WriteFile(path, []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(base)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DemoMode() {
		t.Fatalf("frappe source reported as demo")
	}
	if cfg.ServerURL() != "https://admissions.example.edu" {
		t.Fatalf("url not normalized: %q", cfg.ServerURL())
	}
	if cfg.Role() != "staff" || cfg.User() != "staff@example.com" {
		t.Fatalf("session = %q/%q", cfg.Role(), cfg.User())
	}
	if cfg.ItemsPerPage() != 25 {
		t.Fatalf("items per page = %d", cfg.ItemsPerPage())
	}

	bad := []string{
		"server:\n  source: sqlite\n",
		"server:\n  source: frappe\n",                  // frappe without url
		"session:\n  role: admin\n",
		"session:\n  role: staff\n",                    // staff without user
		"ui:\n  items_per_page: -1\n",
	}
	for _, doc := range bad {
		if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewConfig(base); err == nil {
			t.Fatalf("config accepted invalid document:\n%s", doc)
		}
	}
}

func TestSetRolePersists(t *testing.T) {
	base := t.TempDir()
	if err := InitPortalDir(base); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(base)
	if err != nil {
		t.Fatal(err)
	}

	cfg.Portal.Session.User = "head@example.com"
	if err := cfg.SetRole("Head"); err != nil {
		t.Fatalf("set role: %v", err)
	}

	reloaded, err := NewConfig(base)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Role() != "head" || reloaded.User() != "head@example.com" {
		t.Fatalf("persisted session = %q/%q", reloaded.Role(), reloaded.User())
	}

	if err := cfg.SetRole("  "); err == nil {
		t.Fatalf("blank role must be rejected")
	}
}

func TestSecretsComeFromEnvironment(t *testing.T) {
	t.Setenv(EnvAPIKey, "abc123")
	t.Setenv(EnvAPISecret, "shh")

	cfg, err := NewConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIKey != "abc123" || cfg.APISecret != "shh" {
		t.Fatalf("secrets = %q/%q", cfg.APIKey, cfg.APISecret)
	}
}
