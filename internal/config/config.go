// internal/config/config.go
//
// This package handles configuration and the .portal directory structure.
// Every machine the portal runs on gets a .portal/ folder created under the
// user's home (or an explicit base directory).

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// PortalDir is the name of the directory we create for logs and state.
	PortalDir = ".portal"

	defaultRole     = "applicant"
	defaultPageSize = 10

	// Environment variables carrying the API token pair. They are read
	// from the process environment, with .env as a fallback.
	EnvAPIKey    = "PORTAL_API_KEY"
	EnvAPISecret = "PORTAL_API_SECRET"
)

const defaultPortalConfigYAML = `# admissions portal configuration
version: 1

# Where applications are stored. Use source: frappe with a site URL, or
# source: demo to run against seeded in-memory data.
server:
  source: demo
  # source: frappe
  # url: https://admissions.example.edu

session:
  # applicant, staff or head
  role: applicant
  # user: staff@example.com

ui:
  items_per_page: 10
`

// ServerConfig declares where the collaborator connects.
type ServerConfig struct {
	Source string `yaml:"source"`
	URL    string `yaml:"url,omitempty"`
}

// SessionConfig captures who is using the portal.
type SessionConfig struct {
	Role string `yaml:"role"`
	User string `yaml:"user,omitempty"`
}

// UIConfig captures presentation preferences.
type UIConfig struct {
	ItemsPerPage int `yaml:"items_per_page"`
}

// PortalConfig models .portal/config.yaml.
type PortalConfig struct {
	Version int           `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	UI      UIConfig      `yaml:"ui"`
}

// Config holds the runtime configuration for the portal.
type Config struct {
	// BaseDir is where .portal/ lives, normally the user's home directory.
	BaseDir string

	// PortalHome is BaseDir/.portal.
	PortalHome string

	Portal PortalConfig

	// APIKey and APISecret authenticate against a live site. Empty in
	// demo mode.
	APIKey    string
	APISecret string
}

// InitPortalDir creates the .portal directory structure.
//
// Structure created:
// .portal/
// ├── logs/    <- Session logbooks
// └── state/   <- Draft applications and other persisted state
func InitPortalDir(baseDir string) error {
	portalHome := filepath.Join(baseDir, PortalDir)

	dirs := []string{
		filepath.Join(portalHome, "logs"),
		filepath.Join(portalHome, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	return ensurePortalConfig(filepath.Join(portalHome, "config.yaml"))
}

// NewConfig loads the portal configuration rooted at baseDir. Secrets come
// from the environment, falling back to a .env file beside the binary.
func NewConfig(baseDir string) (*Config, error) {
	cfg := &Config{
		BaseDir:    baseDir,
		PortalHome: filepath.Join(baseDir, PortalDir),
		Portal:     defaultPortalConfig(),
	}

	if err := cfg.loadPortalConfig(); err != nil {
		return nil, err
	}

	// Missing .env is fine; the variables may be exported directly.
	_ = godotenv.Load()
	cfg.APIKey = os.Getenv(EnvAPIKey)
	cfg.APISecret = os.Getenv(EnvAPISecret)

	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.PortalHome, "logs")
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.PortalHome, "state")
}

// LogbookPath returns the session logbook file.
func (c *Config) LogbookPath() string {
	return filepath.Join(c.LogsDir(), "portal.log")
}

// PortalConfigPath returns the on-disk location for the config file.
func (c *Config) PortalConfigPath() string {
	return filepath.Join(c.PortalHome, "config.yaml")
}

// DemoMode reports whether the portal runs against seeded in-memory data.
func (c *Config) DemoMode() bool {
	return c.Portal.Server.Source != "frappe"
}

// ServerURL returns the configured site URL.
func (c *Config) ServerURL() string {
	return c.Portal.Server.URL
}

// Role returns the configured session role.
func (c *Config) Role() string {
	return c.Portal.Session.Role
}

// User returns the configured session user email.
func (c *Config) User() string {
	return c.Portal.Session.User
}

// ItemsPerPage returns the dashboard table page length.
func (c *Config) ItemsPerPage() int {
	return c.Portal.UI.ItemsPerPage
}

// SetRole updates the session role and persists it back to
// .portal/config.yaml so the next launch starts on the same console.
func (c *Config) SetRole(role string) error {
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return fmt.Errorf("config: role is required")
	}
	c.Portal.Session.Role = role
	return c.savePortalConfig()
}

func (c *Config) loadPortalConfig() error {
	path := c.PortalConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed PortalConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Portal = parsed
	return nil
}

func defaultPortalConfig() PortalConfig {
	return PortalConfig{
		Version: 1,
		Server:  ServerConfig{Source: "demo"},
		Session: SessionConfig{Role: defaultRole},
		UI:      UIConfig{ItemsPerPage: defaultPageSize},
	}
}

func (pc *PortalConfig) applyDefaults() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	if pc.Server.Source == "" {
		pc.Server.Source = "demo"
	}
	if pc.Session.Role == "" {
		pc.Session.Role = defaultRole
	}
	if pc.UI.ItemsPerPage == 0 {
		pc.UI.ItemsPerPage = defaultPageSize
	}
}

func (pc *PortalConfig) normalize() {
	pc.Server.Source = strings.ToLower(strings.TrimSpace(pc.Server.Source))
	pc.Server.URL = strings.TrimRight(strings.TrimSpace(pc.Server.URL), "/")
	pc.Session.Role = strings.ToLower(strings.TrimSpace(pc.Session.Role))
	pc.Session.User = strings.TrimSpace(pc.Session.User)
}

func (pc *PortalConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	switch pc.Server.Source {
	case "demo":
	case "frappe":
		if pc.Server.URL == "" {
			return fmt.Errorf("server.url is required when server.source is 'frappe'")
		}
	default:
		return fmt.Errorf("server.source must be 'demo' or 'frappe'")
	}
	switch pc.Session.Role {
	case "applicant", "staff", "head":
	default:
		return fmt.Errorf("session.role must be 'applicant', 'staff' or 'head'")
	}
	if pc.Session.Role != "applicant" && pc.Session.User == "" {
		return fmt.Errorf("session.user is required for staff and head sessions")
	}
	if pc.UI.ItemsPerPage < 1 {
		return fmt.Errorf("ui.items_per_page must be >= 1")
	}
	return nil
}

func ensurePortalConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultPortalConfigYAML), 0o644)
}

func (c *Config) savePortalConfig() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Portal.applyDefaults()
	c.Portal.normalize()
	if err := c.Portal.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.PortalHome, 0o755); err != nil {
		return fmt.Errorf("config: ensure portal dir: %w", err)
	}
	data, err := yaml.Marshal(c.Portal)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.PortalConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write portal config: %w", err)
	}
	return nil
}
