// cmd/portal/main.go
//
// This is the entry point for the admissions portal.
// When you run `portal`, this is what executes.
//
// Flow:
// 1. Handle one-shot subcommands (validate-draft)
// 2. Initialize the .portal folder under the user's home
// 3. Build the collaborator from config (demo or live site)
// 4. Launch the TUI

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abakada/admissions-portal/internal/collab"
	"github.com/abakada/admissions-portal/internal/collab/frappe"
	"github.com/abakada/admissions-portal/internal/collab/memory"
	"github.com/abakada/admissions-portal/internal/config"
	"github.com/abakada/admissions-portal/internal/tui"
)

func main() {
	if handleValidateDraftCommand() {
		return
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error locating home directory: %v\n", err)
		os.Exit(1)
	}

	if err := config.InitPortalDir(home); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing .portal directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(home)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	collaborator, err := buildCollaborator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	app, err := tui.NewApp(cfg, collaborator)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting the portal: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// buildCollaborator picks the document store: seeded memory for demo mode,
// a Frappe site otherwise.
func buildCollaborator(cfg *config.Config) (collab.Collaborator, error) {
	if cfg.DemoMode() {
		return memory.NewSeeded(), nil
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("set %s and %s (in the environment or a .env file) to connect to %s",
			config.EnvAPIKey, config.EnvAPISecret, cfg.ServerURL())
	}
	return frappe.New(cfg.ServerURL(), cfg.APIKey, cfg.APISecret), nil
}
