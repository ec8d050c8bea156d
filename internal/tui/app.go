// internal/tui/app.go
//
// This is the main TUI for the admissions portal.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abakada/admissions-portal/internal/collab"
	"github.com/abakada/admissions-portal/internal/config"
	"github.com/abakada/admissions-portal/internal/dashboard"
	"github.com/abakada/admissions-portal/internal/logbook"
	"github.com/abakada/admissions-portal/internal/wizard"
)

// appState represents which "screen" we're on
type appState int

const (
	stateMainMenu  appState = iota // Role menu
	stateWizard                    // Applicant wizard
	stateDashboard                 // Staff or head console
)

// AppOption customizes App construction for tests.
type AppOption func(*App)

// WithLogbook overrides the session logbook.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) { a.logbook = lb }
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state   appState
	config  *config.Config
	collab  collab.Collaborator
	logbook *logbook.Logbook

	wizardView *wizardView
	dashView   *dashboardView

	// UI components
	mainMenu      list.Model // The role menu list
	statusMsg     string     // Status message to display
	lastLogStatus string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// menuItem implements list.Item interface for our menu items
type menuItem struct {
	title string
	desc  string
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// NewApp creates a new App instance wired to a collaborator.
func NewApp(cfg *config.Config, c collab.Collaborator, opts ...AppOption) (*App, error) {
	lb, err := logbook.New(cfg.LogbookPath())
	if err != nil {
		return nil, err
	}
	lb.StartSession(cfg.Role(), cfg.User())

	mainMenu := list.New(buildMainMenu(cfg), list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "🎓 ADMISSIONS PORTAL"
	mainMenu.SetShowStatusBar(false)
	mainMenu.SetFilteringEnabled(false)

	app := &App{
		state:    stateMainMenu,
		config:   cfg,
		collab:   c,
		logbook:  lb,
		mainMenu: mainMenu,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	return app, nil
}

// buildMainMenu creates the role menu. The configured role picks the default
// console, but every console stays reachable from the menu; the server is
// the real authority on what each session may do.
func buildMainMenu(cfg *config.Config) []list.Item {
	items := []list.Item{
		menuItem{title: "Apply for Admission", desc: "Start or resume a student application"},
		menuItem{title: "Staff Dashboard", desc: "Review your assigned applications"},
		menuItem{title: "Head Dashboard", desc: "Full applicant pool, assignments and metrics"},
	}
	if cfg.DemoMode() {
		items = append(items, menuItem{title: "Demo Mode", desc: "Running against seeded in-memory data"})
	}
	items = append(items, menuItem{title: "Exit", desc: "Quit the portal"})
	return items
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

func (a *App) logProgress(status string) {
	status = strings.TrimSpace(status)
	if status == "" || status == a.lastLogStatus {
		return
	}
	a.lastLogStatus = status
	a.logInfo(status)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.mainMenu.SetSize(max(0, msg.Width-6), max(0, msg.Height-10))
		return a, a.forwardToActiveView(msg)

	case wizardDoneMsg:
		if msg.refNo != "" {
			a.statusMsg = fmt.Sprintf("Application %s submitted", msg.refNo)
		}
		return a.returnToMainMenu()

	case dashboardClosedMsg:
		return a.returnToMainMenu()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.state == stateMainMenu {
				return a, tea.Quit
			}
		case "esc":
			if a.state != stateMainMenu && a.activeViewAllowsEscape() {
				return a.returnToMainMenu()
			}
		case "enter":
			if a.state == stateMainMenu {
				return a.handleMainMenuSelection()
			}
		}
	}

	var cmds []tea.Cmd
	switch a.state {
	case stateMainMenu:
		var menuCmd tea.Cmd
		a.mainMenu, menuCmd = a.mainMenu.Update(msg)
		if menuCmd != nil {
			cmds = append(cmds, menuCmd)
		}
	default:
		if cmd := a.forwardToActiveView(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	return a, tea.Batch(cmds...)
}

func (a *App) forwardToActiveView(msg tea.Msg) tea.Cmd {
	switch a.state {
	case stateWizard:
		if a.wizardView != nil {
			return a.wizardView.Update(msg)
		}
	case stateDashboard:
		if a.dashView != nil {
			return a.dashView.Update(msg)
		}
	}
	return nil
}

// activeViewAllowsEscape keeps esc from abandoning the screen while a modal
// dialog or text input owns the key.
func (a *App) activeViewAllowsEscape() bool {
	switch a.state {
	case stateWizard:
		return a.wizardView == nil || a.wizardView.allowsEscape()
	case stateDashboard:
		return a.dashView == nil || a.dashView.allowsEscape()
	}
	return true
}

// handleMainMenuSelection processes menu item selection
func (a *App) handleMainMenuSelection() (tea.Model, tea.Cmd) {
	item, ok := a.mainMenu.SelectedItem().(menuItem)
	if !ok {
		return a, nil
	}

	switch item.title {
	case "Apply for Admission":
		a.logInfo("Menu · applicant wizard selected")
		return a.startWizard()

	case "Staff Dashboard":
		a.logInfo("Menu · staff dashboard selected")
		return a.startDashboard(dashboard.ScopeStaff)

	case "Head Dashboard":
		a.logInfo("Menu · head dashboard selected")
		return a.startDashboard(dashboard.ScopeHead)

	case "Demo Mode":
		a.statusMsg = "Demo mode uses seeded data; edit .portal/config.yaml to connect a live site"
		return a, nil

	case "Exit":
		a.logInfo("Menu · exit selected")
		return a, tea.Quit
	}

	return a, nil
}

func (a *App) startWizard() (tea.Model, tea.Cmd) {
	a.state = stateWizard
	drafts := wizard.NewDraftStore(a.config.StateDir())
	engine := wizard.New(a.collab, drafts, wizard.WithLogbook(a.logbook))
	a.wizardView = newWizardView(a, engine)
	return a, a.wizardView.Init()
}

func (a *App) startDashboard(scope dashboard.Scope) (tea.Model, tea.Cmd) {
	a.state = stateDashboard
	engine := dashboard.New(a.collab, scope, a.config.User(),
		dashboard.WithLogbook(a.logbook),
		dashboard.WithPageSize(a.config.ItemsPerPage()),
	)
	a.dashView = newDashboardView(a, engine)
	return a, a.dashView.Init()
}

// returnToMainMenu transitions back to the role menu
func (a *App) returnToMainMenu() (tea.Model, tea.Cmd) {
	a.state = stateMainMenu
	a.wizardView = nil
	a.dashView = nil
	a.logInfo("Returned to main menu")
	a.mainMenu.SetItems(buildMainMenu(a.config))
	return a, nil
}

// View renders the current state to a string.
func (a *App) View() string {
	width := a.width
	if width <= 0 {
		width = 100
	}
	var content string
	switch a.state {
	case stateMainMenu:
		a.mainMenu.SetSize(max(20, width-8), max(10, a.height-12))
		content = a.mainMenu.View()
	case stateWizard:
		if a.wizardView != nil {
			content = a.wizardView.View()
		} else {
			content = "Loading application wizard..."
		}
	case stateDashboard:
		if a.dashView != nil {
			content = a.dashView.View()
		} else {
			content = "Loading dashboard..."
		}
	}
	return a.renderFrame(content, width)
}

func (a *App) renderFrame(content string, width int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		MarginBottom(1).
		Render("🎓 ADMISSIONS PORTAL")
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(20, width-2)).
		Render(content)
	sections := []string{header, box}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, _ := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
