package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abakada/admissions-portal/internal/admission"
	"github.com/abakada/admissions-portal/internal/dashboard"
)

const searchDebounce = 300 * time.Millisecond

var (
	badgePending  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	badgeApproved = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	badgeRejected = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	metricStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// dashMode tracks which layer of the console owns the keyboard.
type dashMode int

const (
	dashTable   dashMode = iota
	dashSearch           // typing in the filter box
	dashDetail           // viewing one application
	dashAssign           // picking a staff member
	dashConfirm          // yes/no dialog before a mutation
)

// pendingAction is the mutation waiting behind the confirm dialog.
type pendingAction struct {
	kind    string // "status" or "logout"
	appName string
	status  admission.Status
	label   string
}

type dashLoadedMsg struct{ err error }

type dashDetailMsg struct {
	app admission.Application
	err error
}

type dashStaffMsg struct{ err error }

type dashMutatedMsg struct {
	action string
	err    error
}

type dashLogoutMsg struct{ err error }

type dashSearchTickMsg struct{ seq int }

// dashboardClosedMsg tells the App the console was closed.
type dashboardClosedMsg struct{}

type dashboardView struct {
	app    *App
	engine *dashboard.Engine

	mode    dashMode
	tbl     table.Model
	search  textinput.Model
	loading bool

	// searchSeq coalesces keystrokes: only the tick carrying the latest
	// sequence number applies the filter.
	searchSeq int

	detail      admission.Application
	detailTab   int
	assignIdx   int
	confirming  pendingAction
	statusIdx   int // cycles the status filter: all, pending, approved, rejected
	loadedOnce  bool
}

var statusCycle = []admission.Status{"", admission.StatusPending, admission.StatusApproved, admission.StatusRejected}

func newDashboardView(app *App, engine *dashboard.Engine) *dashboardView {
	search := textinput.New()
	search.Placeholder = "Search name, reference, program, email..."
	search.CharLimit = 80

	columns := []table.Column{
		{Title: "Ref No", Width: 12},
		{Title: "Applicant", Width: 24},
		{Title: "Program", Width: 20},
		{Title: "Category", Width: 14},
		{Title: "Status", Width: 10},
		{Title: "Assigned", Width: 20},
	}
	tbl := table.New(table.WithColumns(columns), table.WithFocused(true))
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#444444"))
	tbl.SetStyles(styles)

	return &dashboardView{app: app, engine: engine, tbl: tbl, search: search}
}

func (v *dashboardView) Init() tea.Cmd {
	v.loading = true
	return v.reload()
}

func (v *dashboardView) allowsEscape() bool {
	return v.mode == dashTable
}

func (v *dashboardView) reload() tea.Cmd {
	eng := v.engine
	return func() tea.Msg {
		return dashLoadedMsg{err: eng.Load(contextTODO())}
	}
}

func (v *dashboardView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case dashLoadedMsg:
		v.loading = false
		if m.err != nil {
			if v.loadedOnce {
				v.setStatus("Refresh failed; showing the last loaded list: " + userFacing(m.err))
			} else {
				v.setStatus("Could not load applications: " + userFacing(m.err))
			}
			return nil
		}
		v.loadedOnce = true
		v.refreshRows()
		return nil

	case dashDetailMsg:
		v.loading = false
		if m.err != nil {
			v.setStatus("Could not open the application: " + userFacing(m.err))
			return nil
		}
		v.detail = m.app
		v.detailTab = 0
		v.mode = dashDetail
		return nil

	case dashStaffMsg:
		if m.err != nil {
			v.setStatus("Could not load staff list: " + userFacing(m.err))
			return nil
		}
		if len(v.engine.Staff()) == 0 {
			v.setStatus("No users hold the Admission Staff role")
			return nil
		}
		v.assignIdx = 0
		v.mode = dashAssign
		return nil

	case dashMutatedMsg:
		v.loading = false
		if m.err != nil {
			v.setStatus("Update failed: " + userFacing(m.err))
			return nil
		}
		v.setStatus(m.action)
		v.refreshRows()
		// Keep the detail pane in sync after a status change.
		if v.mode == dashDetail {
			return v.openDetail(v.detail.Name)
		}
		return nil

	case dashLogoutMsg:
		if m.err != nil {
			v.setStatus("Logout failed: " + userFacing(m.err))
			return nil
		}
		v.setStatus("Logged out")
		return func() tea.Msg { return dashboardClosedMsg{} }

	case dashSearchTickMsg:
		if m.seq == v.searchSeq {
			v.engine.SetSearch(v.search.Value())
			v.refreshRows()
		}
		return nil

	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return nil
}

func (v *dashboardView) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch v.mode {
	case dashSearch:
		return v.handleSearchKey(msg)
	case dashDetail:
		return v.handleDetailKey(msg)
	case dashAssign:
		return v.handleAssignKey(msg)
	case dashConfirm:
		return v.handleConfirmKey(msg)
	}
	return v.handleTableKey(msg)
}

func (v *dashboardView) handleTableKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		v.mode = dashSearch
		return v.search.Focus()
	case "f":
		v.statusIdx = (v.statusIdx + 1) % len(statusCycle)
		v.engine.SetStatusFilter(statusCycle[v.statusIdx])
		v.refreshRows()
		return nil
	case "r":
		v.loading = true
		v.setStatus("Refreshing...")
		return v.reload()
	case "left", "[":
		v.engine.PrevPage()
		v.refreshRows()
		return nil
	case "right", "]":
		v.engine.NextPage()
		v.refreshRows()
		return nil
	case "enter":
		if row := v.selectedApp(); row != nil {
			v.loading = true
			return v.openDetail(row.Name)
		}
		return nil
	case "L":
		v.confirming = pendingAction{kind: "logout", label: "Log out of the portal?"}
		v.mode = dashConfirm
		return nil
	}
	var cmd tea.Cmd
	v.tbl, cmd = v.tbl.Update(msg)
	return cmd
}

func (v *dashboardView) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.mode = dashTable
		v.search.Blur()
		return nil
	case "enter":
		v.mode = dashTable
		v.search.Blur()
		v.engine.SetSearch(v.search.Value())
		v.refreshRows()
		return nil
	}
	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.searchSeq++
	seq := v.searchSeq
	debounce := tea.Tick(searchDebounce, func(time.Time) tea.Msg {
		return dashSearchTickMsg{seq: seq}
	})
	if cmd != nil {
		return tea.Batch(cmd, debounce)
	}
	return debounce
}

func (v *dashboardView) handleDetailKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q":
		v.mode = dashTable
		return nil
	case "tab":
		v.detailTab = (v.detailTab + 1) % 3
		return nil
	case "a":
		if v.engine.Scope() == dashboard.ScopeHead {
			return v.beginAssign()
		}
		v.setStatus("Only the admission head can assign applications")
		return nil
	case "y":
		return v.confirmStatus(admission.StatusApproved)
	case "n":
		return v.confirmStatus(admission.StatusRejected)
	case "p":
		return v.confirmStatus(admission.StatusPending)
	}
	return nil
}

func (v *dashboardView) confirmStatus(status admission.Status) tea.Cmd {
	current := v.detail.Status
	if current == "" {
		current = admission.StatusPending
	}
	// The control for the status the application already has is disabled.
	if status == current {
		return nil
	}
	if !v.engine.CanSetStatus(v.detail) {
		v.setStatus("This application is not assigned to you")
		return nil
	}
	v.confirming = pendingAction{
		kind:    "status",
		appName: v.detail.Name,
		status:  status,
		label:   fmt.Sprintf("Mark %s as %s?", v.detail.Name, status.Label()),
	}
	v.mode = dashConfirm
	return nil
}

func (v *dashboardView) beginAssign() tea.Cmd {
	if len(v.engine.Staff()) > 0 {
		v.assignIdx = 0
		v.mode = dashAssign
		return nil
	}
	eng := v.engine
	return func() tea.Msg {
		return dashStaffMsg{err: eng.LoadStaff(contextTODO())}
	}
}

func (v *dashboardView) handleAssignKey(msg tea.KeyMsg) tea.Cmd {
	staff := v.engine.Staff()
	switch msg.String() {
	case "esc":
		v.mode = dashDetail
		return nil
	case "up", "k":
		if v.assignIdx > 0 {
			v.assignIdx--
		}
	case "down", "j":
		if v.assignIdx < len(staff)-1 {
			v.assignIdx++
		}
	case "enter":
		if v.assignIdx >= len(staff) {
			return nil
		}
		member := staff[v.assignIdx]
		name := v.detail.Name
		v.mode = dashDetail
		v.loading = true
		eng := v.engine
		return func() tea.Msg {
			err := eng.Assign(contextTODO(), name, member)
			return dashMutatedMsg{action: fmt.Sprintf("Assigned %s to %s", name, member.FullName), err: err}
		}
	}
	return nil
}

func (v *dashboardView) handleConfirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter":
		action := v.confirming
		v.confirming = pendingAction{}
		eng := v.engine
		switch action.kind {
		case "logout":
			v.mode = dashTable
			return func() tea.Msg {
				return dashLogoutMsg{err: eng.Logout(contextTODO())}
			}
		case "status":
			v.mode = dashDetail
			v.loading = true
			return func() tea.Msg {
				err := eng.SetStatus(contextTODO(), action.appName, action.status)
				return dashMutatedMsg{action: fmt.Sprintf("%s marked %s", action.appName, action.status.Label()), err: err}
			}
		}
	case "n", "esc":
		if v.confirming.kind == "status" {
			v.mode = dashDetail
		} else {
			v.mode = dashTable
		}
		v.confirming = pendingAction{}
	}
	return nil
}

func (v *dashboardView) openDetail(name string) tea.Cmd {
	eng := v.engine
	return func() tea.Msg {
		app, err := eng.Detail(contextTODO(), name)
		return dashDetailMsg{app: app, err: err}
	}
}

func (v *dashboardView) selectedApp() *admission.Application {
	rows := v.engine.PageSlice()
	idx := v.tbl.Cursor()
	if idx < 0 || idx >= len(rows) {
		return nil
	}
	return &rows[idx]
}

func (v *dashboardView) refreshRows() {
	rows := make([]table.Row, 0, v.engine.PageSize())
	for _, app := range v.engine.PageSlice() {
		assigned := app.AssignedStaff
		if assigned == "" {
			assigned = "Unassigned"
		}
		rows = append(rows, table.Row{
			app.Name,
			app.FullName(),
			app.Program,
			app.Category,
			app.Status.Label(),
			assigned,
		})
	}
	v.tbl.SetRows(rows)
	if v.tbl.Cursor() >= len(rows) {
		v.tbl.SetCursor(max(0, len(rows)-1))
	}
}

func (v *dashboardView) View() string {
	switch v.mode {
	case dashDetail:
		return v.renderDetail()
	case dashAssign:
		return v.renderAssign()
	case dashConfirm:
		return v.renderConfirm()
	}
	return v.renderTable()
}

func (v *dashboardView) renderTable() string {
	var sections []string
	sections = append(sections, metricStyle.Render(v.engine.Scope().Title()))
	sections = append(sections, v.renderMetrics(), "")

	searchLine := v.search.View()
	if v.mode != dashSearch && v.search.Value() == "" {
		searchLine = mutedStyle.Render("/ to search")
	}
	filterLabel := "all statuses"
	if s := v.engine.StatusFilter(); s != "" {
		filterLabel = strings.ToLower(s.Label()) + " only"
	}
	sections = append(sections, fmt.Sprintf("%s   %s", searchLine, mutedStyle.Render("f: "+filterLabel)))
	sections = append(sections, v.tbl.View())

	page := fmt.Sprintf("Page %d of %d · %d application(s)",
		v.engine.Page(), v.engine.TotalPages(), len(v.engine.Applications()))
	if v.loading {
		page += " · refreshing..."
	}
	sections = append(sections, mutedStyle.Render(page))
	sections = append(sections, hintStyle.Render("enter=view  /=search  f=filter  [ ]=page  r=refresh  L=logout  esc=menu"))
	return strings.Join(sections, "\n")
}

func (v *dashboardView) renderMetrics() string {
	m := v.engine.Metrics()
	assignLabel := "Unassigned"
	if v.engine.Scope() == dashboard.ScopeStaff {
		assignLabel = "Mine"
	}
	return fmt.Sprintf(
		"Total %d   Pending %s   Approved %s   Rejected %s   %s %d   Approval %.0f%%   New (30d) %d",
		m.Total,
		badgePending.Render(fmt.Sprint(m.Pending)),
		badgeApproved.Render(fmt.Sprint(m.Approved)),
		badgeRejected.Render(fmt.Sprint(m.Rejected)),
		assignLabel, m.Assignments,
		m.ApprovalRate(),
		m.Recent,
	)
}

func statusBadge(s admission.Status) string {
	switch s {
	case admission.StatusApproved:
		return badgeApproved.Render(s.Label())
	case admission.StatusRejected:
		return badgeRejected.Render(s.Label())
	}
	return badgePending.Render(s.Label())
}

var detailTabs = []string{"Profile", "Family", "Education"}

func (v *dashboardView) renderDetail() string {
	app := v.detail
	var lines []string
	lines = append(lines,
		metricStyle.Render(fmt.Sprintf("%s · %s", app.Name, app.FullName())),
		fmt.Sprintf("Status: %s   Program: %s   Category: %s", statusBadge(app.Status), app.Program, app.Category),
		fmt.Sprintf("Applied: %s   Assigned: %s", admission.FormatDate(app.Date), orNone(app.AssignedStaff)),
		"")

	var tabs []string
	for i, name := range detailTabs {
		if i == v.detailTab {
			tabs = append(tabs, metricStyle.Render("["+name+"]"))
		} else {
			tabs = append(tabs, mutedStyle.Render(" "+name+" "))
		}
	}
	lines = append(lines, strings.Join(tabs, " "), "")

	switch v.detailTab {
	case 0:
		lines = append(lines,
			fmt.Sprintf("Email: %s", orNone(app.Email)),
			fmt.Sprintf("Mobile: %s", orNone(app.Mobile)),
			fmt.Sprintf("Born: %s   Gender: %s", admission.FormatDate(app.DateOfBirth), orNone(app.Gender)),
			fmt.Sprintf("Nationality: %s   Religion: %s", orNone(app.Nationality), orNone(app.Religion)),
			fmt.Sprintf("Address: %s", orNone(admission.JoinNames(app.AddressLine1, app.AddressLine2, app.Barangay, app.City, app.Province, app.Region, app.Pincode))),
		)
	case 1:
		if len(app.Guardians) == 0 && len(app.Siblings) == 0 {
			lines = append(lines, mutedStyle.Render("none"))
		}
		for _, g := range app.Guardians {
			lines = append(lines, fmt.Sprintf("Guardian: %s (%s) · %s", g.Name, orNone(g.Relation), orNone(g.Mobile)))
		}
		for _, s := range app.Siblings {
			lines = append(lines, fmt.Sprintf("Sibling: %s · %s", s.FullName, orNone(s.Institution)))
		}
	case 2:
		if len(app.Schools) == 0 {
			lines = append(lines, mutedStyle.Render("none"))
		}
		for _, s := range app.Schools {
			lines = append(lines, fmt.Sprintf("%s — %s", s.Level, s.Name))
		}
	}

	hints := "tab=switch  y=approve  n=reject  p=pending  esc=back"
	if v.engine.Scope() == dashboard.ScopeHead {
		hints = "a=assign  " + hints
	}
	lines = append(lines, "", hintStyle.Render(hints))
	return strings.Join(lines, "\n")
}

func (v *dashboardView) renderAssign() string {
	var lines []string
	lines = append(lines, metricStyle.Render(fmt.Sprintf("Assign %s to:", v.detail.Name)), "")
	for i, member := range v.engine.Staff() {
		indicator := " "
		if i == v.assignIdx {
			indicator = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %s <%s>", indicator, member.FullName, member.Email))
	}
	lines = append(lines, "", hintStyle.Render("enter=assign  esc=cancel"))
	return strings.Join(lines, "\n")
}

func (v *dashboardView) renderConfirm() string {
	return strings.Join([]string{
		noticeStyle.Render(v.confirming.label),
		"",
		hintStyle.Render("y=yes  n=no"),
	}, "\n")
}

func orNone(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "none"
	}
	return value
}

func (v *dashboardView) setStatus(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	v.app.statusMsg = message
	v.app.logProgress(message)
}
