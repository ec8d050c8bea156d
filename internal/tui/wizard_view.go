package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abakada/admissions-portal/internal/admission"
	"github.com/abakada/admissions-portal/internal/wizard"
)

var (
	stepDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	stepActiveStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	stepFutureStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#777777"))
	fieldLabelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	fieldIssueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	noticeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
	summaryHeadStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	hintStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA")).MarginTop(1)
)

// wizardMode tracks what the keyboard is currently driving.
type wizardMode int

const (
	wizardBrowse  wizardMode = iota // moving between fields
	wizardEdit                      // typing into the focused field
	wizardAttach                    // typing a file path for a document slot
	wizardSchool                    // typing a school name
)

type wizardCatalogMsg struct {
	cat admission.Catalog
	err error
}

type wizardOptionsMsg struct {
	field string
	opts  []admission.Option
	err   error
}

type wizardFileMsg struct {
	field string
	label string
	path  string
	data  []byte
	err   error
}

type wizardSubmitMsg struct {
	res wizard.SubmitResult
}

// wizardDoneMsg tells the App the wizard is finished.
type wizardDoneMsg struct {
	refNo string
}

type wizardView struct {
	app    *App
	engine *wizard.Engine

	mode   wizardMode
	focus  int
	input  textinput.Model
	spin   spinner.Model
	notice string

	// pendingSlot remembers the document slot or school level an input
	// prompt belongs to.
	pendingSlot  admission.DocumentSlot
	schoolLevel  string
	catalogReady bool
}

// static dropdowns; address tiers are fetched through the collaborator.
var staticOptions = map[string][]string{
	"student_category":    admission.Categories,
	"gender":              {"Male", "Female"},
	"living_with_parents": {"Yes", "No"},
}

// schoolLevels offered on the education step.
var schoolLevels = []string{"Elementary", "Junior High School", "Senior High School", "College"}

func newWizardView(app *App, engine *wizard.Engine) *wizardView {
	input := textinput.New()
	input.CharLimit = 140
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	return &wizardView{app: app, engine: engine, input: input, spin: spin}
}

func (v *wizardView) Init() tea.Cmd {
	if v.engine.RestoreDraft() {
		v.setStatus("Draft restored; your previous answers are filled in")
	}
	return tea.Batch(v.loadCatalog(), v.loadAddressTier(admission.LevelRegion, ""))
}

func (v *wizardView) allowsEscape() bool {
	return v.mode == wizardBrowse && !v.engine.Submitting()
}

func (v *wizardView) loadCatalog() tea.Cmd {
	c := v.app.collab
	return func() tea.Msg {
		cat, err := admission.LoadCatalog(contextTODO(), c)
		return wizardCatalogMsg{cat: cat, err: err}
	}
}

// addressField maps a tier to the form field its selection lands in.
func addressField(level admission.AddressLevel) string {
	switch level.Doctype {
	case "Region":
		return "region"
	case "Province":
		return "province"
	case "City":
		return "city"
	}
	return "barangay"
}

func (v *wizardView) loadAddressTier(level admission.AddressLevel, parentCode string) tea.Cmd {
	c := v.app.collab
	field := addressField(level)
	return func() tea.Msg {
		opts, err := admission.LoadAddressOptions(contextTODO(), c, level, parentCode)
		return wizardOptionsMsg{field: field, opts: opts, err: err}
	}
}

func (v *wizardView) Update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case wizardCatalogMsg:
		if m.err != nil {
			v.setStatus(fmt.Sprintf("Could not load the program catalog: %v", m.err))
			return nil
		}
		v.engine.SetCatalog(m.cat)
		v.catalogReady = true
		return nil

	case wizardOptionsMsg:
		if m.err != nil {
			v.setStatus(fmt.Sprintf("Address lookup failed: %v", m.err))
			return nil
		}
		v.engine.SetOptions(m.field, m.opts)
		return nil

	case wizardFileMsg:
		if m.err != nil {
			v.notice = fmt.Sprintf("Could not read %s: %v", m.path, m.err)
			return nil
		}
		v.engine.Attach(m.field, m.label, filepath.Base(m.path), m.data)
		v.notice = ""
		v.setStatus(fmt.Sprintf("%s attached (%s)", m.label, filepath.Base(m.path)))
		return nil

	case wizardSubmitMsg:
		v.engine.FinishSubmit(m.res)
		if !v.engine.Submitted() {
			v.notice = "Submission failed: " + userFacing(m.res.Err)
			return nil
		}
		return nil

	case spinner.TickMsg:
		if v.engine.Submitting() {
			var cmd tea.Cmd
			v.spin, cmd = v.spin.Update(m)
			return cmd
		}
		return nil

	case tea.KeyMsg:
		return v.handleKey(m)
	}
	return nil
}

func (v *wizardView) handleKey(msg tea.KeyMsg) tea.Cmd {
	if v.engine.Submitting() {
		return nil
	}
	if v.engine.Submitted() {
		if msg.String() == "enter" {
			refNo := v.engine.ReferenceNo()
			return func() tea.Msg { return wizardDoneMsg{refNo: refNo} }
		}
		return nil
	}

	switch v.mode {
	case wizardEdit, wizardAttach, wizardSchool:
		return v.handleInputKey(msg)
	}
	return v.handleBrowseKey(msg)
}

func (v *wizardView) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.mode = wizardBrowse
		v.input.Blur()
		return nil
	case "enter":
		value := strings.TrimSpace(v.input.Value())
		mode := v.mode
		v.mode = wizardBrowse
		v.input.Blur()
		switch mode {
		case wizardEdit:
			fields := v.engine.StepFields(v.engine.Current())
			if v.focus < len(fields) {
				v.engine.SetValue(fields[v.focus].Name, value)
			}
		case wizardAttach:
			if value == "" {
				return nil
			}
			slot := v.pendingSlot
			return func() tea.Msg {
				data, err := os.ReadFile(value)
				return wizardFileMsg{field: slot.Field, label: slot.Label, path: value, data: data, err: err}
			}
		case wizardSchool:
			if err := v.engine.AddSchool(v.schoolLevel, value); err != nil {
				v.notice = err.Error()
			} else {
				v.notice = ""
			}
		}
		return nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return cmd
}

func (v *wizardView) handleBrowseKey(msg tea.KeyMsg) tea.Cmd {
	step := v.engine.Current()
	fields := v.engine.StepFields(step)

	switch msg.String() {
	case "up", "k":
		if v.focus > 0 {
			v.focus--
		}
	case "down", "j":
		if v.focus < v.browseRowCount()-1 {
			v.focus++
		}
	case "left", "h":
		v.cycleSelect(fields, -1)
	case "right", "l":
		return v.cycleSelect(fields, +1)
	case "enter":
		return v.activateRow(fields)
	case "n", "pgdown":
		return v.advance()
	case "b", "pgup":
		if step > wizard.StepAdmission {
			v.engine.Retreat(step - 1)
			v.focus = 0
			v.notice = ""
		}
	case "t":
		if step == wizard.StepEducation {
			v.engine.SetALSPasser(!v.engine.ALSPasser())
		}
	case "x":
		if step == wizard.StepEducation {
			v.engine.RemoveSchool(len(v.engine.Schools()) - 1)
		}
	case "s":
		if step == wizard.StepReview {
			return v.submit()
		}
	}
	return nil
}

// browseRowCount is how many selectable rows the current step shows.
func (v *wizardView) browseRowCount() int {
	switch v.engine.Current() {
	case wizard.StepEducation:
		return len(schoolLevels)
	case wizard.StepDocuments:
		return len(admission.DocumentSlots(v.engine.Value("student_category")))
	case wizard.StepReview:
		return 1
	}
	return len(v.engine.StepFields(v.engine.Current()))
}

func (v *wizardView) activateRow(fields []wizard.Field) tea.Cmd {
	switch v.engine.Current() {
	case wizard.StepEducation:
		if v.focus < len(schoolLevels) {
			v.schoolLevel = schoolLevels[v.focus]
			v.mode = wizardSchool
			v.input.SetValue("")
			v.input.Placeholder = "School name"
			return v.input.Focus()
		}
		return nil
	case wizard.StepDocuments:
		slots := admission.DocumentSlots(v.engine.Value("student_category"))
		if v.focus < len(slots) {
			v.pendingSlot = slots[v.focus]
			v.mode = wizardAttach
			v.input.SetValue("")
			v.input.Placeholder = "Path to file"
			return v.input.Focus()
		}
		return nil
	case wizard.StepReview:
		return v.submit()
	}

	if v.focus >= len(fields) {
		return nil
	}
	field := fields[v.focus]
	if field.Kind == wizard.KindSelect {
		return v.cycleSelect(fields, +1)
	}
	v.mode = wizardEdit
	v.input.SetValue(v.engine.Value(field.Name))
	v.input.Placeholder = field.Label
	return v.input.Focus()
}

// cycleSelect rotates a dropdown field through its options. Picking an
// address tier clears everything below it and fetches the next tier.
func (v *wizardView) cycleSelect(fields []wizard.Field, dir int) tea.Cmd {
	if v.engine.Current() != wizard.StepAdmission && v.engine.Current() != wizard.StepPersonal {
		return nil
	}
	if v.focus >= len(fields) {
		return nil
	}
	field := fields[v.focus]
	if field.Kind != wizard.KindSelect {
		return nil
	}

	codes := v.optionCodes(field.Name)
	if len(codes) == 0 {
		return nil
	}
	current := v.engine.Value(field.Name)
	idx := 0
	for i, code := range codes {
		if code == current {
			idx = (i + dir + len(codes)) % len(codes)
			break
		}
	}
	v.engine.SetValue(field.Name, codes[idx])
	return v.afterSelect(field.Name, codes[idx])
}

func (v *wizardView) optionCodes(field string) []string {
	if fixed, ok := staticOptions[field]; ok {
		return fixed
	}
	if field == "program" {
		return v.engine.Catalog().Programs
	}
	opts := v.engine.Options(field)
	codes := make([]string, 0, len(opts))
	for _, o := range opts {
		codes = append(codes, o.Code)
	}
	return codes
}

func (v *wizardView) afterSelect(field, code string) tea.Cmd {
	switch field {
	case "region":
		v.engine.SetValue("province", "")
		v.engine.SetValue("city", "")
		v.engine.SetValue("barangay", "")
		return v.loadAddressTier(admission.LevelProvince, code)
	case "province":
		v.engine.SetValue("city", "")
		v.engine.SetValue("barangay", "")
		return v.loadAddressTier(admission.LevelCity, code)
	case "city":
		v.engine.SetValue("barangay", "")
		return v.loadAddressTier(admission.LevelBarangay, code)
	}
	return nil
}

func (v *wizardView) advance() tea.Cmd {
	step := v.engine.Current()
	if step >= wizard.StepReview {
		return nil
	}
	issues := v.engine.Advance(step + 1)
	if len(issues) > 0 {
		v.notice = wizard.Notice(issues)
		return nil
	}
	v.notice = ""
	v.focus = 0
	return nil
}

func (v *wizardView) submit() tea.Cmd {
	sub, msgs := v.engine.PrepareSubmission()
	if len(msgs) > 0 {
		v.notice = strings.Join(msgs, "; ")
		return nil
	}
	if sub == nil {
		return nil
	}
	v.notice = ""
	v.setStatus("Submitting application...")
	c := v.app.collab
	return tea.Batch(v.spin.Tick, func() tea.Msg {
		return wizardSubmitMsg{res: sub.Run(contextTODO(), c)}
	})
}

func (v *wizardView) View() string {
	if v.engine.Submitted() {
		return v.renderDone()
	}
	if v.engine.Submitting() {
		return fmt.Sprintf("%s Submitting your application...", v.spin.View())
	}

	sections := []string{v.renderProgress(), ""}
	switch v.engine.Current() {
	case wizard.StepEducation:
		sections = append(sections, v.renderEducation())
	case wizard.StepDocuments:
		sections = append(sections, v.renderDocuments())
	case wizard.StepReview:
		sections = append(sections, v.renderReview())
	default:
		sections = append(sections, v.renderFields())
	}
	if v.notice != "" {
		sections = append(sections, "", noticeStyle.Render(v.notice))
	}
	if v.mode != wizardBrowse {
		sections = append(sections, "", v.input.View())
	}
	sections = append(sections, hintStyle.Render(v.renderHints()))
	return strings.Join(sections, "\n")
}

func (v *wizardView) renderProgress() string {
	parts := make([]string, 0, wizard.TotalSteps)
	for s := wizard.StepAdmission; int(s) <= wizard.TotalSteps; s++ {
		label := fmt.Sprintf("%d. %s", int(s), s.Title())
		switch v.engine.LabelFor(s) {
		case wizard.LabelCompleted:
			parts = append(parts, stepDoneStyle.Render("✓ "+label))
		case wizard.LabelActive:
			parts = append(parts, stepActiveStyle.Render("▶ "+label))
		default:
			parts = append(parts, stepFutureStyle.Render("  "+label))
		}
	}
	estimate := stepFutureStyle.Render(v.engine.Current().TimeEstimate())
	return strings.Join(parts, "   ") + "\n" + estimate
}

func (v *wizardView) renderFields() string {
	fields := v.engine.StepFields(v.engine.Current())
	var lines []string
	for i, f := range fields {
		indicator := " "
		if i == v.focus {
			indicator = ">"
		}
		label := f.Label
		if f.Required {
			label += " *"
		}
		value := v.displayValue(f)
		if value == "" {
			value = "—"
		}
		line := fmt.Sprintf("%s %s: %s", indicator, fieldLabelStyle.Render(label), value)
		lines = append(lines, line)
		if issue := v.engine.IssueFor(f.Name); issue != "" {
			lines = append(lines, fieldIssueStyle.Render("    "+issue))
		}
	}
	return strings.Join(lines, "\n")
}

func (v *wizardView) displayValue(f wizard.Field) string {
	raw := v.engine.Value(f.Name)
	if f.Kind != wizard.KindSelect || raw == "" {
		return raw
	}
	if f.Name == "agent" {
		return v.engine.Catalog().AgentDisplay(raw)
	}
	if opts := v.engine.Options(f.Name); len(opts) > 0 {
		return admission.ResolveOption(opts, raw)
	}
	return raw
}

func (v *wizardView) renderEducation() string {
	var lines []string
	als := "[ ]"
	if v.engine.ALSPasser() {
		als = "[x]"
	}
	lines = append(lines, fmt.Sprintf("%s ALS Passer (press t to toggle)", als), "")
	lines = append(lines, fieldLabelStyle.Render("Add a school (enter on a level):"))
	for i, level := range schoolLevels {
		indicator := " "
		if i == v.focus {
			indicator = ">"
		}
		lines = append(lines, fmt.Sprintf("%s %s", indicator, level))
	}
	if schools := v.engine.Schools(); len(schools) > 0 {
		lines = append(lines, "", fieldLabelStyle.Render("Schools added:"))
		for _, s := range schools {
			lines = append(lines, fmt.Sprintf("  • %s — %s", s.Level, s.Name))
		}
	}
	return strings.Join(lines, "\n")
}

func (v *wizardView) renderDocuments() string {
	slots := admission.DocumentSlots(v.engine.Value("student_category"))
	var lines []string
	for i, slot := range slots {
		indicator := " "
		if i == v.focus {
			indicator = ">"
		}
		mark := "[ ]"
		if v.engine.Attached(slot.Field) {
			mark = stepDoneStyle.Render("[x]")
		}
		label := slot.Label
		if slot.Required {
			label += " *"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", indicator, mark, label))
	}
	return strings.Join(lines, "\n")
}

func (v *wizardView) renderReview() string {
	summary := v.engine.Summary()
	var lines []string
	for _, section := range summary.Sections {
		lines = append(lines, summaryHeadStyle.Render(section.Title))
		if len(section.Rows) == 0 {
			lines = append(lines, "  none")
		}
		for _, row := range section.Rows {
			value := row.Value
			if value == "" {
				value = "—"
			}
			lines = append(lines, fmt.Sprintf("  %s: %s", row.Label, value))
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (v *wizardView) renderDone() string {
	name := admission.JoinNames(
		v.engine.Value("first_name"), v.engine.Value("middle_name"), v.engine.Value("last_name"))
	lines := []string{
		stepDoneStyle.Render("Application submitted!"),
		"",
		fmt.Sprintf("Reference number: %s", v.engine.ReferenceNo()),
		fmt.Sprintf("Applicant:        %s", name),
		fmt.Sprintf("Category:         %s", v.engine.Value("student_category")),
		fmt.Sprintf("Program:          %s", v.engine.Value("program")),
		fmt.Sprintf("Email:            %s", v.engine.Value("student_email_id")),
		fmt.Sprintf("Mobile:           %s", v.engine.Value("student_mobile_number")),
		"",
		"Keep this number; staff will contact you through the email you provided.",
		"",
		hintStyle.Render("enter = back to menu"),
	}
	return strings.Join(lines, "\n")
}

func (v *wizardView) renderHints() string {
	switch v.engine.Current() {
	case wizard.StepEducation:
		return "enter=add school  t=toggle ALS  x=remove last  n=next  b=back  esc=menu"
	case wizard.StepDocuments:
		return "enter=attach file  n=next  b=back  esc=menu"
	case wizard.StepReview:
		return "s=submit  b=back  esc=menu"
	}
	return "enter=edit  ←/→=choose option  n=next step  b=back  esc=menu"
}

func (v *wizardView) setStatus(message string) {
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	v.app.statusMsg = message
	v.app.logProgress(message)
}
