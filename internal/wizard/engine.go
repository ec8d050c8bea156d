// internal/wizard/engine.go
//
// The wizard engine walks an applicant through the five admission steps,
// gating forward movement on per-step validation. It owns no rendering:
// views read the engine's state and project it, so every transition here is
// testable without a terminal.

package wizard

import (
	"fmt"
	"strings"
	"time"

	"github.com/abakada/admissions-portal/internal/admission"
	"github.com/abakada/admissions-portal/internal/collab"
	"github.com/abakada/admissions-portal/internal/logbook"
)

// Step identifies one wizard screen, 1-based to match the progress labels.
type Step int

const (
	StepAdmission Step = iota + 1
	StepPersonal
	StepEducation
	StepDocuments
	StepReview
)

// TotalSteps is the number of wizard screens.
const TotalSteps = int(StepReview)

// Title returns the step's progress-bar label.
func (s Step) Title() string {
	switch s {
	case StepAdmission:
		return "Admission Details"
	case StepPersonal:
		return "Personal & Address"
	case StepEducation:
		return "Education"
	case StepDocuments:
		return "Documents"
	case StepReview:
		return "Review & Submit"
	}
	return fmt.Sprintf("Step %d", int(s))
}

// TimeEstimate returns the remaining-time hint shown beside the progress bar.
func (s Step) TimeEstimate() string {
	estimates := []string{
		"~10 min remaining", "~8 min remaining", "~5 min remaining",
		"~3 min remaining", "Almost done!",
	}
	if s < 1 || int(s) > len(estimates) {
		return ""
	}
	return estimates[s-1]
}

// LabelState is the progress indicator state of one step.
type LabelState int

const (
	LabelFuture LabelState = iota
	LabelActive
	LabelCompleted
)

// FieldKind selects the validation applied beyond the required check.
type FieldKind int

const (
	KindText FieldKind = iota
	KindEmail
	KindMobile
	KindDate
	KindSelect
)

// Field describes one input on a wizard step.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
}

// Issue is a single field-scoped validation failure.
type Issue struct {
	Field   string
	Message string
}

// Attachment is a file staged in a document slot, uploaded on submission in
// slice order.
type Attachment struct {
	Field    string
	Label    string
	Filename string
	Content  []byte
}

// Option customizes engine construction.
type Option func(*Engine)

// WithClock injects the time source used by birth-date validation.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogbook attaches a session log.
func WithLogbook(log *logbook.Logbook) Option {
	return func(e *Engine) { e.log = log }
}

// WithCatalog seeds the program/agent catalog, mainly for tests.
func WithCatalog(cat admission.Catalog) Option {
	return func(e *Engine) { e.SetCatalog(cat) }
}

// Engine holds all wizard state.
type Engine struct {
	collab collab.Collaborator
	drafts *DraftStore
	log    *logbook.Logbook
	now    func() time.Time

	catalog admission.Catalog
	options map[string][]admission.Option

	current     Step
	values      map[string]string
	schools     []admission.PreviousSchool
	alsPasser   bool
	attachments []Attachment
	issues      map[string]string

	submitting bool
	submitted  bool
	refNo      string
}

// New creates a wizard on step 1 with empty values. Call RestoreDraft to
// repopulate a previous session.
func New(c collab.Collaborator, drafts *DraftStore, opts ...Option) *Engine {
	e := &Engine{
		collab:  c,
		drafts:  drafts,
		now:     time.Now,
		current: StepAdmission,
		values:  map[string]string{},
		options: map[string][]admission.Option{},
		issues:  map[string]string{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// SetCatalog installs the loaded program/agent catalog.
func (e *Engine) SetCatalog(cat admission.Catalog) {
	e.catalog = cat
	e.SetOptions("agent", cat.Agents)
}

// Catalog returns the loaded catalog.
func (e *Engine) Catalog() admission.Catalog { return e.catalog }

// SetOptions registers the code/display options behind a dropdown field so
// the review summary can resolve codes to display text.
func (e *Engine) SetOptions(field string, opts []admission.Option) {
	e.options[field] = opts
}

// Options returns the registered options behind a dropdown field.
func (e *Engine) Options(field string) []admission.Option {
	return e.options[field]
}

// Current returns the active step.
func (e *Engine) Current() Step { return e.current }

// Progress returns completion as a fraction of total steps.
func (e *Engine) Progress() float64 {
	return float64(e.current) / float64(TotalSteps)
}

// LabelFor reports the progress indicator state of a step.
func (e *Engine) LabelFor(s Step) LabelState {
	switch {
	case s == e.current:
		return LabelActive
	case s < e.current:
		return LabelCompleted
	}
	return LabelFuture
}

// Value returns a field's current value.
func (e *Engine) Value(name string) string { return e.values[name] }

// Values returns a copy of the field-value map.
func (e *Engine) Values() map[string]string {
	dup := make(map[string]string, len(e.values))
	for k, v := range e.values {
		dup[k] = v
	}
	return dup
}

// SetValue records a field change, clears its validation mark, and rewrites
// the draft. Draft failures are logged, never surfaced: losing autosave must
// not interrupt data entry.
func (e *Engine) SetValue(name, value string) {
	if e.submitted {
		return
	}
	e.values[name] = value
	delete(e.issues, name)
	if e.drafts != nil {
		if err := e.drafts.Save(e.values); err != nil && e.log != nil {
			e.log.Warn("draft autosave failed: %v", err)
		}
	}
}

// RestoreDraft merges a stored draft into the field values. Fields absent
// from the draft keep their current value.
func (e *Engine) RestoreDraft() bool {
	if e.drafts == nil {
		return false
	}
	saved, err := e.drafts.Load()
	if err != nil {
		if e.log != nil {
			e.log.Warn("draft restore failed: %v", err)
		}
		return false
	}
	if len(saved) == 0 {
		return false
	}
	for name, value := range saved {
		e.values[name] = value
	}
	if e.log != nil {
		e.log.Info("draft restored (%d fields)", len(saved))
	}
	return true
}

// AddSchool appends a prior-school entry.
func (e *Engine) AddSchool(level, name string) error {
	level = strings.TrimSpace(level)
	name = strings.TrimSpace(name)
	if level == "" || name == "" {
		return fmt.Errorf("school level and name are both required")
	}
	e.schools = append(e.schools, admission.PreviousSchool{Level: level, Name: name})
	return nil
}

// RemoveSchool drops the entry at index i, ignoring out-of-range requests.
func (e *Engine) RemoveSchool(i int) {
	if i < 0 || i >= len(e.schools) {
		return
	}
	e.schools = append(e.schools[:i], e.schools[i+1:]...)
}

// Schools returns the added prior-school entries.
func (e *Engine) Schools() []admission.PreviousSchool { return e.schools }

// SetALSPasser flags the applicant as an ALS passer, which satisfies the
// education gate without school entries.
func (e *Engine) SetALSPasser(v bool) { e.alsPasser = v }

// ALSPasser reports the flag.
func (e *Engine) ALSPasser() bool { return e.alsPasser }

// Attach stages a file in a document slot, replacing any previous choice
// for the same slot.
func (e *Engine) Attach(field, label, filename string, content []byte) {
	for i := range e.attachments {
		if e.attachments[i].Field == field {
			e.attachments[i] = Attachment{Field: field, Label: label, Filename: filename, Content: content}
			return
		}
	}
	e.attachments = append(e.attachments, Attachment{Field: field, Label: label, Filename: filename, Content: content})
}

// Attachments returns the staged files in upload order.
func (e *Engine) Attachments() []Attachment { return e.attachments }

// Attached reports whether a slot holds a file.
func (e *Engine) Attached(field string) bool {
	for _, a := range e.attachments {
		if a.Field == field {
			return true
		}
	}
	return false
}

// IssueFor returns the validation message marked on a field, if any.
func (e *Engine) IssueFor(field string) string { return e.issues[field] }

// Submitted reports whether the wizard reached its terminal state.
func (e *Engine) Submitted() bool { return e.submitted }

// Submitting reports whether a submission request is in flight.
func (e *Engine) Submitting() bool { return e.submitting }

// ReferenceNo returns the server-assigned code after submission.
func (e *Engine) ReferenceNo() string { return e.refNo }

// Advance moves to target only when the current step validates. It returns
// the issues found; an empty slice means the transition happened.
func (e *Engine) Advance(target Step) []Issue {
	if e.submitted || e.submitting {
		return nil
	}
	issues := e.ValidateStep(e.current)
	if len(issues) > 0 {
		for _, is := range issues {
			if is.Field != "" {
				e.issues[is.Field] = is.Message
			}
		}
		return issues
	}
	e.moveTo(target)
	return nil
}

// Retreat moves backward without validation.
func (e *Engine) Retreat(target Step) {
	if e.submitted || e.submitting || target >= e.current {
		return
	}
	e.moveTo(target)
}

func (e *Engine) moveTo(target Step) {
	if target < StepAdmission {
		target = StepAdmission
	}
	if int(target) > TotalSteps {
		target = Step(TotalSteps)
	}
	e.current = target
	if e.log != nil {
		e.log.Info("wizard step %d/%d (%s)", int(target), TotalSteps, target.Title())
	}
}

// StepFields returns the inputs of a step. The manual agent name becomes
// required once the manual-entry agent is selected; document and education
// gates are handled by ValidateStep directly.
func (e *Engine) StepFields(s Step) []Field {
	switch s {
	case StepAdmission:
		fields := []Field{
			{Name: "student_category", Label: "Student Category", Kind: KindSelect, Required: true},
			{Name: "program", Label: "Program Applied For", Required: true},
			{Name: "agent", Label: "Referral Agent", Kind: KindSelect},
		}
		if e.values["agent"] == admission.ManualAgent {
			fields = append(fields, Field{Name: "manual_agent_name", Label: "Agent Name", Required: true})
		}
		return fields
	case StepPersonal:
		return []Field{
			{Name: "first_name", Label: "First Name", Required: true},
			{Name: "middle_name", Label: "Middle Name"},
			{Name: "last_name", Label: "Last Name", Required: true},
			{Name: "suffix", Label: "Suffix"},
			{Name: "gender", Label: "Gender", Kind: KindSelect, Required: true},
			{Name: "date_of_birth", Label: "Date of Birth", Kind: KindDate, Required: true},
			{Name: "student_email_id", Label: "Email Address", Kind: KindEmail, Required: true},
			{Name: "student_mobile_number", Label: "Mobile Number", Kind: KindMobile, Required: true},
			{Name: "home_phone_number", Label: "Home Phone"},
			{Name: "address_line_1", Label: "Address Line 1", Required: true},
			{Name: "address_line_2", Label: "Address Line 2"},
			{Name: "region", Label: "Region", Kind: KindSelect, Required: true},
			{Name: "province", Label: "Province", Kind: KindSelect, Required: true},
			{Name: "city", Label: "City / Municipality", Kind: KindSelect, Required: true},
			{Name: "barangay", Label: "Barangay", Kind: KindSelect, Required: true},
			{Name: "pincode", Label: "Zip Code", Required: true},
			{Name: "living_with_parents", Label: "Living with Parents?", Kind: KindSelect},
			{Name: "father_first_name", Label: "Father's First Name"},
			{Name: "father_last_name", Label: "Father's Last Name"},
			{Name: "father_suffix", Label: "Father's Suffix"},
			{Name: "mother_first_name", Label: "Mother's First Name"},
			{Name: "mother_last_name", Label: "Mother's Last Name"},
			{Name: "emergency_contact_name", Label: "Emergency Contact", Required: true},
			{Name: "emergency_relationship", Label: "Relationship", Required: true},
			{Name: "emergency_contact_number", Label: "Emergency Contact #", Kind: KindMobile, Required: true},
		}
	}
	return nil
}

// ValidateStep evaluates one step's gate without changing the current step.
func (e *Engine) ValidateStep(s Step) []Issue {
	var issues []Issue
	for _, f := range e.StepFields(s) {
		value := strings.TrimSpace(e.values[f.Name])
		if value == "" {
			if f.Required {
				issues = append(issues, Issue{Field: f.Name, Message: f.Label + " is required"})
			}
			continue
		}
		switch f.Kind {
		case KindEmail:
			if !admission.ValidEmail(value) {
				issues = append(issues, Issue{Field: f.Name, Message: "Please enter a valid email address"})
			}
		case KindMobile:
			if !admission.ValidMobile(value) {
				issues = append(issues, Issue{Field: f.Name, Message: "Please enter a valid Philippine mobile number (09XXXXXXXXX)"})
			}
		case KindDate:
			if err := admission.ValidateBirthDate(value, e.now()); err != nil {
				issues = append(issues, Issue{Field: f.Name, Message: err.Error()})
			}
		}
	}

	switch s {
	case StepEducation:
		if len(e.schools) == 0 && !e.alsPasser {
			issues = append(issues, Issue{Message: "Add at least one previous school, or mark the applicant as an ALS passer"})
		}
	case StepDocuments:
		for _, slot := range admission.DocumentSlots(e.values["student_category"]) {
			if slot.Required && !e.Attached(slot.Field) {
				issues = append(issues, Issue{Field: slot.Field, Message: slot.Label + " is required"})
			}
		}
	}
	return issues
}

// Notice condenses validation issues into the single aggregate line shown
// above the form.
func Notice(issues []Issue) string {
	if len(issues) == 0 {
		return ""
	}
	if len(issues) == 1 {
		return issues[0].Message
	}
	return fmt.Sprintf("Please complete all required fields correctly (%d issues)", len(issues))
}
