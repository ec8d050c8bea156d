package wizard

import (
	"strings"
	"testing"
	"time"

	"github.com/abakada/admissions-portal/internal/admission"
)

var testClock = func() time.Time {
	return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
}

func fillAdmissionStep(e *Engine) {
	e.SetValue("student_category", admission.CategoryNew)
	e.SetValue("program", "BS Criminology")
}

func fillPersonalStep(e *Engine) {
	values := map[string]string{
		"first_name":               "Juan",
		"last_name":                "Dela Cruz",
		"gender":                   "Male",
		"date_of_birth":            "2005-06-12",
		"student_email_id":         "juan@example.com",
		"student_mobile_number":    "09123456789",
		"address_line_1":           "12 Mabini St",
		"region":                   "130000000",
		"province":                 "133900000",
		"city":                     "137404000",
		"barangay":                 "137404001",
		"pincode":                  "1100",
		"emergency_contact_name":   "Rosa Dela Cruz",
		"emergency_relationship":   "Mother",
		"emergency_contact_number": "09170000001",
	}
	for name, value := range values {
		e.SetValue(name, value)
	}
}

func TestAdvanceBlockedByMissingRequiredFields(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	issues := e.Advance(StepPersonal)
	if len(issues) == 0 {
		t.Fatalf("expected issues on an empty admission step")
	}
	if e.Current() != StepAdmission {
		t.Fatalf("step moved to %d despite validation failure", e.Current())
	}
	if e.IssueFor("student_category") == "" {
		t.Fatalf("student_category should carry a validation mark")
	}

	fillAdmissionStep(e)
	if issues := e.Advance(StepPersonal); len(issues) != 0 {
		t.Fatalf("unexpected issues after filling step: %v", issues)
	}
	if e.Current() != StepPersonal {
		t.Fatalf("expected step 2, got %d", e.Current())
	}
}

func TestSetValueClearsIssueMark(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	e.Advance(StepPersonal)
	if e.IssueFor("program") == "" {
		t.Fatalf("program should be marked")
	}
	e.SetValue("program", "BS Criminology")
	if e.IssueFor("program") != "" {
		t.Fatalf("mark should clear on edit")
	}
}

func TestManualAgentRequiresName(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	fillAdmissionStep(e)
	e.SetValue("agent", admission.ManualAgent)
	issues := e.Advance(StepPersonal)
	if len(issues) != 1 || issues[0].Field != "manual_agent_name" {
		t.Fatalf("expected manual_agent_name issue, got %v", issues)
	}
	e.SetValue("manual_agent_name", "Aling Nena")
	if issues := e.Advance(StepPersonal); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
}

func TestPersonalStepFormatChecks(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	fillAdmissionStep(e)
	e.Advance(StepPersonal)
	fillPersonalStep(e)
	e.SetValue("student_email_id", "not-an-email")
	e.SetValue("student_mobile_number", "12345")
	e.SetValue("date_of_birth", "2015-01-01")

	issues := e.Advance(StepEducation)
	if len(issues) != 3 {
		t.Fatalf("expected 3 format issues, got %v", issues)
	}
	fields := map[string]bool{}
	for _, is := range issues {
		fields[is.Field] = true
	}
	for _, want := range []string{"student_email_id", "student_mobile_number", "date_of_birth"} {
		if !fields[want] {
			t.Fatalf("missing issue for %s in %v", want, issues)
		}
	}
}

func TestEducationGateSchoolOrALS(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	fillAdmissionStep(e)
	e.Advance(StepPersonal)
	fillPersonalStep(e)
	e.Advance(StepEducation)

	if issues := e.Advance(StepDocuments); len(issues) == 0 {
		t.Fatalf("education gate should block with no schools and no ALS flag")
	}

	e.SetALSPasser(true)
	if issues := e.Advance(StepDocuments); len(issues) != 0 {
		t.Fatalf("ALS passer should satisfy the gate: %v", issues)
	}

	e.Retreat(StepEducation)
	e.SetALSPasser(false)
	if err := e.AddSchool("Senior High School", "Quezon City High School"); err != nil {
		t.Fatalf("add school: %v", err)
	}
	if issues := e.Advance(StepDocuments); len(issues) != 0 {
		t.Fatalf("one school should satisfy the gate: %v", issues)
	}
}

func TestAddSchoolRequiresBothParts(t *testing.T) {
	e := New(nil, nil)
	if err := e.AddSchool("", "Somewhere"); err == nil {
		t.Fatalf("expected error for missing level")
	}
	if err := e.AddSchool("College", "  "); err == nil {
		t.Fatalf("expected error for missing name")
	}
	if err := e.AddSchool("College", "PUP"); err != nil {
		t.Fatalf("add school: %v", err)
	}
	e.RemoveSchool(5) // out of range, ignored
	if len(e.Schools()) != 1 {
		t.Fatalf("schools = %d, want 1", len(e.Schools()))
	}
	e.RemoveSchool(0)
	if len(e.Schools()) != 0 {
		t.Fatalf("schools = %d, want 0", len(e.Schools()))
	}
}

func TestDocumentsGateForTransferee(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	fillAdmissionStep(e)
	e.SetValue("student_category", admission.CategoryTransferee)
	e.Advance(StepPersonal)
	fillPersonalStep(e)
	e.Advance(StepEducation)
	e.SetALSPasser(true)
	e.Advance(StepDocuments)

	for _, slot := range admission.DocumentSlots(admission.CategoryTransferee) {
		if slot.Field == "honorable_dismissal" {
			continue
		}
		e.Attach(slot.Field, slot.Label, slot.Field+".pdf", []byte("data"))
	}
	issues := e.Advance(StepReview)
	if len(issues) != 1 || issues[0].Field != "honorable_dismissal" {
		t.Fatalf("transferee must attach honorable dismissal, got %v", issues)
	}

	e.Attach("honorable_dismissal", "Honorable Dismissal", "hd.pdf", []byte("data"))
	if issues := e.Advance(StepReview); len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	if e.Current() != StepReview {
		t.Fatalf("expected review step, got %d", e.Current())
	}
}

func TestAttachReplacesSameSlot(t *testing.T) {
	e := New(nil, nil)
	e.Attach("id_photo", "2x2 ID Photo", "old.jpg", []byte("a"))
	e.Attach("id_photo", "2x2 ID Photo", "new.jpg", []byte("b"))
	atts := e.Attachments()
	if len(atts) != 1 {
		t.Fatalf("attachments = %d, want 1", len(atts))
	}
	if atts[0].Filename != "new.jpg" {
		t.Fatalf("filename = %s, want new.jpg", atts[0].Filename)
	}
}

func TestRetreatNeverValidates(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	fillAdmissionStep(e)
	e.Advance(StepPersonal)
	e.Retreat(StepAdmission)
	if e.Current() != StepAdmission {
		t.Fatalf("retreat failed, step %d", e.Current())
	}
	// Retreat cannot move forward.
	e.Retreat(StepDocuments)
	if e.Current() != StepAdmission {
		t.Fatalf("retreat moved forward to %d", e.Current())
	}
}

func TestDraftAutosaveAndRestore(t *testing.T) {
	dir := t.TempDir()
	store := NewDraftStore(dir)
	e := New(nil, store, WithClock(testClock))
	e.SetValue("first_name", "Maria")
	e.SetValue("program", "BS Forensic Science")

	fresh := New(nil, NewDraftStore(dir), WithClock(testClock))
	if !fresh.RestoreDraft() {
		t.Fatalf("expected a draft to restore")
	}
	fresh.SetValue("last_name", "Santos")
	if got := fresh.Value("first_name"); got != "Maria" {
		t.Fatalf("first_name = %q, want Maria", got)
	}
	if got := fresh.Value("last_name"); got != "Santos" {
		t.Fatalf("restore must not clobber unrelated fields, last_name = %q", got)
	}
}

func TestDraftStoreClear(t *testing.T) {
	store := NewDraftStore(t.TempDir())
	if err := store.Clear(); err != nil {
		t.Fatalf("clearing a missing draft should be fine: %v", err)
	}
	if err := store.Save(map[string]string{"first_name": "Ana"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	values, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if values != nil {
		t.Fatalf("expected no draft after clear, got %v", values)
	}
}

func TestProgressAndLabels(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	fillAdmissionStep(e)
	e.Advance(StepPersonal)

	if e.LabelFor(StepAdmission) != LabelCompleted {
		t.Fatalf("step 1 should be completed")
	}
	if e.LabelFor(StepPersonal) != LabelActive {
		t.Fatalf("step 2 should be active")
	}
	if e.LabelFor(StepReview) != LabelFuture {
		t.Fatalf("step 5 should be future")
	}
	if got := e.Progress(); got != 2.0/5.0 {
		t.Fatalf("progress = %v, want 0.4", got)
	}
}

func TestNoticeAggregation(t *testing.T) {
	if got := Notice(nil); got != "" {
		t.Fatalf("empty notice = %q", got)
	}
	one := Notice([]Issue{{Message: "Program is required"}})
	if one != "Program is required" {
		t.Fatalf("single notice = %q", one)
	}
	many := Notice([]Issue{{Message: "a"}, {Message: "b"}})
	if !strings.Contains(many, "2 issues") {
		t.Fatalf("aggregate notice = %q", many)
	}
}
