package wizard

import (
	"context"
	"fmt"
	"testing"

	"github.com/abakada/admissions-portal/internal/admission"
	"github.com/abakada/admissions-portal/internal/collab"
)

// scriptedCollab records calls and fails on demand.
type scriptedCollab struct {
	calls      []string
	createErr  error
	failUpload string // field whose upload fails
	created    collab.Record
	setFields  []map[string]any
}

func (s *scriptedCollab) List(context.Context, string, collab.ListOptions) ([]collab.Record, error) {
	return nil, nil
}

func (s *scriptedCollab) Get(context.Context, string, string) (collab.Record, error) {
	return nil, nil
}

func (s *scriptedCollab) Create(_ context.Context, doc collab.Record) (string, error) {
	s.calls = append(s.calls, "create")
	if s.createErr != nil {
		return "", s.createErr
	}
	s.created = doc
	return "26-000042", nil
}

func (s *scriptedCollab) SetField(_ context.Context, _, _ string, fields map[string]any) error {
	s.calls = append(s.calls, "set")
	s.setFields = append(s.setFields, fields)
	return nil
}

func (s *scriptedCollab) Upload(_ context.Context, _, _, field, _ string, _ []byte) (string, error) {
	s.calls = append(s.calls, "upload:"+field)
	if field == s.failUpload {
		return "", collab.NewError(collab.KindTransport, "upload_file", "", fmt.Errorf("connection reset"))
	}
	return "/private/files/" + field, nil
}

func (s *scriptedCollab) Logout(context.Context) error { return nil }

func readyEngine(t *testing.T, c collab.Collaborator, dir string) *Engine {
	t.Helper()
	e := New(c, NewDraftStore(dir), WithClock(testClock))
	fillAdmissionStep(e)
	fillPersonalStep(e)
	e.SetALSPasser(true)
	return e
}

func TestPrepareSubmissionValidatesPayload(t *testing.T) {
	e := New(nil, nil, WithClock(testClock))
	sub, msgs := e.PrepareSubmission()
	if sub != nil {
		t.Fatalf("expected nil submission for an empty wizard")
	}
	if len(msgs) == 0 {
		t.Fatalf("expected validation messages")
	}
	if e.Submitting() {
		t.Fatalf("failed validation must not mark in-flight")
	}
}

func TestSubmitUploadsSequentiallyAndLinks(t *testing.T) {
	c := &scriptedCollab{}
	e := readyEngine(t, c, t.TempDir())
	e.Attach("birth_certificate", "PSA Birth Certificate", "psa.pdf", []byte("a"))
	e.Attach("id_photo", "2x2 ID Photo", "photo.jpg", []byte("b"))

	sub, msgs := e.PrepareSubmission()
	if len(msgs) > 0 || sub == nil {
		t.Fatalf("prepare failed: %v", msgs)
	}
	if !e.Submitting() {
		t.Fatalf("engine should be in flight")
	}

	res := sub.Run(context.Background(), c)
	if res.Err != nil {
		t.Fatalf("run: %v", res.Err)
	}
	if res.RefNo != "26-000042" || res.Uploaded != 2 {
		t.Fatalf("result = %+v", res)
	}

	want := []string{"create", "upload:birth_certificate", "set", "upload:id_photo", "set"}
	if len(c.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", c.calls, want)
	}
	for i := range want {
		if c.calls[i] != want[i] {
			t.Fatalf("call %d = %s, want %s", i, c.calls[i], want[i])
		}
	}
	if url := c.setFields[0]["birth_certificate"]; url != "/private/files/birth_certificate" {
		t.Fatalf("linked url = %v", url)
	}

	e.FinishSubmit(res)
	if !e.Submitted() || e.ReferenceNo() != "26-000042" {
		t.Fatalf("engine not in submitted state: %v %q", e.Submitted(), e.ReferenceNo())
	}
}

func TestSubmitStopsAtFirstFailedUpload(t *testing.T) {
	c := &scriptedCollab{failUpload: "id_photo"}
	dir := t.TempDir()
	e := readyEngine(t, c, dir)
	e.Attach("birth_certificate", "PSA Birth Certificate", "psa.pdf", []byte("a"))
	e.Attach("id_photo", "2x2 ID Photo", "photo.jpg", []byte("b"))
	e.Attach("good_moral", "Certificate of Good Moral Character", "gm.pdf", []byte("c"))

	sub, _ := e.PrepareSubmission()
	res := sub.Run(context.Background(), c)

	if res.RefNo == "" {
		t.Fatalf("record was created; reference must be reported")
	}
	if res.Uploaded != 1 {
		t.Fatalf("uploaded = %d, want 1", res.Uploaded)
	}
	if res.Err == nil {
		t.Fatalf("expected an upload error")
	}
	// good_moral never attempted: the sequence stops at the failure.
	for _, call := range c.calls {
		if call == "upload:good_moral" {
			t.Fatalf("upload after failure should not run: %v", c.calls)
		}
	}

	// A failed upload re-opens the wizard: not submitted, draft intact,
	// resubmission allowed.
	e.FinishSubmit(res)
	if e.Submitted() {
		t.Fatalf("failed upload must not complete the wizard")
	}
	if e.Submitting() {
		t.Fatalf("in-flight flag must reset for retry")
	}
	if values, _ := NewDraftStore(dir).Load(); values == nil {
		t.Fatalf("draft must survive a failed upload")
	}
	if sub, msgs := e.PrepareSubmission(); sub == nil || len(msgs) > 0 {
		t.Fatalf("retry blocked after failed upload: %v", msgs)
	}
}

func TestSubmitCreateFailureKeepsDraft(t *testing.T) {
	c := &scriptedCollab{createErr: collab.NewError(collab.KindTransport, "insert", "", fmt.Errorf("timeout"))}
	dir := t.TempDir()
	e := readyEngine(t, c, dir)

	sub, _ := e.PrepareSubmission()
	res := sub.Run(context.Background(), c)
	if res.RefNo != "" || res.Err == nil {
		t.Fatalf("result = %+v", res)
	}

	e.FinishSubmit(res)
	if e.Submitted() {
		t.Fatalf("failed create must not complete the wizard")
	}
	if e.Submitting() {
		t.Fatalf("in-flight flag must reset for retry")
	}
	if values, _ := NewDraftStore(dir).Load(); values == nil {
		t.Fatalf("draft must survive a failed create")
	}

	// A retry is allowed.
	if sub, msgs := e.PrepareSubmission(); sub == nil || len(msgs) > 0 {
		t.Fatalf("retry blocked: %v", msgs)
	}
}

func TestSubmittedDocCarriesSchoolsAndSeries(t *testing.T) {
	c := &scriptedCollab{}
	e := readyEngine(t, c, t.TempDir())
	e.SetALSPasser(false)
	if err := e.AddSchool("College", "PUP"); err != nil {
		t.Fatalf("add school: %v", err)
	}

	sub, _ := e.PrepareSubmission()
	res := sub.Run(context.Background(), c)
	if res.Err != nil {
		t.Fatalf("run: %v", res.Err)
	}

	doc := c.created
	if doc.Str("doctype") != admission.DoctypeApplicant {
		t.Fatalf("doctype = %q", doc.Str("doctype"))
	}
	if doc.Str("naming_series") != admission.NamingSeries {
		t.Fatalf("naming_series = %q", doc.Str("naming_series"))
	}
	if doc.Str("application_status") != string(admission.StatusPending) {
		t.Fatalf("application_status = %q", doc.Str("application_status"))
	}
	rows := doc.Rows("previous_schools")
	if len(rows) != 1 || rows[0].Str("school_name") != "PUP" {
		t.Fatalf("previous_schools = %v", rows)
	}
}
