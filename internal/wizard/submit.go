package wizard

import (
	"context"
	"fmt"

	"github.com/abakada/admissions-portal/internal/admission"
	"github.com/abakada/admissions-portal/internal/collab"
)

// Submission is an immutable snapshot of everything the wizard sends: the
// document to create and the files to upload afterwards. Snapshotting on the
// update loop keeps Run free to block on a worker goroutine.
type Submission struct {
	Doc   collab.Record
	Files []Attachment
}

// SubmitResult reports how far a submission got. RefNo is set as soon as the
// record exists, even when later uploads fail.
type SubmitResult struct {
	RefNo    string
	Uploaded int
	Err      error
}

// PrepareSubmission runs the final payload check and, when it passes, marks
// the engine in-flight and returns the snapshot to send. A nil Submission
// with messages means validation failed; nil with no messages means a
// submission is already in flight or done.
func (e *Engine) PrepareSubmission() (*Submission, []string) {
	if e.submitting || e.submitted {
		return nil, nil
	}

	msgs := admission.ValidatePayload(admission.Payload{
		Category:    e.values["student_category"],
		Program:     e.values["program"],
		FirstName:   e.values["first_name"],
		LastName:    e.values["last_name"],
		Gender:      e.values["gender"],
		DateOfBirth: e.values["date_of_birth"],
		Email:       e.values["student_email_id"],
		Mobile:      e.values["student_mobile_number"],
	})
	if len(msgs) > 0 {
		return nil, msgs
	}

	e.submitting = true
	files := make([]Attachment, len(e.attachments))
	copy(files, e.attachments)
	return &Submission{Doc: e.buildDoc(), Files: files}, nil
}

func (e *Engine) buildDoc() collab.Record {
	doc := collab.Record{
		"doctype":            admission.DoctypeApplicant,
		"naming_series":      admission.NamingSeries,
		"application_status": string(admission.StatusPending),
	}
	for name, value := range e.values {
		if value != "" {
			doc[name] = value
		}
	}
	if len(e.schools) > 0 {
		rows := make([]collab.Record, 0, len(e.schools))
		for _, s := range e.schools {
			rows = append(rows, collab.Record{"level": s.Level, "school_name": s.Name})
		}
		doc["previous_schools"] = rows
	}
	if e.alsPasser {
		doc["als_passer"] = 1
	}
	return doc
}

// Run executes the submission against the collaborator: one Create, then
// each file strictly in order, linking the stored URL into its field before
// the next upload starts. The first failure stops the sequence; files
// already linked stay linked.
func (s *Submission) Run(ctx context.Context, c collab.Collaborator) SubmitResult {
	name, err := c.Create(ctx, s.Doc)
	if err != nil {
		return SubmitResult{Err: fmt.Errorf("create application: %w", err)}
	}

	res := SubmitResult{RefNo: name}
	for _, f := range s.Files {
		url, err := c.Upload(ctx, admission.DoctypeApplicant, name, f.Field, f.Filename, f.Content)
		if err != nil {
			res.Err = fmt.Errorf("upload %s: %w", f.Label, err)
			return res
		}
		if err := c.SetField(ctx, admission.DoctypeApplicant, name, map[string]any{f.Field: url}); err != nil {
			res.Err = fmt.Errorf("link %s: %w", f.Label, err)
			return res
		}
		res.Uploaded++
	}
	return res
}

// FinishSubmit folds a submission result back into the engine. Any failure,
// whether the Create or a later upload, re-opens the review step so the
// applicant can resubmit; the draft survives until a submission completes
// end to end. Files linked before a failed upload stay linked server-side,
// and the resubmission starts over from Create.
func (e *Engine) FinishSubmit(res SubmitResult) {
	e.submitting = false
	if res.Err != nil {
		if e.log != nil {
			if res.RefNo != "" {
				e.log.Error("application %s created but uploads stopped after %d: %v", res.RefNo, res.Uploaded, res.Err)
			} else {
				e.log.Error("submission failed: %v", res.Err)
			}
		}
		return
	}
	e.submitted = true
	e.refNo = res.RefNo
	if e.drafts != nil {
		if err := e.drafts.Clear(); err != nil && e.log != nil {
			e.log.Warn("draft cleanup failed: %v", err)
		}
	}
	if e.log != nil {
		e.log.Info("application %s submitted with %d documents", res.RefNo, res.Uploaded)
	}
}
