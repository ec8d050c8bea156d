package wizard

import (
	"github.com/abakada/admissions-portal/internal/admission"
)

// SummaryRow is one label/value line on the review step. Empty values render
// as a dash by the view, not here, so tests compare raw data.
type SummaryRow struct {
	Label string
	Value string
}

// Summary is the review-step projection of everything entered so far.
type Summary struct {
	Sections []SummarySection
}

// SummarySection groups rows under a heading mirroring the earlier steps.
type SummarySection struct {
	Title string
	Rows  []SummaryRow
}

// Summary builds the review projection. Dropdown codes resolve to their
// display text, parent names collapse to full names, and the education and
// document lists reflect the gates that let the applicant get this far.
func (e *Engine) Summary() Summary {
	v := func(name string) string { return e.values[name] }
	opt := func(field string) string {
		return admission.ResolveOption(e.options[field], v(field))
	}

	agent := opt("agent")
	if v("agent") == admission.ManualAgent {
		agent = v("manual_agent_name")
	}

	admissionRows := []SummaryRow{
		{Label: "Student Category", Value: v("student_category")},
		{Label: "Program", Value: v("program")},
		{Label: "Referral Agent", Value: agent},
	}

	personalRows := []SummaryRow{
		{Label: "Full Name", Value: admission.JoinNames(v("first_name"), v("middle_name"), v("last_name"), v("suffix"))},
		{Label: "Gender", Value: v("gender")},
		{Label: "Date of Birth", Value: admission.FormatDate(v("date_of_birth"))},
		{Label: "Email", Value: v("student_email_id")},
		{Label: "Mobile", Value: v("student_mobile_number")},
		{Label: "Home Phone", Value: v("home_phone_number")},
		{Label: "Address", Value: admission.JoinNames(v("address_line_1"), v("address_line_2"))},
		{Label: "Barangay", Value: opt("barangay")},
		{Label: "City / Municipality", Value: opt("city")},
		{Label: "Province", Value: opt("province")},
		{Label: "Region", Value: opt("region")},
		{Label: "Zip Code", Value: v("pincode")},
		{Label: "Living with Parents", Value: v("living_with_parents")},
		{Label: "Father", Value: admission.JoinNames(v("father_first_name"), v("father_last_name"), v("father_suffix"))},
		{Label: "Mother", Value: admission.JoinNames(v("mother_first_name"), v("mother_last_name"))},
		{Label: "Emergency Contact", Value: v("emergency_contact_name")},
		{Label: "Relationship", Value: v("emergency_relationship")},
		{Label: "Emergency Contact #", Value: v("emergency_contact_number")},
	}

	var educationRows []SummaryRow
	if e.alsPasser {
		educationRows = append(educationRows, SummaryRow{Label: "ALS", Value: "ALS Passer"})
	}
	for _, s := range e.schools {
		educationRows = append(educationRows, SummaryRow{Label: s.Level, Value: s.Name})
	}

	var documentRows []SummaryRow
	for _, a := range e.attachments {
		documentRows = append(documentRows, SummaryRow{Label: a.Label, Value: a.Filename})
	}

	return Summary{Sections: []SummarySection{
		{Title: "Admission Details", Rows: admissionRows},
		{Title: "Personal & Address", Rows: personalRows},
		{Title: "Education", Rows: educationRows},
		{Title: "Documents", Rows: documentRows},
	}}
}
