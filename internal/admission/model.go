// internal/admission/model.go
//
// Domain model for a single admissions submission. Field names follow the
// backend doctype so records convert losslessly in both directions.

package admission

import (
	"strings"

	"github.com/abakada/admissions-portal/internal/collab"
)

// Doctypes the portal reads and writes through the collaborator.
const (
	DoctypeApplicant = "Student Applicant"
	DoctypeProgram   = "Program"
	DoctypeAgent     = "Sales Partner"
	DoctypeUser      = "User"

	// NamingSeries drives the server-assigned reference code.
	NamingSeries = "EDU-APP-.YYYY.-"
)

// Status is the approval state of an application. Transitions are unordered:
// any status may be set from any other, each by explicit staff action.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// AllStatuses in display order.
var AllStatuses = []Status{StatusPending, StatusApproved, StatusRejected}

// Label returns the human form of a status badge.
func (s Status) Label() string {
	switch s {
	case StatusPending, "":
		return "Pending"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	}
	// Unknown statuses pass through title-cased so the badge stays readable.
	lower := strings.ToLower(string(s))
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// Valid reports whether s names a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Student categories offered on the first wizard step.
const (
	CategoryNew           = "New Student"
	CategoryTransferee    = "Transferee"
	CategorySecondCourser = "Second Courser"
	CategoryReturnee      = "Returnee"
)

// Categories in display order.
var Categories = []string{CategoryNew, CategoryTransferee, CategorySecondCourser, CategoryReturnee}

// ManualAgent is the dropdown escape hatch for applicants whose referral
// agent is not in the catalog; the typed name rides in manual_agent_name.
const ManualAgent = "Manual_Entry"

// Guardian is one row of the guardians child table.
type Guardian struct {
	Name       string `json:"guardian_name"`
	Relation   string `json:"relation"`
	Occupation string `json:"occupation"`
	Mobile     string `json:"mobile_number"`
	Email      string `json:"email_address"`
}

// Sibling is one row of the siblings child table.
type Sibling struct {
	FullName    string `json:"full_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`
	Institution string `json:"institution"`
}

// PreviousSchool is one prior-school entry added on the education step.
type PreviousSchool struct {
	Level string `json:"level"`
	Name  string `json:"school_name"`
}

// Application is the list/detail projection of a Student Applicant record.
type Application struct {
	Name          string `json:"name"`
	FirstName     string `json:"first_name"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	Program       string `json:"program"`
	Category      string `json:"student_category"`
	Status        Status `json:"application_status"`
	Date          string `json:"application_date"`
	Creation      string `json:"creation"`
	Modified      string `json:"modified"`
	AssignedStaff string `json:"assigned_staff"`
	Agent         string `json:"agent"`
	Email         string `json:"student_email_id"`
	Mobile        string `json:"student_mobile_number"`

	// Detail-only fields, populated by Get.
	Gender       string           `json:"gender"`
	DateOfBirth  string           `json:"date_of_birth"`
	Nationality  string           `json:"nationality"`
	Religion     string           `json:"religion"`
	BloodGroup   string           `json:"blood_group"`
	MotherTongue string           `json:"mother_tongue"`
	HomePhone    string           `json:"home_phone_number"`
	AcademicYear string           `json:"academic_year"`
	AcademicTerm string           `json:"academic_term"`
	AddressLine1 string           `json:"address_line_1"`
	AddressLine2 string           `json:"address_line_2"`
	Barangay     string           `json:"barangay"`
	City         string           `json:"city"`
	Province     string           `json:"province"`
	Region       string           `json:"region"`
	Pincode      string           `json:"pincode"`
	Guardians    []Guardian       `json:"guardians"`
	Siblings     []Sibling        `json:"siblings"`
	Schools      []PreviousSchool `json:"previous_schools"`
}

// ListFields is the projection the dashboard requests for its table.
var ListFields = []string{
	"name", "first_name", "middle_name", "last_name",
	"program", "student_category", "application_status",
	"application_date", "creation", "modified", "assigned_staff",
	"student_email_id", "student_mobile_number",
}

// FromRecord converts a collaborator record into an Application.
func FromRecord(rec collab.Record) Application {
	app := Application{
		Name:          rec.Str("name"),
		FirstName:     rec.Str("first_name"),
		MiddleName:    rec.Str("middle_name"),
		LastName:      rec.Str("last_name"),
		Program:       rec.Str("program"),
		Category:      rec.Str("student_category"),
		Status:        Status(rec.Str("application_status")),
		Date:          rec.Str("application_date"),
		Creation:      rec.Str("creation"),
		Modified:      rec.Str("modified"),
		AssignedStaff: rec.Str("assigned_staff"),
		Agent:         rec.Str("agent"),
		Email:         rec.Str("student_email_id"),
		Mobile:        rec.Str("student_mobile_number"),
		Gender:        rec.Str("gender"),
		DateOfBirth:   rec.Str("date_of_birth"),
		Nationality:   rec.Str("nationality"),
		Religion:      rec.Str("religion"),
		BloodGroup:    rec.Str("blood_group"),
		MotherTongue:  rec.Str("mother_tongue"),
		HomePhone:     rec.Str("home_phone_number"),
		AcademicYear:  rec.Str("academic_year"),
		AcademicTerm:  rec.Str("academic_term"),
		AddressLine1:  rec.Str("address_line_1"),
		AddressLine2:  rec.Str("address_line_2"),
		Barangay:      rec.Str("barangay"),
		City:          rec.Str("city"),
		Province:      rec.Str("province"),
		Region:        rec.Str("region"),
		Pincode:       rec.Str("pincode"),
	}
	for _, row := range rec.Rows("guardians") {
		app.Guardians = append(app.Guardians, Guardian{
			Name:       row.Str("guardian_name"),
			Relation:   row.Str("relation"),
			Occupation: row.Str("occupation"),
			Mobile:     row.Str("mobile_number"),
			Email:      row.Str("email_address"),
		})
	}
	for _, row := range rec.Rows("siblings") {
		app.Siblings = append(app.Siblings, Sibling{
			FullName:    row.Str("full_name"),
			DateOfBirth: row.Str("date_of_birth"),
			Gender:      row.Str("gender"),
			Institution: row.Str("institution"),
		})
	}
	for _, row := range rec.Rows("previous_schools") {
		app.Schools = append(app.Schools, PreviousSchool{
			Level: row.Str("level"),
			Name:  row.Str("school_name"),
		})
	}
	return app
}

// FullName joins the non-empty name parts for display.
func (a Application) FullName() string {
	return JoinNames(a.FirstName, a.MiddleName, a.LastName)
}

// DocumentSlot is one named upload slot on the documents step.
type DocumentSlot struct {
	Field    string
	Label    string
	Required bool
}

// DocumentSlots returns the upload slots for a category. Honorable
// dismissal is mandatory for transferees and hidden otherwise.
func DocumentSlots(category string) []DocumentSlot {
	slots := []DocumentSlot{
		{Field: "birth_certificate", Label: "PSA Birth Certificate", Required: true},
		{Field: "report_card", Label: "Report Card / Form 138", Required: true},
		{Field: "good_moral", Label: "Certificate of Good Moral Character", Required: true},
		{Field: "id_photo", Label: "2x2 ID Photo", Required: true},
	}
	if category == CategoryTransferee {
		slots = append(slots, DocumentSlot{
			Field: "honorable_dismissal", Label: "Honorable Dismissal", Required: true,
		})
	}
	return slots
}
