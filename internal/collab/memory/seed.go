package memory

import (
	"github.com/abakada/admissions-portal/internal/collab"
)

// Seed loads the demo fixtures: a handful of applications in every status,
// the program catalog, referral agents, assignable staff and a small
// address tree. Demo mode and most tests start from this data.
func Seed(s *Store) {
	for _, p := range []string{"BS Criminology", "BS Criminal Justice", "BS Forensic Science"} {
		s.Put("Program", p, collab.Record{"program_name": p})
	}

	s.Put("Sales Partner", "AGENT-0001", collab.Record{"partner_name": "Horizon Education Services"})
	s.Put("Sales Partner", "AGENT-0002", collab.Record{"partner_name": "Island Study Placements"})

	for _, u := range []struct{ email, fullName string }{
		{"staff@example.com", "Liza Navarro"},
		{"staff2@example.com", "Marco Ibarra"},
	} {
		s.Put("User", u.email, collab.Record{
			"full_name": u.fullName,
			"role":      "Admission Staff",
		})
	}

	seedAddresses(s)

	apps := []collab.Record{
		{
			"first_name": "Juan", "last_name": "Dela Cruz",
			"program": "BS Criminology", "student_category": "New Student",
			"application_status": "PENDING",
			"application_date":   "2024-02-01", "creation": "2024-02-01 09:00:00",
			"assigned_staff": "", "agent": "",
			"student_email_id":      "juan.delacruz@example.com",
			"student_mobile_number": "09123456789",
			"gender":                "Male", "date_of_birth": "2005-06-12",
			"address_line_1": "12 Mabini St", "barangay": "Poblacion",
			"city": "Quezon City", "province": "Metro Manila", "region": "NCR",
			"pincode": "1100",
			"guardians": []collab.Record{
				{"guardian_name": "Rosa Dela Cruz", "relation": "Mother", "mobile_number": "09170000001"},
			},
			"previous_schools": []collab.Record{
				{"level": "Senior High School", "school_name": "Quezon City High School"},
			},
		},
		{
			"first_name": "Maria", "last_name": "Santos",
			"program": "BS Criminal Justice", "student_category": "Transferee",
			"application_status": "APPROVED",
			"application_date":   "2024-02-02", "creation": "2024-02-02 10:30:00",
			"assigned_staff": "staff@example.com", "agent": "Liza Navarro",
			"student_email_id":      "maria.santos@example.com",
			"student_mobile_number": "09234567890",
			"gender":                "Female", "date_of_birth": "2003-11-23",
		},
		{
			"first_name": "Jose", "last_name": "Reyes",
			"program": "BS Criminology", "student_category": "New Student",
			"application_status": "REJECTED",
			"application_date":   "2024-02-03", "creation": "2024-02-03 14:12:00",
			"assigned_staff": "staff@example.com", "agent": "Liza Navarro",
			"student_email_id":      "jose.reyes@example.com",
			"student_mobile_number": "09345678901",
		},
		{
			"first_name": "Ana", "last_name": "Garcia",
			"program": "BS Forensic Science", "student_category": "Second Courser",
			"application_status": "PENDING",
			"application_date":   "2024-02-04", "creation": "2024-02-04 08:45:00",
			"assigned_staff": "", "agent": "",
			"student_email_id":      "ana.garcia@example.com",
			"student_mobile_number": "09456789012",
		},
		{
			"first_name": "Pedro", "last_name": "Martinez",
			"program": "BS Criminology", "student_category": "New Student",
			"application_status": "APPROVED",
			"application_date":   "2024-02-05", "creation": "2024-02-05 16:20:00",
			"assigned_staff": "staff@example.com", "agent": "Liza Navarro",
			"student_email_id":      "pedro.martinez@example.com",
			"student_mobile_number": "09567890123",
		},
	}
	for i, app := range apps {
		s.Put("Student Applicant", seedName(i+1), app)
	}
}

func seedName(n int) string {
	return "24-00000" + string(rune('0'+n))
}

// seedAddresses loads a minimal PSGC-style tree, one branch deep, enough to
// exercise the cascading address dropdowns.
func seedAddresses(s *Store) {
	s.Put("Region", "130000000", collab.Record{"region_name": "NCR"})
	s.Put("Region", "040000000", collab.Record{"region_name": "CALABARZON"})

	s.Put("Province", "133900000", collab.Record{"province_name": "Metro Manila", "region": "130000000"})
	s.Put("Province", "042100000", collab.Record{"province_name": "Cavite", "region": "040000000"})

	s.Put("City", "137404000", collab.Record{"city_name": "Quezon City", "province": "133900000"})
	s.Put("City", "042103000", collab.Record{"city_name": "Bacoor", "province": "042100000"})

	s.Put("Barangay", "137404001", collab.Record{"barangay_name": "Poblacion", "city": "137404000"})
	s.Put("Barangay", "042103001", collab.Record{"barangay_name": "Molino I", "city": "042103000"})
}

// NewSeeded is the demo-mode entry point: a store preloaded with fixtures.
func NewSeeded(opts ...Option) *Store {
	s := New(opts...)
	Seed(s)
	return s
}
