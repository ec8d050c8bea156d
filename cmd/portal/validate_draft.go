package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/abakada/admissions-portal/internal/admission"
)

// handleValidateDraftCommand checks a saved draft without launching the TUI.
// Useful when support receives a draft file from an applicant who cannot get
// past the review step.
func handleValidateDraftCommand() bool {
	if len(os.Args) < 2 || os.Args[1] != "validate-draft" {
		return false
	}
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "Usage: portal validate-draft /path/to/draft.json")
		os.Exit(2)
	}

	data, err := os.ReadFile(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}
	var doc struct {
		Values map[string]string `json:"values"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	v := doc.Values
	msgs := admission.ValidatePayload(admission.Payload{
		Category:    v["student_category"],
		Program:     v["program"],
		FirstName:   v["first_name"],
		LastName:    v["last_name"],
		Gender:      v["gender"],
		DateOfBirth: v["date_of_birth"],
		Email:       v["student_email_id"],
		Mobile:      v["student_mobile_number"],
	})
	if len(msgs) == 0 {
		fmt.Printf("OK: %s (%d fields)\n", os.Args[2], len(v))
		os.Exit(0)
	}
	fmt.Printf("Invalid: %s\n", os.Args[2])
	for _, msg := range msgs {
		fmt.Printf("- %s\n", msg)
	}
	os.Exit(1)
	return true
}
