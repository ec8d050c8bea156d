package admission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidEmail(t *testing.T) {
	cases := []struct {
		email string
		ok    bool
	}{
		{"juan.delacruz@example.com", true},
		{"a+b_c%d@sub.domain.ph", true},
		{"short@x.io", true},
		{"", false},
		{"no-at-sign.example.com", false},
		{"user@domain", false},
		{"user@domain.c", false},
		{"user name@example.com", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, ValidEmail(tc.email), "email %q", tc.email)
	}
}

func TestValidMobile(t *testing.T) {
	cases := []struct {
		mobile string
		ok     bool
	}{
		{"09123456789", true},
		{"09999999999", true},
		{"9123456789", false},
		{"091234567890", false},
		{"0912345678", false},
		{"+639123456789", false},
		{"0912345678a", false},
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, ValidMobile(tc.mobile), "mobile %q", tc.mobile)
	}
}

func TestAgeCountsCalendarDays(t *testing.T) {
	on := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	// Birthday already passed this year.
	assert.Equal(t, 16, Age(time.Date(2010, 3, 1, 0, 0, 0, 0, time.UTC), on))
	// Birthday is exactly today.
	assert.Equal(t, 16, Age(time.Date(2010, 8, 31, 0, 0, 0, 0, time.UTC), on))
	// Birthday is tomorrow; still a year younger.
	assert.Equal(t, 15, Age(time.Date(2010, 9, 1, 0, 0, 0, 0, time.UTC), on))
}

func TestValidateBirthDate(t *testing.T) {
	on := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, ValidateBirthDate("2005-06-12", on))
	assert.NoError(t, ValidateBirthDate("2010-08-31", on), "turns 16 today")

	assert.Error(t, ValidateBirthDate("2010-09-01", on), "one day short of 16")
	assert.Error(t, ValidateBirthDate("1899-12-31", on), "below year floor")
	assert.Error(t, ValidateBirthDate("12/06/2005", on), "wrong layout")
	assert.Error(t, ValidateBirthDate("", on))
}

func TestValidatePayload(t *testing.T) {
	valid := Payload{
		Category:    CategoryNew,
		Program:     "BS Criminology",
		FirstName:   "Juan",
		LastName:    "Dela Cruz",
		Gender:      "Male",
		DateOfBirth: "2005-06-12",
		Email:       "juan@example.com",
		Mobile:      "09123456789",
	}
	require.Empty(t, ValidatePayload(valid))

	broken := valid
	broken.Email = "not-an-email"
	broken.Mobile = "12345"
	broken.FirstName = ""
	msgs := ValidatePayload(broken)
	require.Len(t, msgs, 3)
	joined := ""
	for _, m := range msgs {
		joined += m + "\n"
	}
	assert.Contains(t, joined, "first_name")
	assert.Contains(t, joined, "student_email_id")
	assert.Contains(t, joined, "student_mobile_number")
}
