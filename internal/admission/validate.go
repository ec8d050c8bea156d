// internal/admission/validate.go
//
// Field validation rules shared by the wizard and the submission payload.
// The struct-level check runs through go-playground/validator with custom
// tags so the final payload is verified once more, in one place, before it
// leaves the client.

package admission

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const (
	// MinAge is the youngest an applicant may be on the day they apply.
	MinAge = 16

	// minBirthYear rejects obvious typos in the birth-date field.
	minBirthYear = 1900

	// DateLayout is the wire format for all date fields.
	DateLayout = "2006-01-02"
)

var (
	emailRegex  = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	mobileRegex = regexp.MustCompile(`^09\d{9}$`)

	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Report errors against json field names, not Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerRule("app_email", "must be a valid email address", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	registerRule("ph_mobile", "must be a Philippine mobile number (09XXXXXXXXX)", func(fl validator.FieldLevel) bool {
		return ValidMobile(fl.Field().String())
	})
	registerRule("birth_date", fmt.Sprintf("applicant must be at least %d years old", MinAge), func(fl validator.FieldLevel) bool {
		return ValidateBirthDate(fl.Field().String(), time.Now()) == nil
	})
}

func registerRule(tag, text string, fn validator.Func) {
	_ = validate.RegisterValidation(tag, fn)
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, "{0} "+text, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidEmail applies full syntactic validation: local part, @, domain and a
// TLD of at least two letters.
func ValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidMobile accepts exactly 09 followed by nine digits.
func ValidMobile(s string) bool {
	return mobileRegex.MatchString(s)
}

// Age computes whole years between dob and the given day, counting calendar
// days rather than subtracting years, so a birthday later in the year does
// not inflate the result.
func Age(dob, on time.Time) int {
	years := on.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(on) {
		years--
	}
	return years
}

// ValidateBirthDate parses value as a date and enforces the year floor and
// minimum age relative to the given day.
func ValidateBirthDate(value string, on time.Time) error {
	dob, err := time.Parse(DateLayout, value)
	if err != nil {
		return fmt.Errorf("enter the date as YYYY-MM-DD")
	}
	if dob.Year() < minBirthYear {
		return fmt.Errorf("birth year must be %d or later", minBirthYear)
	}
	if age := Age(dob, on); age < MinAge {
		return fmt.Errorf("applicant must be at least %d years old (is %d)", MinAge, age)
	}
	return nil
}

// Payload is the submission shape the wizard assembles; tags gate the final
// client-side check before Create.
type Payload struct {
	Category    string `json:"student_category" validate:"required"`
	Program     string `json:"program" validate:"required"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Gender      string `json:"gender" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required,birth_date"`
	Email       string `json:"student_email_id" validate:"required,app_email"`
	Mobile      string `json:"student_mobile_number" validate:"required,ph_mobile"`
}

// ValidatePayload runs the struct check and flattens failures into
// human-readable messages.
func ValidatePayload(p Payload) []string {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(translator))
	}
	return msgs
}
