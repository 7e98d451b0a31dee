package birth

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	dateLayout        = "2006-01-02"
	minLocationLength = 3
	maxLocationLength = 100
	maxNameLength     = 100
)

// maxUTCOffset is the easternmost offset in use (Pacific/Kiritimati).
const maxUTCOffset = 14 * time.Hour

// MinDate is the earliest birth date the calculation service supports.
var MinDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	clockLayouts = []string{"15:04", "15:04:05", "3:04PM", "3:04 PM", "3:04pm", "3:04 pm"}
)

// Field names reported in validation results.
const (
	FieldDate     = "birthDate"
	FieldTime     = "birthTime"
	FieldLocation = "location"
	FieldGender   = "gender"
	FieldName     = "name"
)

// FieldResult is the pass/fail outcome for one submitted field.
type FieldResult struct {
	Field   string `json:"field"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// ValidationResult aggregates field outcomes. Invalid input is a normal value, not an error.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Fields []FieldResult `json:"fields"`

	input Input
}

// Messages lists the human readable messages for failed fields.
func (r ValidationResult) Messages() []string {
	out := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		if !f.Valid {
			out = append(out, f.Message)
		}
	}
	return out
}

// Failed returns only the failing fields.
func (r ValidationResult) Failed() []FieldResult {
	out := make([]FieldResult, 0, len(r.Fields))
	for _, f := range r.Fields {
		if !f.Valid {
			out = append(out, f)
		}
	}
	return out
}

// Input returns the normalized input; ok is false when validation failed.
func (r ValidationResult) Input() (Input, bool) {
	return r.input, r.Valid
}

// Validate checks raw against the intake rules using now as the reference instant.
func Validate(raw RawInput, now time.Time) ValidationResult {
	var (
		in     Input
		fields = make([]FieldResult, 0, 5)
	)

	date, msg := validateDate(raw.Date, now)
	fields = append(fields, result(FieldDate, msg))
	in.Date = date

	hour, minute, msg := validateClock(raw.Time)
	fields = append(fields, result(FieldTime, msg))
	in.Hour, in.Minute = hour, minute

	location, msg := validateLocation(raw.Location)
	fields = append(fields, result(FieldLocation, msg))
	in.Location = location

	gender, msg := validateGender(raw.Gender)
	fields = append(fields, result(FieldGender, msg))
	in.Gender = gender

	name := strings.TrimSpace(tagPattern.ReplaceAllString(raw.Name, ""))
	msg = ""
	if utf8.RuneCountInString(name) > maxNameLength {
		msg = fmt.Sprintf("name is too long (max %d characters)", maxNameLength)
	}
	fields = append(fields, result(FieldName, msg))
	in.Name = name

	valid := true
	for _, f := range fields {
		valid = valid && f.Valid
	}
	if !valid {
		in = Input{}
	}
	return ValidationResult{Valid: valid, Fields: fields, input: in}
}

func result(field, msg string) FieldResult {
	return FieldResult{Field: field, Valid: msg == "", Message: msg}
}

func validateDate(raw string, now time.Time) (time.Time, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, "birth date is required"
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, "birth date must be a valid date in YYYY-MM-DD format"
	}
	if date.Before(MinDate) {
		return time.Time{}, "birth date must be on or after 1900-01-01"
	}
	if date.After(latestToday(now)) {
		return time.Time{}, "birth date cannot be in the future"
	}
	return date, ""
}

func validateClock(raw string) (int, int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, 0, "birth time is required"
	}
	for _, layout := range clockLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.Hour(), ts.Minute(), ""
		}
	}
	return 0, 0, "birth time must be a clock time such as 14:30"
}

func validateLocation(raw string) (string, string) {
	location := strings.TrimSpace(tagPattern.ReplaceAllString(raw, ""))
	location = strings.Join(strings.Fields(location), " ")
	n := utf8.RuneCountInString(location)
	switch {
	case n == 0:
		return "", "location is required"
	case n < minLocationLength:
		return "", fmt.Sprintf("location must be at least %d characters", minLocationLength)
	case n > maxLocationLength:
		return "", fmt.Sprintf("location is too long (max %d characters)", maxLocationLength)
	}
	return location, ""
}

func validateGender(raw string) (Gender, string) {
	switch Gender(strings.ToLower(strings.TrimSpace(raw))) {
	case GenderMale:
		return GenderMale, ""
	case GenderFemale:
		return GenderFemale, ""
	}
	return "", `gender must be "male" or "female"`
}

// latestToday is the latest calendar date in force anywhere at now, so a
// caller east of UTC can always enter their own local date.
func latestToday(now time.Time) time.Time {
	ahead := now.UTC().Add(maxUTCOffset)
	return time.Date(ahead.Year(), ahead.Month(), ahead.Day(), 0, 0, 0, 0, time.UTC)
}
