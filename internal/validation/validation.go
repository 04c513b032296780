package validation

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/nurture/internal/types"
)

// Field length limits.
const (
	MaxNameLength        = 100
	MaxTitleLength       = 200
	MaxDescriptionLength = 4000
	MaxTags              = 20
	MaxTagLength         = 40
)

// Phone numbers are accepted with 10 to 15 digits.
const (
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
	CodeLength     = 4
)

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// Text runs the standard checks for a free-text field: valid UTF-8,
// no null bytes, at most max runes.
func (c *Collector) Text(field, value string, max int) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{Field: field, Message: "must be valid UTF-8"}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{Field: field, Message: "must not contain null bytes"}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateULID returns an error if the value is not a valid ULID.
func ValidateULID(field, value string) *ValidationError {
	if len(value) != ulid.EncodedSize {
		return &ValidationError{Field: field, Message: "must be a valid ULID (26 characters)"}
	}
	if _, err := ulid.ParseStrict(value); err != nil {
		return &ValidationError{Field: field, Message: "must be a valid ULID (invalid character)"}
	}
	return nil
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: field, Message: "is required"}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum[T ~string](field string, value T, allowed []T) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(names, ", ")),
	}
}

// ValidateRange returns an error if the value is outside [min, max].
func ValidateRange(field string, value, min, max float64) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %.1f and %.1f", min, max),
		}
	}
	return nil
}

// NormalizePhone strips the punctuation people type into phone numbers,
// keeping a leading "+" and the digits.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	for i, r := range phone {
		switch {
		case unicode.IsDigit(r) && r < utf8.RuneSelf:
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePhone checks a normalized phone number.
func ValidatePhone(field, phone string) *ValidationError {
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must have between %d and %d digits", MinPhoneDigits, MaxPhoneDigits),
		}
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return &ValidationError{Field: field, Message: "must contain only digits"}
		}
	}
	return nil
}

// ValidateCode checks the shape of a one-time code. It does not verify it.
func ValidateCode(field, code string) *ValidationError {
	if len(code) != CodeLength {
		return &ValidationError{Field: field, Message: fmt.Sprintf("must be %d digits", CodeLength)}
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return &ValidationError{Field: field, Message: fmt.Sprintf("must be %d digits", CodeLength)}
		}
	}
	return nil
}

// ValidateDate returns an error unless value is a YYYY-MM-DD date.
func ValidateDate(field, value string) *ValidationError {
	if _, err := time.Parse(time.DateOnly, value); err != nil {
		return &ValidationError{Field: field, Message: "must be a date in YYYY-MM-DD format"}
	}
	return nil
}

// ValidateBirthDate accepts a YYYY-MM-DD date or an RFC 3339 timestamp.
func ValidateBirthDate(field, value string) *ValidationError {
	if _, err := time.Parse(time.RFC3339, value); err == nil {
		return nil
	}
	if _, err := time.Parse(time.DateOnly, value); err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: "must be a YYYY-MM-DD date or RFC 3339 timestamp"}
}

// ValidateMoment checks a memory submitted by a caregiver.
func ValidateMoment(m types.Moment) []ValidationError {
	var c Collector
	c.Add(ValidateRequired("title", m.Title))
	c.Text("title", m.Title, MaxTitleLength)
	c.Text("description", m.Description, MaxDescriptionLength)
	c.Add(ValidateEnum("type", m.Type, types.MomentTypes))
	if len(m.Tags) > MaxTags {
		c.Add(&ValidationError{Field: "tags", Message: fmt.Sprintf("must not exceed %d tags", MaxTags)})
	}
	for i, tag := range m.Tags {
		field := fmt.Sprintf("tags[%d]", i)
		c.Add(ValidateRequired(field, tag))
		c.Text(field, tag, MaxTagLength)
	}
	return c.Errors()
}

// ValidateCheckIn checks a daily check-in. Mood and sleep are required.
func ValidateCheckIn(ci types.CheckIn) []ValidationError {
	var c Collector
	c.Add(ValidateDate("date", ci.Date))
	c.Add(ValidateEnum("mood", ci.Mood, types.Moods))
	c.Add(ValidateEnum("sleep", ci.Sleep, types.SleepQualities))
	seen := make(map[string]bool, len(ci.Activities))
	for i, a := range ci.Activities {
		field := fmt.Sprintf("activities[%d]", i)
		c.Add(ValidateEnum(field, a, types.CheckInActivities))
		if seen[a] {
			c.Add(&ValidationError{Field: field, Message: "is duplicated"})
		}
		seen[a] = true
	}
	return c.Errors()
}

// Plausible metric bounds for child measurements.
var (
	WeightRange      = [2]float64{0.3, 60}
	HeightRange      = [2]float64{20, 150}
	HeadCircumRange  = [2]float64{20, 60}
	TemperatureRange = [2]float64{30, 45}
)

// ValidateChild checks the child profile fields that are set.
func ValidateChild(child types.Child) []ValidationError {
	var c Collector
	c.Text("child.name", child.Name, MaxNameLength)
	if child.Stage != "" {
		c.Add(ValidateEnum("child.stage", child.Stage, types.Stages))
	}
	if child.ParentType != "" {
		c.Add(ValidateEnum("child.parent_type", child.ParentType, types.ParentTypes))
	}
	if child.BirthDate != "" {
		c.Add(ValidateBirthDate("child.birth_date", child.BirthDate))
	}
	measure := func(field string, v *float64, r [2]float64) {
		if v != nil {
			c.Add(ValidateRange(field, *v, r[0], r[1]))
		}
	}
	measure("child.weight", child.Weight, WeightRange)
	measure("child.height", child.Height, HeightRange)
	measure("child.head_circumference", child.HeadCircumference, HeadCircumRange)
	measure("child.temperature", child.Temperature, TemperatureRange)
	return c.Errors()
}
