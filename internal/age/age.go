// Package age derives a child's age from a birth date.
//
// Months are whole days divided by a fixed average month length, not
// calendar months.
package age

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/hyperengineering/nurture/internal/types"
)

// DaysPerMonth is the average month length used to convert days to months.
const DaysPerMonth = 30.44

// Fallback age used when the birth date is missing or unparseable.
// FallbackDays is the smallest day count for which Months returns
// FallbackMonths, so both views of a fallback Age describe the same child.
const (
	FallbackMonths = 24
	FallbackDays   = 731 // ceil(FallbackMonths * DaysPerMonth)
)

// Warning codes attached to a resolved Age.
const (
	WarnBirthDateMissing  = "birth_date_missing"
	WarnBirthDateInvalid  = "birth_date_invalid"
	WarnBirthDateInFuture = "birth_date_in_future"
)

const day = 24 * time.Hour

// Age is a resolved, non-negative age.
type Age struct {
	Days     int      `json:"days"`
	Months   int      `json:"months"`
	Warnings []string `json:"warnings,omitempty"`
}

// Estimated reports whether the age was substituted or clamped.
func (a Age) Estimated() bool { return len(a.Warnings) > 0 }

// Days returns whole days between birth and now, floored.
// A birth date after now yields a negative count.
func Days(birth, now time.Time) int {
	return int(math.Floor(float64(now.Sub(birth)) / float64(day)))
}

// Months converts whole days to whole months, floored.
func Months(days int) int {
	return int(math.Floor(float64(days) / DaysPerMonth))
}

// Raw returns the unguarded day and month counts; both are negative for a
// birth date in the future.
func Raw(birth, now time.Time) (days, months int) {
	days = Days(birth, now)
	return days, Months(days)
}

// Resolve computes the age at now. A zero birth date falls back to the
// documented defaults and a future birth date clamps to zero; both cases
// carry a warning instead of an error.
func Resolve(birth, now time.Time) Age {
	if birth.IsZero() {
		return fallback(WarnBirthDateMissing)
	}
	days := Days(birth, now)
	if days < 0 {
		return Age{Warnings: []string{WarnBirthDateInFuture}}
	}
	return Age{Days: days, Months: Months(days)}
}

// ResolveString parses s as an RFC 3339 timestamp or a YYYY-MM-DD date
// and resolves it at now.
func ResolveString(s string, now time.Time) Age {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback(WarnBirthDateMissing)
	}
	birth, err := Parse(s)
	if err != nil {
		return fallback(WarnBirthDateInvalid)
	}
	return Resolve(birth, now)
}

// Parse accepts an RFC 3339 timestamp or a YYYY-MM-DD date (taken as UTC midnight).
func Parse(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse birth date %q: %w", s, err)
	}
	return t, nil
}

func fallback(warning string) Age {
	return Age{Days: FallbackDays, Months: FallbackMonths, Warnings: []string{warning}}
}

// Describe renders an age in days as a short label such as "12 days old",
// "5 months old" or "2 years 4 months old". The label uses 30-day months
// and 365-day years.
func Describe(days int) string {
	if days < 0 {
		days = 0
	}
	switch {
	case days < 30:
		return plural(days, "day") + " old"
	case days < 365:
		return plural(days/30, "month") + " old"
	}
	years := days / 365
	months := (days % 365) / 30
	if months == 0 {
		return plural(years, "year") + " old"
	}
	return plural(years, "year") + " " + plural(months, "month") + " old"
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// StageFor maps an age in months onto the onboarding stage it belongs to.
func StageFor(months int) types.Stage {
	switch {
	case months < 0:
		return types.StageExpecting
	case months < 3:
		return types.StageNewborn
	case months < 12:
		return types.StageInfant
	default:
		return types.StageToddler
	}
}

// EstimatedBirthDate returns a plausible birth date for a stage picked during
// onboarding when the caregiver has not entered one. Expecting parents get a
// due date a month out.
func EstimatedBirthDate(stage types.Stage, now time.Time) time.Time {
	switch stage {
	case types.StageExpecting:
		return now.Add(30 * day)
	case types.StageInfant:
		return now.Add(-180 * day)
	case types.StageToddler:
		return now.Add(-730 * day)
	default:
		return now.Add(-7 * day)
	}
}

// FormatRange renders an age window for display: "2-4 months" below a year,
// otherwise whole years such as "1-2 years".
func FormatRange(r types.AgeRange) string {
	if r.Max < 12 {
		return fmt.Sprintf("%d-%d months", r.Min, r.Max)
	}
	return fmt.Sprintf("%d-%d years", r.Min/12, r.Max/12)
}
