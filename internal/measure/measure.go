// Package measure handles unit systems and the growth measurements
// recorded for a child.
package measure

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultLocale is assumed when the caller sends none.
const DefaultLocale = "en-US"

// Unit names.
const (
	Kilograms  = "kg"
	Pounds     = "lbs"
	Centimeter = "cm"
	Inches     = "inches"
	Celsius    = "celsius"
	Fahrenheit = "fahrenheit"
)

const (
	poundsPerKilogram  = 2.20462
	centimetersPerInch = 2.54
)

// Units is the unit triple for one measurement system.
type Units struct {
	Weight      string `json:"weight"`
	Height      string `json:"height"`
	Temperature string `json:"temperature"`
}

var (
	Metric   = Units{Weight: Kilograms, Height: Centimeter, Temperature: Celsius}
	Imperial = Units{Weight: Pounds, Height: Inches, Temperature: Fahrenheit}
)

// Imperial regions.
var imperialRegions = map[string]bool{"US": true, "LR": true, "MM": true}

// ParseLocale parses a BCP 47 tag or an Accept-Language header value.
// Unparseable input falls back to DefaultLocale.
func ParseLocale(s string) language.Tag {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.MustParse(DefaultLocale)
	}
	if tags, _, err := language.ParseAcceptLanguage(s); err == nil && len(tags) > 0 {
		return tags[0]
	}
	if tag, err := language.Parse(s); err == nil {
		return tag
	}
	return language.MustParse(DefaultLocale)
}

// Detect picks the unit system for a locale. Only an explicit region
// selects imperial units.
func Detect(tag language.Tag) Units {
	region, conf := tag.Region()
	if conf == language.Exact && imperialRegions[region.String()] {
		return Imperial
	}
	return Metric
}

// Field describes one measurement input for the child's age.
type Field struct {
	Required    bool   `json:"required"`
	Label       string `json:"label"`
	Unit        string `json:"unit"`
	Placeholder string `json:"placeholder"`
}

// Fields lists the measurement inputs that apply at an age.
// Temperature is nil past the first six months.
type Fields struct {
	Weight            Field  `json:"weight"`
	Height            Field  `json:"height"`
	HeadCircumference Field  `json:"head_circumference"`
	Temperature       *Field `json:"temperature,omitempty"`
}

// FieldsForAge returns the inputs to offer for a child of ageMonths.
func FieldsForAge(ageMonths int, u Units) Fields {
	metric := u.Weight == Kilograms
	pick := func(m, i string) string {
		if metric {
			return m
		}
		return i
	}

	heightLabel := "Height"
	if ageMonths < 24 {
		heightLabel = "Length"
	}

	f := Fields{
		Weight:            Field{Required: true, Label: "Weight", Unit: u.Weight, Placeholder: pick("3.5", "7.7")},
		Height:            Field{Required: true, Label: heightLabel, Unit: u.Height, Placeholder: pick("50", "20")},
		HeadCircumference: Field{Required: ageMonths < 36, Label: "Head Circumference", Unit: u.Height, Placeholder: pick("35", "14")},
	}
	if ageMonths < 6 {
		f.Temperature = &Field{Label: "Temperature", Unit: u.Temperature, Placeholder: pick("36.5", "97.7")}
	}
	return f
}

// ConvertWeight converts between kg and lbs.
func ConvertWeight(v float64, from, to string) (float64, error) {
	switch {
	case from == to && (from == Kilograms || from == Pounds):
		return v, nil
	case from == Kilograms && to == Pounds:
		return v * poundsPerKilogram, nil
	case from == Pounds && to == Kilograms:
		return v / poundsPerKilogram, nil
	}
	return 0, fmt.Errorf("cannot convert weight from %q to %q", from, to)
}

// ConvertHeight converts between cm and inches.
func ConvertHeight(v float64, from, to string) (float64, error) {
	switch {
	case from == to && (from == Centimeter || from == Inches):
		return v, nil
	case from == Centimeter && to == Inches:
		return v / centimetersPerInch, nil
	case from == Inches && to == Centimeter:
		return v * centimetersPerInch, nil
	}
	return 0, fmt.Errorf("cannot convert height from %q to %q", from, to)
}

// ConvertTemperature converts between celsius and fahrenheit.
func ConvertTemperature(v float64, from, to string) (float64, error) {
	switch {
	case from == to && (from == Celsius || from == Fahrenheit):
		return v, nil
	case from == Celsius && to == Fahrenheit:
		return v*9/5 + 32, nil
	case from == Fahrenheit && to == Celsius:
		return (v - 32) * 5 / 9, nil
	}
	return 0, fmt.Errorf("cannot convert temperature from %q to %q", from, to)
}

// Round rounds to one decimal place.
func Round(v float64) float64 {
	return math.Round(v*10) / 10
}

// Format renders a value rounded to one decimal with its unit.
func Format(v float64, unit string) string {
	return fmt.Sprintf("%g %s", Round(v), unit)
}

// FormatLocal is Format with locale-specific digits and separators.
func FormatLocal(tag language.Tag, v float64, unit string) string {
	return message.NewPrinter(tag).Sprintf("%v %s", Round(v), unit)
}

// Tips returns measuring advice for the child's age.
func Tips(ageMonths int) []string {
	var tips []string
	switch {
	case ageMonths < 12:
		tips = []string{
			"Measure at the same time each day for consistency",
			"Use a baby scale and measuring board for accuracy",
			"Remove diaper and clothes for weight measurements",
		}
	case ageMonths < 24:
		tips = []string{
			"Measure height while lying down until 2 years old",
			"Use a growth chart to track progress over time",
			"Don't worry about day-to-day fluctuations",
		}
	default:
		tips = []string{
			"Measure height while standing against a wall",
			"Track growth trends rather than single measurements",
			"Consult your pediatrician if you notice sudden changes",
		}
	}
	return append(tips,
		"Keep a consistent measurement schedule",
		"Record measurements in a growth diary",
	)
}

// Reading is a child's stored measurements expressed in display units.
type Reading struct {
	Weight            *float64 `json:"weight,omitempty"`
	Height            *float64 `json:"height,omitempty"`
	HeadCircumference *float64 `json:"head_circumference,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
}

// FromMetric converts stored metric values to u, rounded for display.
func FromMetric(weight, height, head, temp *float64, u Units) Reading {
	conv := func(v *float64, fn func(float64, string, string) (float64, error), from, to string) *float64 {
		if v == nil {
			return nil
		}
		out, err := fn(*v, from, to)
		if err != nil {
			return nil
		}
		out = Round(out)
		return &out
	}
	return Reading{
		Weight:            conv(weight, ConvertWeight, Kilograms, u.Weight),
		Height:            conv(height, ConvertHeight, Centimeter, u.Height),
		HeadCircumference: conv(head, ConvertHeight, Centimeter, u.Height),
		Temperature:       conv(temp, ConvertTemperature, Celsius, u.Temperature),
	}
}
