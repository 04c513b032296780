package measure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		locale string
		want   Units
	}{
		{"", Imperial},
		{"en-US", Imperial},
		{"es-US", Imperial},
		{"en-LR", Imperial},
		{"my-MM", Imperial},
		{"en-GB", Metric},
		{"de-DE", Metric},
		{"fr", Metric},
		{"en-US,en;q=0.9", Imperial},
		{"de-CH, en-US;q=0.5", Metric},
		{"!!not a locale", Imperial},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, Detect(ParseLocale(tt.locale)))
		})
	}
}

func TestFieldsForAge(t *testing.T) {
	newborn := FieldsForAge(2, Metric)
	assert.Equal(t, "Length", newborn.Height.Label)
	assert.True(t, newborn.HeadCircumference.Required)
	require.NotNil(t, newborn.Temperature)
	assert.False(t, newborn.Temperature.Required)
	assert.Equal(t, Celsius, newborn.Temperature.Unit)
	assert.Equal(t, "3.5", newborn.Weight.Placeholder)

	toddler := FieldsForAge(30, Imperial)
	assert.Equal(t, "Height", toddler.Height.Label)
	assert.True(t, toddler.HeadCircumference.Required)
	assert.Nil(t, toddler.Temperature)
	assert.Equal(t, Inches, toddler.HeadCircumference.Unit)
	assert.Equal(t, "7.7", toddler.Weight.Placeholder)

	older := FieldsForAge(36, Metric)
	assert.False(t, older.HeadCircumference.Required)
	assert.True(t, older.Weight.Required)
}

func TestConversions(t *testing.T) {
	lbs, err := ConvertWeight(10, Kilograms, Pounds)
	require.NoError(t, err)
	assert.InDelta(t, 22.0462, lbs, 1e-9)

	kg, err := ConvertWeight(lbs, Pounds, Kilograms)
	require.NoError(t, err)
	assert.InDelta(t, 10, kg, 1e-9)

	in, err := ConvertHeight(254, Centimeter, Inches)
	require.NoError(t, err)
	assert.InDelta(t, 100, in, 1e-9)

	f, err := ConvertTemperature(37, Celsius, Fahrenheit)
	require.NoError(t, err)
	assert.InDelta(t, 98.6, f, 1e-9)

	c, err := ConvertTemperature(212, Fahrenheit, Celsius)
	require.NoError(t, err)
	assert.InDelta(t, 100, c, 1e-9)

	same, err := ConvertHeight(50, Centimeter, Centimeter)
	require.NoError(t, err)
	assert.Equal(t, 50.0, same)

	_, err = ConvertWeight(1, Kilograms, Inches)
	assert.Error(t, err)
	_, err = ConvertTemperature(1, "kelvin", "kelvin")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "3.5 kg", Format(3.456, Kilograms))
	assert.Equal(t, "50 cm", Format(50.04, Centimeter))
	assert.Equal(t, "7.7 lbs", FormatLocal(language.AmericanEnglish, 7.7162, Pounds))
}

func TestTips(t *testing.T) {
	for _, months := range []int{0, 11, 12, 23, 24, 60} {
		tips := Tips(months)
		assert.Len(t, tips, 5)
		assert.Equal(t, "Record measurements in a growth diary", tips[len(tips)-1])
	}
	assert.Contains(t, Tips(18), "Measure height while lying down until 2 years old")
	assert.Contains(t, Tips(24), "Measure height while standing against a wall")
}

func TestFromMetric(t *testing.T) {
	w, h := 7.5, 68.0
	r := FromMetric(&w, &h, nil, nil, Imperial)
	require.NotNil(t, r.Weight)
	require.NotNil(t, r.Height)
	assert.Equal(t, 16.5, *r.Weight)
	assert.Equal(t, 26.8, *r.Height)
	assert.Nil(t, r.HeadCircumference)
	assert.Nil(t, r.Temperature)

	m := FromMetric(&w, nil, nil, nil, Metric)
	assert.Equal(t, 7.5, *m.Weight)
}
