package api

import (
	"net/http"

	"github.com/hyperengineering/nurture/internal/age"
	"github.com/hyperengineering/nurture/internal/measure"
)

// MeasurementsResponse describes the measurement form for the child.
type MeasurementsResponse struct {
	Locale  string            `json:"locale"`
	Units   measure.Units     `json:"units"`
	Age     age.Age           `json:"age"`
	Fields  measure.Fields    `json:"fields"`
	Current measure.Reading   `json:"current"`
	Display map[string]string `json:"display,omitempty"`
	Tips    []string          `json:"tips"`
}

// Measurements handles GET /api/v1/measurements. The unit system comes
// from ?locale= or, failing that, the Accept-Language header.
func (h *Handler) Measurements(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	locale := r.URL.Query().Get("locale")
	if locale == "" {
		locale = r.Header.Get("Accept-Language")
	}
	tag := measure.ParseLocale(locale)
	units := measure.Detect(tag)

	var birth string
	var weight, height, head, temp *float64
	if c := user.Child; c != nil {
		birth = c.BirthDate
		weight, height, head, temp = c.Weight, c.Height, c.HeadCircumference, c.Temperature
	}
	a := age.ResolveString(birth, h.now())
	reading := measure.FromMetric(weight, height, head, temp, units)

	display := make(map[string]string)
	add := func(key string, v *float64, unit string) {
		if v != nil {
			display[key] = measure.FormatLocal(tag, *v, unit)
		}
	}
	add("weight", reading.Weight, units.Weight)
	add("height", reading.Height, units.Height)
	add("head_circumference", reading.HeadCircumference, units.Height)
	add("temperature", reading.Temperature, units.Temperature)

	writeJSON(w, http.StatusOK, MeasurementsResponse{
		Locale:  tag.String(),
		Units:   units,
		Age:     a,
		Fields:  measure.FieldsForAge(a.Months, units),
		Current: reading,
		Display: display,
		Tips:    measure.Tips(a.Months),
	})
}

// Percentiles handles GET /api/v1/measurements/percentiles. Growth
// percentiles need reference growth tables that the service does not ship.
func (h *Handler) Percentiles(w http.ResponseWriter, r *http.Request) {
	WriteProblem(w, r, http.StatusNotImplemented, "Growth percentiles are not available")
}
