package api

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/nurture/internal/age"
	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/selection"
	"github.com/hyperengineering/nurture/internal/store"
	"github.com/hyperengineering/nurture/internal/types"
	"github.com/hyperengineering/nurture/internal/validation"
)

// Result states reported next to every selection.
const (
	StateOK    = "ok"
	StateEmpty = "empty"
)

func stateOf(empty bool) string {
	if empty {
		return StateEmpty
	}
	return StateOK
}

// queryAge resolves the age for a catalog query from ?age= (whole months)
// or ?birth_date=. With neither, the documented fallback age is used and
// reported as a warning.
func (h *Handler) queryAge(r *http.Request) (age.Age, *validation.ValidationError) {
	q := r.URL.Query()
	if s := q.Get("age"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return age.Age{}, &validation.ValidationError{Field: "age", Message: "must be a non-negative whole number of months"}
		}
		return age.Age{Months: n, Days: int(math.Ceil(float64(n) * age.DaysPerMonth))}, nil
	}
	return age.ResolveString(q.Get("birth_date"), h.now()), nil
}

// queryCompleted parses ?completed=a,b,c.
func queryCompleted(r *http.Request) selection.CompletedSet {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("completed"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return selection.NewCompletedSet(ids...)
}

func queryOr(r *http.Request, key, def string) string {
	if v := r.URL.Query().Get(key); v != "" {
		return v
	}
	return def
}

// MilestonesResponse is the milestone view at one age.
type MilestonesResponse struct {
	Age   age.Age `json:"age"`
	State string  `json:"state"`
	selection.MilestoneView
}

// Milestones handles GET /api/v1/milestones
func (h *Handler) Milestones(w http.ResponseWriter, r *http.Request) {
	var errs validation.Collector
	a, ageErr := h.queryAge(r)
	errs.Add(ageErr)
	category := types.Category(r.URL.Query().Get("category"))
	if category != "" {
		errs.Add(validation.ValidateEnum("category", category, types.MilestoneCategories))
	}
	if errs.HasErrors() {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", errs.Errors())
		return
	}

	mc, err := h.catalogs.Current().Milestones(queryOr(r, "catalog", h.opts.Dashboard.MilestoneCatalog))
	if err != nil {
		MapError(w, r, err)
		return
	}
	view := selection.SelectMilestones(mc, a.Months, queryCompleted(r), category)
	writeJSON(w, http.StatusOK, MilestonesResponse{
		Age:           a,
		State:         stateOf(view.Current.Empty),
		MilestoneView: view,
	})
}

// ActivitiesResponse is the activity selection at one age.
type ActivitiesResponse struct {
	Age     age.Age `json:"age"`
	State   string  `json:"state"`
	Catalog string  `json:"catalog"`
	selection.Selection[types.Activity]
}

// Activities handles GET /api/v1/activities
func (h *Handler) Activities(w http.ResponseWriter, r *http.Request) {
	var errs validation.Collector
	a, ageErr := h.queryAge(r)
	errs.Add(ageErr)
	category := types.ActivityCategory(r.URL.Query().Get("category"))
	if category != "" {
		errs.Add(validation.ValidateEnum("category", category, types.ActivityCategories))
	}
	if errs.HasErrors() {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", errs.Errors())
		return
	}

	ac, err := h.catalogs.Current().Activities(queryOr(r, "catalog", h.opts.Dashboard.ActivityCatalog))
	if err != nil {
		MapError(w, r, err)
		return
	}
	records := ac.Activities
	if category != "" {
		records = selection.FilterActivityCategory(records, category)
	}
	sel := selection.Select(records, a.Months, selection.StrictWindow)
	writeJSON(w, http.StatusOK, ActivitiesResponse{
		Age:       a,
		State:     stateOf(sel.Empty),
		Catalog:   ac.Name,
		Selection: sel,
	})
}

// MedicalResponse is the medical schedule at one age.
type MedicalResponse struct {
	Age     age.Age `json:"age"`
	State   string  `json:"state"`
	Catalog string  `json:"catalog"`
	selection.MedicalSchedule
}

// Medical handles GET /api/v1/medical
func (h *Handler) Medical(w http.ResponseWriter, r *http.Request) {
	a, ageErr := h.queryAge(r)
	if ageErr != nil {
		WriteProblemWithErrors(w, r, "Query contains invalid parameters", []validation.ValidationError{*ageErr})
		return
	}
	sched, err := h.catalogs.Current().Medical(queryOr(r, "catalog", h.opts.Dashboard.MedicalSchedule))
	if err != nil {
		MapError(w, r, err)
		return
	}
	ms := selection.SelectMedical(sched.Events, a.Months, queryCompleted(r), h.opts.Dashboard.MedicalVisibility)
	writeJSON(w, http.StatusOK, MedicalResponse{
		Age:             a,
		State:           stateOf(len(ms.Upcoming) == 0 && len(ms.Completed) == 0),
		Catalog:         sched.Name,
		MedicalSchedule: ms,
	})
}

// Dashboard handles GET /api/v1/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	opts := h.opts.Dashboard
	if c := r.URL.Query().Get("catalog"); c != "" {
		opts.MilestoneCatalog = c
	}
	d, err := selection.BuildDashboard(*user, h.catalogs.Current(), h.now(), opts)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// knownMilestone reports whether any loaded milestone catalog has id.
func knownMilestone(set *catalog.Set, id string) bool {
	for _, name := range set.MilestoneNames() {
		if mc, err := set.Milestones(name); err == nil {
			if _, ok := mc.Find(id); ok {
				return true
			}
		}
	}
	return false
}

func knownEvent(set *catalog.Set, id string) bool {
	for _, info := range set.List() {
		if info.Kind != catalog.KindMedical {
			continue
		}
		if sched, err := set.Medical(info.Name); err == nil {
			if _, ok := sched.Find(id); ok {
				return true
			}
		}
	}
	return false
}

// ToggleMilestone handles POST /api/v1/milestones/{id}/toggle
func (h *Handler) ToggleMilestone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !knownMilestone(h.catalogs.Current(), id) {
		MapError(w, r, store.ErrNotFound)
		return
	}
	if _, ok := h.currentUser(w, r); !ok {
		return
	}
	user, err := h.sessions.ToggleMilestone(r.Context(), MustUserIDFromContext(r.Context()), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// ToggleEvent handles POST /api/v1/medical/{id}/toggle
func (h *Handler) ToggleEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !knownEvent(h.catalogs.Current(), id) {
		MapError(w, r, store.ErrNotFound)
		return
	}
	if _, ok := h.currentUser(w, r); !ok {
		return
	}
	user, err := h.sessions.ToggleEvent(r.Context(), MustUserIDFromContext(r.Context()), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
