package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/nurture/internal/types"
	"github.com/hyperengineering/nurture/internal/validation"
)

// defaultCheckInLimit bounds GET /checkins when no limit is given.
const defaultCheckInLimit = 30

// NewMomentRequest is the body of POST /moments.
type NewMomentRequest struct {
	Type        types.MomentType `json:"type"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Date        *time.Time       `json:"date,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
}

// ListMoments handles GET /api/v1/moments
func (h *Handler) ListMoments(w http.ResponseWriter, r *http.Request) {
	filter := types.MomentType(r.URL.Query().Get("type"))
	if filter != "" {
		if err := validation.ValidateEnum("type", filter, types.MomentTypes); err != nil {
			WriteProblemWithErrors(w, r, "Query contains invalid parameters", []validation.ValidationError{*err})
			return
		}
	}
	moments, err := h.store.ListMoments(r.Context(), MustUserIDFromContext(r.Context()), filter)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"moments": moments,
		"state":   stateOf(len(moments) == 0),
	})
}

// AddMoment handles POST /api/v1/moments
func (h *Handler) AddMoment(w http.ResponseWriter, r *http.Request) {
	var req NewMomentRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m := types.Moment{
		UserID:      MustUserIDFromContext(r.Context()),
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	}
	if req.Date != nil {
		m.Date = req.Date.UTC()
	}
	if errs := validation.ValidateMoment(m); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	if _, ok := h.currentUser(w, r); !ok {
		return
	}

	saved, err := h.store.AddMoment(r.Context(), &m)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// ToggleLoved handles POST /api/v1/moments/{id}/love
func (h *Handler) ToggleLoved(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateULID("id", id); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	m, err := h.store.ToggleLoved(r.Context(), MustUserIDFromContext(r.Context()), id)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMoment handles DELETE /api/v1/moments/{id}
func (h *Handler) DeleteMoment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := validation.ValidateULID("id", id); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.store.DeleteMoment(r.Context(), MustUserIDFromContext(r.Context()), id); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CheckInRequest is the body of POST /checkins. Date defaults to today.
type CheckInRequest struct {
	Date       string             `json:"date,omitempty"`
	Mood       types.Mood         `json:"mood"`
	Sleep      types.SleepQuality `json:"sleep"`
	Activities []string           `json:"activities,omitempty"`
}

// ListCheckIns handles GET /api/v1/checkins
func (h *Handler) ListCheckIns(w http.ResponseWriter, r *http.Request) {
	limit := defaultCheckInLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			WriteProblemWithErrors(w, r, "Query contains invalid parameters", []validation.ValidationError{
				{Field: "limit", Message: "must be a positive integer"},
			})
			return
		}
		limit = n
	}
	checkIns, err := h.store.ListCheckIns(r.Context(), MustUserIDFromContext(r.Context()), limit)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"check_ins": checkIns,
		"state":     stateOf(len(checkIns) == 0),
	})
}

// SaveCheckIn handles POST /api/v1/checkins
func (h *Handler) SaveCheckIn(w http.ResponseWriter, r *http.Request) {
	var req CheckInRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ci := types.CheckIn{
		UserID:     MustUserIDFromContext(r.Context()),
		Date:       req.Date,
		Mood:       req.Mood,
		Sleep:      req.Sleep,
		Activities: req.Activities,
	}
	if ci.Date == "" {
		ci.Date = h.now().Format(time.DateOnly)
	}
	if errs := validation.ValidateCheckIn(ci); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}
	if _, ok := h.currentUser(w, r); !ok {
		return
	}

	saved, err := h.store.SaveCheckIn(r.Context(), &ci)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
