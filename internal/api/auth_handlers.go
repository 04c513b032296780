package api

import (
	"log/slog"
	"net/http"

	"github.com/hyperengineering/nurture/internal/onboarding"
	"github.com/hyperengineering/nurture/internal/session"
	"github.com/hyperengineering/nurture/internal/types"
)

// CodeRequestBody is the body of POST /auth/code.
type CodeRequestBody struct {
	Phone string `json:"phone"`
}

// LoginRequestBody is the body of POST /auth/login.
type LoginRequestBody struct {
	Phone string `json:"phone"`
	Code  string `json:"code"`
}

// RequestCode handles POST /api/v1/auth/code
func (h *Handler) RequestCode(w http.ResponseWriter, r *http.Request) {
	var req CodeRequestBody
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.sessions.RequestCode(r.Context(), req.Phone)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestBody
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.sessions.Login(r.Context(), req.Phone, req.Code)
	if err != nil {
		MapError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// Logout handles POST /api/v1/auth/logout
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), MustUserIDFromContext(r.Context())); err != nil {
		MapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/v1/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// PatchProfile handles PATCH /api/v1/profile
func (h *Handler) PatchProfile(w http.ResponseWriter, r *http.Request) {
	var patch session.ProfilePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if _, ok := h.currentUser(w, r); !ok {
		return
	}
	user, err := h.sessions.Update(r.Context(), MustUserIDFromContext(r.Context()), patch)
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// OnboardingRequest carries the client-held flow state and the next action.
// A missing state starts the flow.
type OnboardingRequest struct {
	State  *onboarding.State `json:"state,omitempty"`
	Action onboarding.Action `json:"action"`
}

// OnboardingResponse is the flow state after the action. User is set once
// the flow has finished and the profile was written.
type OnboardingResponse struct {
	State    onboarding.State `json:"state"`
	Step     onboarding.Step  `json:"step"`
	Position int              `json:"position"`
	Total    int              `json:"total"`
	User     *types.User      `json:"user,omitempty"`
}

// Onboarding handles POST /api/v1/onboarding
func (h *Handler) Onboarding(w http.ResponseWriter, r *http.Request) {
	var req OnboardingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, ok := h.currentUser(w, r); !ok {
		return
	}

	flow := onboarding.Default
	state := flow.Start()
	if req.State != nil {
		state = *req.State
	}
	if req.Action.Kind != "" {
		next, err := flow.Apply(state, req.Action)
		if err != nil {
			MapError(w, r, err)
			return
		}
		state = next
	}

	resp := OnboardingResponse{State: state}
	resp.Step, _ = flow.Step(state.Step)
	resp.Position, resp.Total = flow.Progress(state)

	if state.Done {
		patch, err := onboarding.Patch(state, h.now())
		if err != nil {
			MapError(w, r, err)
			return
		}
		userID := MustUserIDFromContext(r.Context())
		user, err := h.sessions.Update(r.Context(), userID, patch)
		if err != nil {
			MapError(w, r, err)
			return
		}
		slog.Info("onboarding completed",
			"component", "api",
			"action", "onboarding",
			"skipped", state.Skipped,
		)
		resp.User = user
	}
	writeJSON(w, http.StatusOK, resp)
}

// CompleteOnboarding handles POST /api/v1/onboarding/complete. It marks
// onboarding as finished without touching the child profile.
func (h *Handler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.currentUser(w, r); !ok {
		return
	}
	user, err := h.sessions.CompleteOnboarding(r.Context(), MustUserIDFromContext(r.Context()))
	if err != nil {
		MapError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
