package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/selection"
	"github.com/hyperengineering/nurture/internal/session"
	"github.com/hyperengineering/nurture/internal/store"
	"github.com/hyperengineering/nurture/internal/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Options tunes a Handler.
type Options struct {
	Version string
	DevMode bool
	// Dashboard names the catalogs used for the dashboard and for
	// queries that do not name one.
	Dashboard selection.DashboardOptions
	// Now overrides the clock for age resolution. Defaults to time.Now.
	Now func() time.Time
}

// Handler implements the API handlers
type Handler struct {
	store    store.Store
	sessions *session.Service
	catalogs *catalog.Registry
	opts     Options
}

// NewHandler creates a new Handler.
func NewHandler(s store.Store, sessions *session.Service, catalogs *catalog.Registry, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Dashboard == (selection.DashboardOptions{}) {
		opts.Dashboard = selection.DefaultDashboardOptions()
	}
	return &Handler{
		store:    s,
		sessions: sessions,
		catalogs: catalogs,
		opts:     opts,
	}
}

func (h *Handler) now() time.Time { return h.opts.Now().UTC() }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// decodeJSON reads the request body into v and writes a 400 problem on
// failure. Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return false
	}
	return true
}

// currentUser loads the authenticated user. A token whose user has since
// logged out is treated as unauthenticated.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*types.User, bool) {
	user, err := h.sessions.Get(r.Context(), MustUserIDFromContext(r.Context()))
	if errors.Is(err, store.ErrNotFound) {
		WriteProblem(w, r, http.StatusUnauthorized, "Session has ended")
		return nil, false
	}
	if err != nil {
		MapError(w, r, err)
		return nil, false
	}
	return user, true
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.GetStats(r.Context())
	if err != nil {
		WriteProblem(w, r, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Version:   h.opts.Version,
		UserCount: stats.UserCount,
		Catalogs:  h.catalogs.Current().Names(),
		DevMode:   h.opts.DevMode,
	})
}

// CatalogsResponse lists the published catalogs.
type CatalogsResponse struct {
	Catalogs []catalog.Info `json:"catalogs"`
	LoadedAt time.Time      `json:"loaded_at"`
	Reloads  int            `json:"reloads"`
}

// Catalogs handles GET /api/v1/catalogs
func (h *Handler) Catalogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, CatalogsResponse{
		Catalogs: h.catalogs.Current().List(),
		LoadedAt: h.catalogs.LoadedAt(),
		Reloads:  h.catalogs.Reloads(),
	})
}
