// Package httpapi implements the HTTP edge of the alerts service.
//
// All routes expect an x-user-id header forwarded by the dashboard gateway.
//
// Routes:
//
//	POST /alerts/run              → run the fetch pipeline for the user's active alerts
//	GET  /search                  → ad-hoc search (never persisted)
//	GET  /matches                 → list the user's alert matches
//	POST /matches/{id}/status     → UI-driven match status transition
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"jobdash/alerts-service/internal/runner"
	"jobdash/alerts-service/internal/search"
	"jobdash/alerts-service/internal/store"
)

// Handler holds shared dependencies.
type Handler struct {
	store  *store.Postgres
	runner *runner.Runner
	search *search.Service
}

// NewHandler returns a configured Handler.
func NewHandler(st *store.Postgres, rn *runner.Runner, sv *search.Service) *Handler {
	return &Handler{store: st, runner: rn, search: sv}
}

// RegisterRoutes mounts all alerts-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/alerts/run", h.handleRun)
	mux.HandleFunc("/search", h.handleSearch)
	mux.HandleFunc("/matches", h.handleMatches)
	mux.HandleFunc("/matches/", h.handleMatchAction)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

// handleRun handles POST /alerts/run.
func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	alerts, err := h.store.ActiveAlerts(r.Context(), userID)
	if err != nil {
		slog.Error("active alerts load failed", "userId", userID, "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	summary, err := h.runner.Run(r.Context(), userID, alerts)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, summary)
}

// handleSearch handles GET /search.
//
// Query parameters: q (required, comma-separated keywords), sources
// (optional, comma-separated), freshness (optional preset), exclude
// (optional, comma-separated).
func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := search.Params{
		Keywords:        splitParam(r.URL.Query().Get("q")),
		ExcludeKeywords: splitParam(r.URL.Query().Get("exclude")),
		Sources:         splitParam(r.URL.Query().Get("sources")),
		Freshness:       strings.TrimSpace(r.URL.Query().Get("freshness")),
	}

	result, err := h.search.Search(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, result)
}

// handleMatches handles GET /matches?status=new.
func (h *Handler) handleMatches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	matches, err := h.store.ListMatches(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, matches)
}

// handleMatchAction handles POST /matches/{id}/status.
func (h *Handler) handleMatchAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	// Parse /matches/{id}/{action}
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 || parts[2] != "status" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	matchID := parts[1]

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	updated, err := h.store.UpdateMatchStatus(r.Context(), userID, matchID, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonOK(w, updated)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// writeError maps service errors onto HTTP statuses: client-correctable
// input → 400, missing/unowned rows → 404, no active alerts → 412,
// anything else → 500.
func writeError(w http.ResponseWriter, err error) {
	var ve *store.ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, "not found", http.StatusNotFound)
	case errors.Is(err, runner.ErrNoActiveAlerts):
		jsonError(w, runner.ErrNoActiveAlerts.Error(), http.StatusPreconditionFailed)
	default:
		slog.Error("request failed", "err", err)
		jsonError(w, "internal error", http.StatusInternalServerError)
	}
}

func splitParam(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
