package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyquest/internal/api/shared"
	"github.com/phrazzld/studyquest/internal/platform/logger"
	"github.com/phrazzld/studyquest/internal/service/study"
)

// DefaultSessionLimit is the page size of GET /api/sessions.
const DefaultSessionLimit = 20

// SessionHandler records study sessions and serves the derived views.
type SessionHandler struct {
	service study.Service
	logger  *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(service study.Service, logger *slog.Logger) *SessionHandler {
	if service == nil {
		panic("service cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		service: service,
		logger:  logger.With(slog.String("component", "session_handler")),
	}
}

// RecordSession handles POST /api/sessions.
func (h *SessionHandler) RecordSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req study.SessionInput
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.service.RecordSession(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to record session")
		return
	}

	log.Debug("session recorded via API",
		slog.String("session_id", result.Session.ID.String()),
		slog.Int("xp_earned", result.Session.XPEarned))
	shared.RespondWithJSON(w, r, http.StatusCreated, result)
}

// ListSessions handles GET /api/sessions?limit=N. limit=0 returns the
// whole log.
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryInt(r, "limit", DefaultSessionLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	sessions, err := h.service.Sessions(r.Context(), limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sessions")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessions)
}

// Stats handles GET /api/stats.
func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load stats")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

// Gamification handles GET /api/gamification.
func (h *SessionHandler) Gamification(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Gamification(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, g)
}
