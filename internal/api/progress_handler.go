package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyquest/internal/api/shared"
	"github.com/phrazzld/studyquest/internal/domain"
	"github.com/phrazzld/studyquest/internal/events"
	"github.com/phrazzld/studyquest/internal/platform/logger"
)

// ProgressStore is the subset of progress.Store the progress endpoints use.
type ProgressStore interface {
	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
	Reset(ctx context.Context) error
	Preferences(ctx context.Context) (domain.Preferences, error)
	SavePreferences(ctx context.Context, prefs domain.Preferences) error
}

// EventLog exposes recently emitted milestone events.
type EventLog interface {
	Recent(n int) []events.Event
}

// DefaultEventLimit is the page size of GET /api/events.
const DefaultEventLimit = 20

// ProgressHandler serves backup, reset, preferences and the milestone feed.
type ProgressHandler struct {
	store  ProgressStore
	events EventLog
	logger *slog.Logger
}

// NewProgressHandler creates a ProgressHandler. A nil EventLog serves an
// empty feed.
func NewProgressHandler(store ProgressStore, eventLog EventLog, logger *slog.Logger) *ProgressHandler {
	if store == nil {
		panic("store cannot be nil for ProgressHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressHandler{
		store:  store,
		events: eventLog,
		logger: logger.With(slog.String("component", "progress_handler")),
	}
}

// Export handles GET /api/export and returns the backup envelope as an
// attachment.
func (h *ProgressHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.store.Export(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export progress")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="studyquest-backup.json"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logger.FromContextOrDefault(r.Context(), h.logger).Error("failed to write export",
			slog.String("error", err.Error()))
	}
}

// Import handles POST /api/import. A rejected envelope leaves the stored
// state untouched.
func (h *ProgressHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	body, err := shared.ReadBody(w, r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.store.Import(r.Context(), body); err != nil {
		HandleAPIError(w, r, err, "Failed to import progress")
		return
	}

	log.Info("progress imported", slog.Int("bytes", len(body)))
	w.WriteHeader(http.StatusNoContent)
}

// Reset handles POST /api/reset.
func (h *ProgressHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Reset(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to reset progress")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Info("progress reset")
	w.WriteHeader(http.StatusNoContent)
}

// Events handles GET /api/events?limit=N, newest first.
func (h *ProgressHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit, err := getQueryInt(r, "limit", DefaultEventLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	recent := []events.Event{}
	if h.events != nil {
		if got := h.events.Recent(limit); got != nil {
			recent = got
		}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, recent)
}

// preferencesView hides the API key; only whether one is set is reported.
type preferencesView struct {
	DisplayName  string            `json:"displayName"`
	Theme        string            `json:"theme"`
	HasAPIKey    bool              `json:"hasApiKey"`
	Notes        []domain.Note     `json:"notes"`
	Memos        []string          `json:"memos"`
	CustomFields map[string]string `json:"customFields"`
}

func viewPreferences(p domain.Preferences) preferencesView {
	return preferencesView{
		DisplayName:  p.DisplayName,
		Theme:        p.Theme,
		HasAPIKey:    p.APIKey != "",
		Notes:        p.Notes,
		Memos:        p.Memos,
		CustomFields: p.CustomFields,
	}
}

// GetPreferences handles GET /api/preferences.
func (h *ProgressHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.store.Preferences(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load preferences")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, viewPreferences(prefs))
}

// preferencesRequest is the body of PUT /api/preferences. A missing apiKey
// keeps the stored key and an empty one clears it. hasApiKey is accepted so
// a GET response can be sent back unchanged; it is ignored.
type preferencesRequest struct {
	DisplayName  string            `json:"displayName"`
	Theme        string            `json:"theme"`
	APIKey       *string           `json:"apiKey"`
	HasAPIKey    bool              `json:"hasApiKey"`
	Notes        []domain.Note     `json:"notes"`
	Memos        []string          `json:"memos"`
	CustomFields map[string]string `json:"customFields"`
}

// SavePreferences handles PUT /api/preferences. The body replaces the
// stored preferences except for the API key, which only changes when the
// body names one.
func (h *ProgressHandler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	prefs := domain.Preferences{
		DisplayName:  req.DisplayName,
		Theme:        req.Theme,
		Notes:        req.Notes,
		Memos:        req.Memos,
		CustomFields: req.CustomFields,
	}
	if req.APIKey != nil {
		prefs.APIKey = *req.APIKey
	} else {
		current, err := h.store.Preferences(r.Context())
		if err != nil {
			HandleAPIError(w, r, err, "Failed to load preferences")
			return
		}
		prefs.APIKey = current.APIKey
	}

	if err := h.store.SavePreferences(r.Context(), prefs); err != nil {
		HandleAPIError(w, r, err, "Failed to save preferences")
		return
	}

	saved, err := h.store.Preferences(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load preferences")
		return
	}
	logger.FromContextOrDefault(r.Context(), h.logger).Debug("preferences saved",
		slog.Bool("api_key_changed", req.APIKey != nil))
	shared.RespondWithJSON(w, r, http.StatusOK, viewPreferences(saved))
}
