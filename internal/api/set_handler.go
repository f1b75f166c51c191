package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyquest/internal/api/shared"
	"github.com/phrazzld/studyquest/internal/platform/logger"
	"github.com/phrazzld/studyquest/internal/service/study"
)

// SetHandler serves flashcard sets, their cards and card reviews.
type SetHandler struct {
	service study.Service
	logger  *slog.Logger
}

// NewSetHandler creates a SetHandler.
func NewSetHandler(service study.Service, logger *slog.Logger) *SetHandler {
	if service == nil {
		panic("service cannot be nil for SetHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SetHandler{
		service: service,
		logger:  logger.With(slog.String("component", "set_handler")),
	}
}

// ListSets handles GET /api/sets.
func (h *SetHandler) ListSets(w http.ResponseWriter, r *http.Request) {
	sets, err := h.service.ListSets(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list sets")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sets)
}

// CreateSet handles POST /api/sets.
func (h *SetHandler) CreateSet(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req study.CreateSetInput
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	set, err := h.service.CreateSet(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create set")
		return
	}

	log.Debug("set created via API", slog.String("set_id", set.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, set)
}

// GetSet handles GET /api/sets/{setID}.
func (h *SetHandler) GetSet(w http.ResponseWriter, r *http.Request) {
	setID, err := getPathUUID(r, "setID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	set, err := h.service.GetSet(r.Context(), setID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get set")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, set)
}

// DeleteSet handles DELETE /api/sets/{setID}.
func (h *SetHandler) DeleteSet(w http.ResponseWriter, r *http.Request) {
	setID, err := getPathUUID(r, "setID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.service.DeleteSet(r.Context(), setID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete set")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddCard handles POST /api/sets/{setID}/cards.
func (h *SetHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	setID, err := getPathUUID(r, "setID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req study.AddCardInput
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.service.AddCard(r.Context(), setID, req)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// reviewRequest is the body of POST /api/sets/{setID}/cards/{cardID}/review.
// The card ID comes from the path.
type reviewRequest struct {
	Quality *int `json:"quality"`
	Correct bool `json:"correct"`
}

// ReviewCard handles POST /api/sets/{setID}/cards/{cardID}/review.
func (h *SetHandler) ReviewCard(w http.ResponseWriter, r *http.Request) {
	setID, err := getPathUUID(r, "setID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	cardID, err := getPathUUID(r, "cardID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req reviewRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.service.ReviewCard(r.Context(), setID, study.ReviewInput{
		CardID:  cardID,
		Quality: req.Quality,
		Correct: req.Correct,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to review card")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// dueResponse lists due cards under the active strategy.
type dueResponse struct {
	Strategy string          `json:"strategy"`
	Cards    []study.DueCard `json:"cards"`
}

// DueCards handles GET /api/due, optionally filtered with ?setId=.
func (h *SetHandler) DueCards(w http.ResponseWriter, r *http.Request) {
	setID, err := getQueryUUID(r, "setId")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	due, err := h.service.DueCards(r.Context(), setID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due cards")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, dueResponse{
		Strategy: string(h.service.Strategy()),
		Cards:    due,
	})
}
