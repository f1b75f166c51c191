package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/phrazzld/studyquest/internal/api/shared"
	"github.com/phrazzld/studyquest/internal/hearts"
)

// HeartsPool is the subset of hearts.Pool the hearts endpoints use.
type HeartsPool interface {
	Status(ctx context.Context) (hearts.Status, error)
	Consume(ctx context.Context) (hearts.Status, error)
	Refill(ctx context.Context) (hearts.Status, error)
	SetPremium(ctx context.Context, premium bool) (hearts.Status, error)
}

var _ HeartsPool = (*hearts.Pool)(nil)

// HeartsHandler serves the hearts pool.
type HeartsHandler struct {
	pool   HeartsPool
	logger *slog.Logger
}

// NewHeartsHandler creates a HeartsHandler.
func NewHeartsHandler(pool HeartsPool, logger *slog.Logger) *HeartsHandler {
	if pool == nil {
		panic("pool cannot be nil for HeartsHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HeartsHandler{
		pool:   pool,
		logger: logger.With(slog.String("component", "hearts_handler")),
	}
}

// Status handles GET /api/hearts.
func (h *HeartsHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.pool.Status(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load hearts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// Consume handles POST /api/hearts/consume. An empty pool answers 409.
func (h *HeartsHandler) Consume(w http.ResponseWriter, r *http.Request) {
	status, err := h.pool.Consume(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to consume heart")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

// Refill handles POST /api/hearts/refill.
func (h *HeartsHandler) Refill(w http.ResponseWriter, r *http.Request) {
	status, err := h.pool.Refill(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refill hearts")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}

type premiumRequest struct {
	Premium *bool `json:"premium" validate:"required"`
}

// SetPremium handles PUT /api/hearts/premium.
func (h *HeartsHandler) SetPremium(w http.ResponseWriter, r *http.Request) {
	var req premiumRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	status, err := h.pool.SetPremium(r.Context(), *req.Premium)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update premium flag")
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, status)
}
