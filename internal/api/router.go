package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	apiMiddleware "github.com/phrazzld/studyquest/internal/api/middleware"
	"github.com/phrazzld/studyquest/internal/service/study"
)

// Dependencies are the components the router wires into handlers.
type Dependencies struct {
	Study    study.Service
	Progress ProgressStore
	Hearts   HeartsPool
	Events   EventLog
	Logger   *slog.Logger
}

// NewRouter builds the HTTP handler with all routes and middleware.
func NewRouter(deps Dependencies) http.Handler {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(log))

	sets := NewSetHandler(deps.Study, log)
	sessions := NewSessionHandler(deps.Study, log)
	progressHandler := NewProgressHandler(deps.Progress, deps.Events, log)
	heartsHandler := NewHeartsHandler(deps.Hearts, log)

	r.Route("/api", func(r chi.Router) {
		r.Get("/sets", sets.ListSets)
		r.Post("/sets", sets.CreateSet)
		r.Get("/sets/{setID}", sets.GetSet)
		r.Delete("/sets/{setID}", sets.DeleteSet)
		r.Post("/sets/{setID}/cards", sets.AddCard)
		r.Post("/sets/{setID}/cards/{cardID}/review", sets.ReviewCard)
		r.Get("/due", sets.DueCards)

		r.Post("/sessions", sessions.RecordSession)
		r.Get("/sessions", sessions.ListSessions)
		r.Get("/stats", sessions.Stats)
		r.Get("/gamification", sessions.Gamification)

		r.Get("/export", progressHandler.Export)
		r.Post("/import", progressHandler.Import)
		r.Post("/reset", progressHandler.Reset)
		r.Get("/events", progressHandler.Events)
		r.Get("/preferences", progressHandler.GetPreferences)
		r.Put("/preferences", progressHandler.SavePreferences)

		r.Get("/hearts", heartsHandler.Status)
		r.Post("/hearts/consume", heartsHandler.Consume)
		r.Post("/hearts/refill", heartsHandler.Refill)
		r.Put("/hearts/premium", heartsHandler.SetPremium)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			log.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}
