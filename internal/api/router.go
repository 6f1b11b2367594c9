package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/users", apiHandler.RegisterHandler)
		r.Post("/login", apiHandler.LoginHandler)

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/users/me", apiHandler.MeHandler)

			// Assessment routes
			r.Post("/assessments", apiHandler.SubmitAssessmentHandler)
			r.Get("/assessments", apiHandler.ListAssessmentsHandler)
			r.Get("/assessments/{assessmentID}", apiHandler.GetAssessmentHandler)
			r.Delete("/assessments/{assessmentID}", apiHandler.DeleteAssessmentHandler)
			r.Get("/assessments/{assessmentID}/result", apiHandler.GetResultHandler)

			// Dashboard and history views
			r.Get("/dashboard", apiHandler.DashboardHandler)
			r.Get("/history", apiHandler.HistoryHandler)

			// Health coach routes
			r.Post("/coach/sessions", apiHandler.CreateCoachSessionHandler)
			r.Get("/coach/sessions", apiHandler.ListCoachSessionsHandler)
			r.Get("/coach/sessions/{sessionID}", apiHandler.GetCoachSessionHandler)
			r.Post("/coach/sessions/{sessionID}/messages", apiHandler.PostCoachMessageHandler)
		})
	})

	return r
}
