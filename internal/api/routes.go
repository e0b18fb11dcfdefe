package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/learners", func(r chi.Router) {
		r.Get("/", s.handleListLearners)
		r.Post("/", s.handleCreateLearner)
		r.Post("/{id}/select", s.handleSelectLearner)
		r.Delete("/{id}", s.handleDeleteLearner)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.learnerMiddleware)

		r.Route("/cards", func(r chi.Router) {
			r.Get("/", s.handleListCards)
			r.Post("/", s.handleCreateCard)
			r.Post("/import", s.handleImportCards)
			r.Get("/{id}", s.handleGetCard)
			r.Put("/{id}", s.handleUpdateCard)
			r.Delete("/{id}", s.handleDeleteCard)

			r.Post("/{id}/review", s.handleSubmitRating)
			r.Post("/{id}/answer", s.handleSubmitAnswer)
			r.Post("/{id}/answer-ai", s.handleSubmitAnswerAI)
			r.Post("/{id}/override", s.handleOverrideRating)
		})

		r.Get("/review/next", s.handleNextDue)
		r.Get("/review/due-count", s.handleDueCount)
		r.Post("/generate", s.handleGenerate)
		r.Get("/stats", s.handleStats)
	})

	return r
}
