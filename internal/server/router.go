package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.recoverMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/healthz", s.healthz)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.getSession)
				r.Put("/persona", s.setPersona)
				r.Post("/appeal/open", s.openAppeal)
				r.Post("/appeal/cancel", s.cancelAppeal)
				r.Post("/reset", s.resetSession)
				r.Post("/publish", s.publish)
				r.Post("/history/{historyID}", s.loadHistory)
				r.Post("/square/open", s.openSquare)
				r.Post("/square/back", s.backToSquare)
				r.Post("/square/leave", s.leaveSquare)
				r.Post("/square/vote", s.voteSelected)
				r.Post("/square/comment", s.commentSelected)
				r.Post("/square/{caseID}", s.selectCase)

				r.Group(func(r chi.Router) {
					r.Use(s.rateLimitMiddleware)
					r.Post("/submit", s.submit)
					r.Post("/appeal", s.appeal)
				})
			})
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.listHistory)
			r.Delete("/", s.clearHistory)
			r.Get("/{id}", s.getHistory)
			r.Delete("/{id}", s.deleteHistory)
		})

		r.Route("/square", func(r chi.Router) {
			r.Get("/", s.listSquare)
			r.Get("/{id}", s.viewCase)
			r.Post("/{id}/votes", s.vote)
			r.Post("/{id}/comments", s.comment)
		})
	})
	return r
}
