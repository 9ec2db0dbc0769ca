package server

import (
	"github.com/go-chi/chi/v5"
)

func (s *Server) setupRoutes(r chi.Router) {
	r.Get("/healthz", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", s.listActions)
		r.Delete("/session", s.logout)

		r.Post("/{action}", s.handleAction)
		r.Post("/{action}/{id}", s.handleAction)
		r.Get("/{action}", s.handleAction)
		r.Get("/{action}/{id}", s.handleAction)
	})
}
