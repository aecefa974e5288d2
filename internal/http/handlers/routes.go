package handlers

import (
	"iftarspot/backend/internal/http/middleware"

	"github.com/go-chi/chi/v5"
)

// Mount registers the API routes on r.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Get("/items", h.ListItems)

	r.Get("/spots", h.ListSpots)
	r.Get("/spots/stats", h.SpotStats)
	r.Get("/spots/archived", h.ArchivedSpots)
	r.Get("/spots/{id}", h.GetSpot)
	r.Get("/spots/{id}/comments", h.ListComments)
	r.Get("/reviews", h.ListReviews)

	r.Get("/map", h.Map)
	r.Get("/map/page", h.MapPage)
	r.Get("/map/locate", h.Locate)
	r.Post("/maplinks/inspect", h.InspectMapLink)

	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(h.cfg.JWTSecret))
		r.Post("/spots", h.CreateSpot)
		r.Patch("/spots/{id}", h.UpdateSpot)
		r.Delete("/spots/{id}", h.DeleteSpot)
		r.Post("/spots/{id}/like", h.ToggleLike)
		r.Post("/spots/{id}/comments", h.CreateComment)
		r.Patch("/comments/{id}", h.UpdateComment)
		r.Delete("/comments/{id}", h.DeleteComment)
		r.Get("/me/spots", h.MySpots)
		r.Get("/me/reviews", h.MyReviews)
		r.Post("/reviews", h.CreateReview)
		r.Patch("/reviews/{id}", h.UpdateReview)
		r.Delete("/reviews/{id}", h.DeleteReview)
	})
}
