package routes

import (
	"Tuiter/internal/api/handlers/reaction"
	"Tuiter/internal/core/reactions"

	"github.com/go-chi/chi/v5"
)

// RegisterReactionRoutes registers the like/dislike endpoints under /api
func RegisterReactionRoutes(r chi.Router, service reactions.Service) {
	toggleHandler := reaction.NewToggleHandler(service)
	stateHandler := reaction.NewStateHandler(service)
	listHandler := reaction.NewListHandler(service)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users/{uid}", func(r chi.Router) {
			r.Get("/dislikes", listHandler.HandleListDislikedPosts)
			r.Put("/dislikes/{tid}", toggleHandler.HandleToggleDislike)
			r.Get("/dislikes/{tid}", stateHandler.HandleDislikeStatus)
			r.Delete("/dislikes/{tid}", toggleHandler.HandleUndislike)

			r.Get("/likes", listHandler.HandleListLikedPosts)
			r.Put("/likes/{tid}", toggleHandler.HandleToggleLike)
			r.Get("/likes/{tid}", stateHandler.HandleLikeStatus)
			r.Delete("/likes/{tid}", toggleHandler.HandleUnlike)

			r.Get("/reactions/{tid}", stateHandler.HandleReactionState)
		})

		r.Route("/tuits/{tid}", func(r chi.Router) {
			r.Get("/dislikes", listHandler.HandleListDislikers)
			r.Get("/likes", listHandler.HandleListLikers)
			r.Get("/reactions/count", listHandler.HandleCounts)
		})
	})
}
