package reaction

import (
	"Tuiter/internal/core/reactions"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListHandler serves the reaction projections
type ListHandler struct {
	service reactions.Service
}

// NewListHandler creates a new list handler
func NewListHandler(service reactions.Service) *ListHandler {
	return &ListHandler{
		service: service,
	}
}

// HandleListDislikedPosts returns the live tuits a user dislikes
// GET /api/users/{uid}/dislikes
func (h *ListHandler) HandleListDislikedPosts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListPostsDislikedByUser(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, result)
}

// HandleListLikedPosts returns the live tuits a user likes
// GET /api/users/{uid}/likes
func (h *ListHandler) HandleListLikedPosts(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListPostsLikedByUser(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, result)
}

// HandleListDislikers returns the users who dislike a tuit
// GET /api/tuits/{tid}/dislikes
func (h *ListHandler) HandleListDislikers(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListDislikersOfPost(r.Context(), chi.URLParam(r, "tid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, result)
}

// HandleListLikers returns the users who like a tuit
// GET /api/tuits/{tid}/likes
func (h *ListHandler) HandleListLikers(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListLikersOfPost(r.Context(), chi.URLParam(r, "tid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, result)
}

// HandleCounts returns like and dislike totals for a tuit
// GET /api/tuits/{tid}/reactions/count
func (h *ListHandler) HandleCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.GetCounts(r.Context(), chi.URLParam(r, "tid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, counts)
}
