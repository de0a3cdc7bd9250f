package reaction

import (
	"Tuiter/internal/core/reactions"
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ToggleHandler handles the reaction write endpoints
type ToggleHandler struct {
	service reactions.Service
}

// NewToggleHandler creates a new toggle handler
func NewToggleHandler(service reactions.Service) *ToggleHandler {
	return &ToggleHandler{
		service: service,
	}
}

// ToggleOutput is returned by every write endpoint
type ToggleOutput struct {
	OK bool `json:"ok"`
	*reactions.ToggleResult
}

// HandleToggleDislike flips the user's dislike on a tuit
// PUT /api/users/{uid}/dislikes/{tid}
func (h *ToggleHandler) HandleToggleDislike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.service.ToggleDislike)
}

// HandleToggleLike flips the user's like on a tuit
// PUT /api/users/{uid}/likes/{tid}
func (h *ToggleHandler) HandleToggleLike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.service.ToggleLike)
}

// HandleUndislike removes the user's dislike if present
// DELETE /api/users/{uid}/dislikes/{tid}
func (h *ToggleHandler) HandleUndislike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.service.Undislike)
}

// HandleUnlike removes the user's like if present
// DELETE /api/users/{uid}/likes/{tid}
func (h *ToggleHandler) HandleUnlike(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, h.service.Unlike)
}

type toggleFunc func(ctx context.Context, userID, postID string) (*reactions.ToggleResult, error)

func (h *ToggleHandler) handle(w http.ResponseWriter, r *http.Request, toggle toggleFunc) {
	result, err := toggle(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "tid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, ToggleOutput{OK: true, ToggleResult: result})
}
