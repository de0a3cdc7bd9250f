package reaction

import (
	"Tuiter/internal/core/reactions"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// StatusNothing is reported when the user has no reaction of the asked kind
const StatusNothing = "nothing"

// StateHandler answers "how does this user react to this tuit"
type StateHandler struct {
	service reactions.Service
}

// NewStateHandler creates a new state handler
func NewStateHandler(service reactions.Service) *StateHandler {
	return &StateHandler{
		service: service,
	}
}

// StatusOutput is the per-kind check response
type StatusOutput struct {
	Status string `json:"status"`
}

// StateOutput is the combined check response
type StateOutput struct {
	State reactions.State `json:"state"`
}

// HandleDislikeStatus reports "disliked" or "nothing"
// GET /api/users/{uid}/dislikes/{tid}
func (h *StateHandler) HandleDislikeStatus(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, reactions.StateDisliked)
}

// HandleLikeStatus reports "liked" or "nothing"
// GET /api/users/{uid}/likes/{tid}
func (h *StateHandler) HandleLikeStatus(w http.ResponseWriter, r *http.Request) {
	h.status(w, r, reactions.StateLiked)
}

// HandleReactionState reports liked, disliked or neutral
// GET /api/users/{uid}/reactions/{tid}
func (h *StateHandler) HandleReactionState(w http.ResponseWriter, r *http.Request) {
	state, err := h.service.GetReactionState(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "tid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, StateOutput{State: state})
}

func (h *StateHandler) status(w http.ResponseWriter, r *http.Request, want reactions.State) {
	state, err := h.service.GetReactionState(r.Context(), chi.URLParam(r, "uid"), chi.URLParam(r, "tid"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := StatusNothing
	if state == want {
		status = string(want)
	}
	writeJSON(w, StatusOutput{Status: status})
}
