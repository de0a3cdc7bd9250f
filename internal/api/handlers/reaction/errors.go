package reaction

import (
	"Tuiter/internal/api/handlers"
	"Tuiter/internal/core/reactions"
	"errors"
	"log"
	"net/http"
)

// handleServiceError converts service errors to HTTP responses.
// The error field carries the structured code from reactions.ErrorCode.
func handleServiceError(w http.ResponseWriter, err error) {
	code := reactions.ErrorCode(err)
	switch code {
	case reactions.CodeInvalidRequest:
		var valErr *reactions.ValidationError
		message := "Invalid request"
		if errors.As(err, &valErr) {
			message = valErr.Field + " " + valErr.Message
		}
		handlers.WriteError(w, http.StatusBadRequest, code, message)
	case reactions.CodeNotFound:
		if errors.Is(err, reactions.ErrUserNotFound) {
			handlers.WriteError(w, http.StatusNotFound, code, "User not found")
			return
		}
		handlers.WriteError(w, http.StatusNotFound, code, "Tuit not found")
	case reactions.CodeInvariantViolation:
		log.Printf("Reaction invariant violated: %v", err)
		handlers.WriteError(w, http.StatusConflict, code, "Conflicting reactions recorded for this tuit")
	case reactions.CodeDuplicateReaction:
		handlers.WriteError(w, http.StatusConflict, code, "Reaction already exists")
	case reactions.CodeStoreUnavailable:
		log.Printf("Reaction store unavailable: %v", err)
		handlers.WriteError(w, http.StatusServiceUnavailable, code, "Storage temporarily unavailable")
	default:
		log.Printf("Reaction handler error: %v", err)
		handlers.WriteError(w, http.StatusInternalServerError, code, "An internal error occurred")
	}
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	handlers.WriteJSON(w, http.StatusOK, body)
}
