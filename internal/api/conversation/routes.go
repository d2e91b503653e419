package conversation

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers conversation routes on the /projects router
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/{project_id}/conversation", h.StartConversation)
	r.Post("/{project_id}/messages", h.SendMessage)
	r.Get("/{project_id}/messages", h.History)
	r.Post("/{project_id}/suggestions/{suggestion_id}/accept", h.AcceptSuggestion)
	r.Post("/{project_id}/suggestions/{suggestion_id}/decline", h.DeclineSuggestion)
	r.Get("/{project_id}/knowledge", h.Knowledge)
	r.Get("/{project_id}/context", h.Context)
}
