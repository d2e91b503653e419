package project

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers project routes on the /projects router
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/", h.CreateProject)
	r.Get("/", h.ListProjects)

	r.Get("/{project_id}", h.GetProject)
	r.Delete("/{project_id}", h.DeleteProject)
	r.Get("/{project_id}/credentials", h.CredentialsStatus)
	r.Put("/{project_id}/credentials", h.SetCredentials)
	r.Get("/{project_id}/report", h.Report)
}
