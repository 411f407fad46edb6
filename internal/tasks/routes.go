package tasks

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListTasks)
	r.Post("/", h.CreateTask)
	r.Post("/assign", h.AssignAll)
	r.Get("/{id}", h.GetTask)
	r.Patch("/{id}/status", h.UpdateStatus)
	r.Patch("/{id}/assignee", h.AssignTask)

	return r
}
