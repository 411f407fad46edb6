package monitor

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the entity endpoints. limit, when non-nil, wraps the
// position endpoint.
func SetupRoutes(h *Handler, limit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListEntities)
	r.Get("/{id}", h.GetEntity)
	r.Put("/{id}", h.PutEntity)
	r.Get("/{id}/zone-status", h.ZoneStatus)

	position := r.With()
	if limit != nil {
		position = r.With(limit)
	}
	position.Post("/{id}/position", h.ReportPosition)

	return r
}
