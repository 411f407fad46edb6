package zones

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.ListZones)
	r.Get("/{id}", h.GetZone)
	r.Put("/{id}", h.PutZone)
	r.Delete("/{id}", h.DeleteZone)

	return r
}
