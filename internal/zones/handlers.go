package zones

import (
	"errors"
	"net/http"
	"sort"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/httputil"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handler serves registry management. Store may be nil, in which case zones
// only live in memory.
type Handler struct {
	Registry *Registry
	Store    Store
	Log      zerolog.Logger
}

type ZoneOut struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Vertices [][2]float64    `json:"vertices"`
	Bounds   geo.BoundingBox `json:"bounds"`
}

type zoneIn struct {
	Name     string      `json:"name" validate:"max=128"`
	Vertices [][]float64 `json:"vertices" validate:"required,dive,len=2"`
}

func toOut(z Zone) ZoneOut {
	vs := z.Polygon.Closed()
	out := ZoneOut{
		ID:       z.ID,
		Name:     z.Name,
		Vertices: make([][2]float64, len(vs)),
		Bounds:   z.Polygon.Bounds(),
	}
	for i, v := range vs {
		out.Vertices[i] = [2]float64{v.Lng, v.Lat}
	}
	return out
}

// ListZones returns every registered zone sorted by id.
func (h *Handler) ListZones(w http.ResponseWriter, r *http.Request) {
	out := []ZoneOut{}
	for z := range h.Registry.ListZones() {
		out = append(out, toOut(z))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GetZone(w http.ResponseWriter, r *http.Request) {
	z, err := h.Registry.GetZone(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Zone not found", http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOut(z))
}

// PutZone creates or replaces a zone.
func (h *Handler) PutZone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in zoneIn
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	vs := make([]geo.Point, len(in.Vertices))
	for i, v := range in.Vertices {
		vs[i] = geo.Point{Lng: v[0], Lat: v[1]}
	}
	z, err := NewZone(id, in.Name, vs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	// persist first so a failed write leaves the registry untouched
	if h.Store != nil {
		if err := h.Store.Save(r.Context(), z); err != nil {
			h.Log.Error().Err(err).Str("zone", id).Msg("Failed to persist zone")
			http.Error(w, "Failed to save zone", http.StatusInternalServerError)
			return
		}
	}
	if err := h.Registry.RegisterZone(z); err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.Log.Info().Str("zone", z.ID).Int("vertices", len(z.Polygon.Vertices())).Msg("Zone registered")
	httputil.WriteJSON(w, http.StatusOK, toOut(z))
}

func (h *Handler) DeleteZone(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.Registry.GetZone(id); err != nil {
		http.Error(w, "Zone not found", http.StatusNotFound)
		return
	}
	if h.Store != nil {
		if err := h.Store.Delete(r.Context(), id); err != nil {
			h.Log.Error().Err(err).Str("zone", id).Msg("Failed to delete zone")
			http.Error(w, "Failed to delete zone", http.StatusInternalServerError)
			return
		}
	}
	if err := h.Registry.RemoveZone(id); err != nil && !errors.Is(err, ErrNotFound) {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
