package monitor

import (
	"errors"
	"net/http"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/httputil"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Handler struct {
	Service *Service
	Log     zerolog.Logger
}

// EntityOut uses the field names of the dashboard's officials table.
type EntityOut struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Status          string      `json:"status"`
	CurrentLocation *[2]float64 `json:"current_location"`
	LastUpdated     *time.Time  `json:"last_updated"`
}

func toEntityOut(e tracker.Entity) EntityOut {
	out := EntityOut{ID: e.ID, Name: e.Name, Status: e.Status.DutyLabel()}
	if e.Position != nil {
		out.CurrentLocation = &[2]float64{e.Position.Lng, e.Position.Lat}
	}
	if !e.UpdatedAt.IsZero() {
		ts := e.UpdatedAt
		out.LastUpdated = &ts
	}
	return out
}

type positionIn struct {
	Lng       *float64   `json:"lng" validate:"required,gte=-180,lte=180"`
	Lat       *float64   `json:"lat" validate:"required,gte=-90,lte=90"`
	Timestamp *time.Time `json:"timestamp" validate:"required"`
}

type positionOut struct {
	Applied bool    `json:"applied"`
	Events  []Event `json:"events,omitempty"`
}

type entityIn struct {
	Name   string `json:"name" validate:"required,max=128"`
	Status string `json:"status" validate:"required,oneof=on-duty off-duty active inactive"`
}

func (h *Handler) ListEntities(w http.ResponseWriter, r *http.Request) {
	entities := h.Service.Tracker.List()
	out := make([]EntityOut, len(entities))
	for i, e := range entities {
		out[i] = toEntityOut(e)
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) GetEntity(w http.ResponseWriter, r *http.Request) {
	e, err := h.Service.Tracker.GetEntity(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Entity not found", http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toEntityOut(e))
}

// PutEntity sets an official's display name and duty status.
func (h *Handler) PutEntity(w http.ResponseWriter, r *http.Request) {
	var in entityIn
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status, err := tracker.ParseStatus(in.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	e := h.Service.Tracker.Register(chi.URLParam(r, "id"), in.Name, status)
	httputil.WriteJSON(w, http.StatusOK, toEntityOut(e))
}

// ReportPosition accepts a position report. Stale reports get 409.
func (h *Handler) ReportPosition(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in positionIn
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pos := geo.Point{Lng: *in.Lng, Lat: *in.Lat}
	applied, events, err := h.Service.ReportPosition(id, pos, *in.Timestamp)
	if err != nil {
		h.Log.Error().Err(err).Str("entity", id).Msg("Failed to evaluate position report")
		http.Error(w, "Failed to process position", http.StatusInternalServerError)
		return
	}
	if !applied {
		h.Log.Debug().Str("entity", id).Time("timestamp", *in.Timestamp).Msg("Dropped stale position report")
		httputil.WriteJSON(w, http.StatusConflict, positionOut{Applied: false})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, positionOut{Applied: true, Events: events})
}

func (h *Handler) ZoneStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.Service.ZoneStatus(chi.URLParam(r, "id"))
	if errors.Is(err, tracker.ErrNotFound) {
		http.Error(w, "Entity not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, status)
}
