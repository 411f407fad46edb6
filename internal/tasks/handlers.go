package tasks

import (
	"errors"
	"net/http"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/httputil"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Handler struct {
	Board   *Board
	Tracker *tracker.Tracker
	Log     zerolog.Logger
}

type TaskOut struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Location   [2]float64 `json:"location"`
	Status     Status     `json:"status"`
	Progress   int        `json:"progress"`
	AssignedTo *string    `json:"assigned_to"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func toOut(t Task) TaskOut {
	out := TaskOut{
		ID:        t.ID,
		Title:     t.Title,
		Location:  [2]float64{t.Location.Lng, t.Location.Lat},
		Status:    t.Status,
		Progress:  t.Status.Progress(),
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.AssignedTo != "" {
		a := t.AssignedTo
		out.AssignedTo = &a
	}
	return out
}

func toOuts(ts []Task) []TaskOut {
	out := make([]TaskOut, len(ts))
	for i, t := range ts {
		out[i] = toOut(t)
	}
	return out
}

type taskIn struct {
	Title    string    `json:"title" validate:"required,max=200"`
	Location []float64 `json:"location" validate:"required,len=2"`
}

type statusIn struct {
	Status string `json:"status" validate:"required,oneof=pending in-progress completed"`
}

type assigneeIn struct {
	AssignedTo string `json:"assigned_to" validate:"max=64"`
}

// ListTasks returns tasks in creation order, optionally filtered by ?assigned_to=.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toOuts(h.Board.List(r.URL.Query().Get("assigned_to"))))
}

func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	t, err := h.Board.Get(id)
	if err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOut(t))
}

func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var in taskIn
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, err := h.Board.Create(in.Title, geo.Point{Lng: in.Location[0], Lat: in.Location[1]})
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	h.Log.Info().Str("task", t.ID.String()).Str("title", t.Title).Msg("Task created")
	httputil.WriteJSON(w, http.StatusCreated, toOut(t))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var in statusIn
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, err := h.Board.SetStatus(id, Status(in.Status))
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOut(t))
}

// AssignTask sets or clears the assignee of one task. The assignee must be a
// known entity.
func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var in assigneeIn
	if err := httputil.DecodeJSON(w, r, &in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.AssignedTo != "" {
		if _, err := h.Tracker.GetEntity(in.AssignedTo); err != nil {
			http.Error(w, "Unknown official", http.StatusUnprocessableEntity)
			return
		}
	}
	t, err := h.Board.Assign(id, in.AssignedTo)
	if err != nil {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOut(t))
}

// AssignAll spreads open tasks over the officials currently on duty.
func (h *Handler) AssignAll(w http.ResponseWriter, r *http.Request) {
	active := h.Tracker.Active()
	out := h.Board.AssignRoundRobin(active)
	h.Log.Info().Int("tasks", len(out)).Int("officials", len(active)).Msg("Tasks reassigned")
	httputil.WriteJSON(w, http.StatusOK, toOuts(out))
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid task id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}
