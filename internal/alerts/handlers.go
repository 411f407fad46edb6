package alerts

import (
	"net/http"
	"strconv"

	"github.com/bandobast/bandobast-backend/internal/httputil"
	"github.com/rs/zerolog"
)

type Handler struct {
	Journal Journal
	Log     zerolog.Logger
}

// ListEvents returns recent zone events, newest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := Query{
		EntityID: r.URL.Query().Get("entity"),
		ZoneID:   r.URL.Query().Get("zone"),
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		q.Limit = n
	}

	events, err := h.Journal.Recent(r.Context(), q)
	if err != nil {
		h.Log.Error().Err(err).Msg("Failed to read zone events")
		http.Error(w, "Failed to fetch events", http.StatusInternalServerError)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}
