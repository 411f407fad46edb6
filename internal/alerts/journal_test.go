package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func event(entity, zone string, kind monitor.EventKind, at time.Time) monitor.Event {
	return monitor.Event{ID: uuid.New(), Kind: kind, EntityID: entity, ZoneID: zone, At: at}
}

func TestMemoryJournalNewestFirstAndWraps(t *testing.T) {
	j := NewMemoryJournal(3)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_ = j.Notify(event("E1", "z", monitor.ZoneEntered, base.Add(time.Duration(i)*time.Minute)))
	}

	got, err := j.Recent(context.Background(), Query{})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []int{4, 3, 2} {
		if !got[i].At.Equal(base.Add(time.Duration(want) * time.Minute)) {
			t.Fatalf("got[%d].At = %v, want minute %d", i, got[i].At, want)
		}
	}
}

func TestMemoryJournalFilters(t *testing.T) {
	j := NewMemoryJournal(10)
	now := time.Now()
	_ = j.Notify(event("E1", "a", monitor.ZoneEntered, now))
	_ = j.Notify(event("E2", "a", monitor.ZoneExited, now))
	_ = j.Notify(event("E1", "b", monitor.ZoneExited, now))

	got, _ := j.Recent(context.Background(), Query{EntityID: "E1"})
	if len(got) != 2 {
		t.Fatalf("entity filter len = %d, want 2", len(got))
	}
	got, _ = j.Recent(context.Background(), Query{EntityID: "E1", ZoneID: "b"})
	if len(got) != 1 || got[0].Kind != monitor.ZoneExited {
		t.Fatalf("entity+zone filter = %+v", got)
	}
	got, _ = j.Recent(context.Background(), Query{Limit: 1})
	if len(got) != 1 || got[0].ZoneID != "b" {
		t.Fatalf("limit = %+v", got)
	}
}

func TestListEventsHandler(t *testing.T) {
	j := NewMemoryJournal(10)
	_ = j.Notify(event("E1", "a", monitor.ZoneExited, time.Now()))
	srv := SetupRoutes(&Handler{Journal: j, Log: zerolog.Nop()})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?entity=E1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []monitor.Event
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Kind != monitor.ZoneExited {
		t.Fatalf("events = %+v", out)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?limit=zero", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad limit: expected 400, got %d", rec.Code)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	ev := event("E1", "a", monitor.ZoneExited, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	ev.Position.Lng, ev.Position.Lat = 80.3, 13.09
	if got := toRecord(ev).event(); got != ev {
		t.Fatalf("round trip = %+v, want %+v", got, ev)
	}
}
