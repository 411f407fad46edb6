package monitor_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/bandobast/bandobast-backend/internal/zones"
	"github.com/rs/zerolog"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	zr := zones.NewRegistry()
	pg, err := geo.Rectangle(geo.Point{Lng: 80.2497, Lat: 13.0427}, geo.Point{Lng: 80.2897, Lat: 13.0827})
	if err != nil {
		t.Fatalf("Rectangle: %v", err)
	}
	if err := zr.RegisterZone(zones.Zone{ID: "chennai", Name: "Chennai", Polygon: pg}); err != nil {
		t.Fatalf("RegisterZone: %v", err)
	}
	svc := monitor.New(zr, tracker.New(), monitor.NewDispatcher(zerolog.Nop(), nil), nil)
	return monitor.SetupRoutes(&monitor.Handler{Service: svc, Log: zerolog.Nop()}, nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type positionResp struct {
	Applied bool            `json:"applied"`
	Events  []monitor.Event `json:"events"`
}

func TestReportPosition_AppliedThenStale(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/E1/position", `{"lng":80.2707,"lat":13.0827,"timestamp":"2024-01-01T10:00:05Z"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp positionResp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Applied || len(resp.Events) != 1 || resp.Events[0].Kind != monitor.ZoneEntered {
		t.Fatalf("resp = %+v", resp)
	}

	rec = do(t, h, http.MethodPost, "/E1/position", `{"lng":80.30,"lat":13.09,"timestamp":"2024-01-01T10:00:03Z"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	resp = positionResp{}
	_ = json.NewDecoder(rec.Body).Decode(&resp)
	if resp.Applied {
		t.Fatal("stale report reported as applied")
	}
}

func TestReportPosition_InvalidBody(t *testing.T) {
	h := newServer(t)
	for name, body := range map[string]string{
		"missing timestamp": `{"lng":80.27,"lat":13.08}`,
		"missing lat":       `{"lng":80.27,"timestamp":"2024-01-01T10:00:00Z"}`,
		"lng out of range":  `{"lng":190,"lat":13.08,"timestamp":"2024-01-01T10:00:00Z"}`,
		"not json":          `lng=80`,
		"unknown field":     `{"lng":80.27,"lat":13.08,"timestamp":"2024-01-01T10:00:00Z","speed":3}`,
	} {
		t.Run(name, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, "/E1/position", body); rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestZoneStatus(t *testing.T) {
	h := newServer(t)

	if rec := do(t, h, http.MethodGet, "/E1/zone-status", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown entity: expected 404, got %d", rec.Code)
	}

	do(t, h, http.MethodPut, "/E1", `{"name":"officer kumar","status":"on-duty"}`)
	rec := do(t, h, http.MethodGet, "/E1/zone-status", "")
	var st []monitor.ZoneStatus
	_ = json.NewDecoder(rec.Body).Decode(&st)
	if len(st) != 1 || st[0].State != monitor.StateUnknown {
		t.Fatalf("before report: %+v", st)
	}

	do(t, h, http.MethodPost, "/E1/position", `{"lng":80.30,"lat":13.09,"timestamp":"2024-01-01T10:00:00Z"}`)
	rec = do(t, h, http.MethodGet, "/E1/zone-status", "")
	st = nil
	_ = json.NewDecoder(rec.Body).Decode(&st)
	if len(st) != 1 || st[0].Zone != "chennai" || st[0].State != monitor.StateOutside {
		t.Fatalf("after report: %+v", st)
	}
}

func TestPutAndGetEntity(t *testing.T) {
	h := newServer(t)

	if rec := do(t, h, http.MethodPut, "/1", `{"name":"Officer Priya","status":"sleeping"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad status: expected 400, got %d", rec.Code)
	}

	rec := do(t, h, http.MethodPut, "/1", `{"name":"officer  priya","status":"off-duty"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/1", "")
	var e monitor.EntityOut
	if err := json.NewDecoder(rec.Body).Decode(&e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if e.Name != "Officer Priya" || e.Status != "off-duty" || e.CurrentLocation != nil || e.LastUpdated != nil {
		t.Fatalf("entity = %+v", e)
	}

	if rec := do(t, h, http.MethodGet, "/2", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/", "")
	var list []monitor.EntityOut
	_ = json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 || list[0].ID != "1" {
		t.Fatalf("list = %+v", list)
	}
}
