package seeds

import (
	"testing"
	"time"

	"github.com/bandobast/bandobast-backend/internal/config"
	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/bandobast/bandobast-backend/internal/tasks"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/bandobast/bandobast-backend/internal/zones"
	"github.com/rs/zerolog"
)

func TestSeedAll(t *testing.T) {
	zr := zones.NewRegistry()
	for _, z := range config.DefaultZones() {
		if err := zr.RegisterZone(z); err != nil {
			t.Fatal(err)
		}
	}
	d := monitor.NewDispatcher(zerolog.Nop(), nil)
	var entered []monitor.Event
	d.Register("test", monitor.ObserverFunc(func(ev monitor.Event) error {
		entered = append(entered, ev)
		return nil
	}))
	svc := monitor.New(zr, tracker.New(), d, nil)
	board := tasks.NewBoard()
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	if err := SeedAll(svc, board, now); err != nil {
		t.Fatalf("SeedAll: %v", err)
	}

	if got := svc.Tracker.Active(); len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Fatalf("active officials = %v", got)
	}
	raj, err := svc.Tracker.GetEntity("3")
	if err != nil || raj.Name != "Officer Raj" || raj.Status != tracker.StatusInactive {
		t.Fatalf("Raj = %+v, %v", raj, err)
	}

	// all three demo positions lie in the Chennai Central rectangle
	if len(entered) != 3 {
		t.Fatalf("expected 3 ZoneEntered events, got %d", len(entered))
	}
	if entered[0].EntityName != "Officer Kumar" {
		t.Fatalf("event entity name = %q", entered[0].EntityName)
	}

	ts := board.List("")
	if len(ts) != 3 || ts[1].Status != tasks.StatusInProgress {
		t.Fatalf("tasks = %+v", ts)
	}

	// a second run leaves everything in place
	if err := SeedAll(svc, board, now.Add(time.Minute)); err != nil {
		t.Fatalf("second SeedAll: %v", err)
	}
	if len(board.List("")) != 3 || len(entered) != 3 {
		t.Fatal("seeding is not idempotent")
	}
}
