package alerts

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/bandobast/bandobast-backend/internal/db"
	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// testDB is nil when no database is configured.
var testDB *gorm.DB

func TestMain(m *testing.M) {
	_ = godotenv.Load("../../.env.local")

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		d, err := db.Connect(dsn, zerolog.Nop())
		if err == nil && Migrate(d) == nil {
			testDB = d
		}
	}
	os.Exit(m.Run())
}

// TestGormJournal verifies persisted events come back filtered and newest first.
func TestGormJournal(t *testing.T) {
	if testDB == nil {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	j := GormJournal{DB: testDB}
	entity := "test-" + uuid.NewString()[:8]
	t.Cleanup(func() {
		testDB.Where("entity_id = ?", entity).Delete(&ZoneEventRecord{})
	})

	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	for i, kind := range []monitor.EventKind{monitor.ZoneEntered, monitor.ZoneExited, monitor.ZoneEntered} {
		ev := event(entity, "chennai-central", kind, base.Add(time.Duration(i)*time.Second))
		ev.Position = geo.Point{Lng: 80.27, Lat: 13.06}
		if err := j.Notify(ev); err != nil {
			t.Fatalf("Notify: %v", err)
		}
	}

	got, err := j.Recent(ctx, Query{EntityID: entity, Limit: 2})
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Kind != monitor.ZoneEntered || got[1].Kind != monitor.ZoneExited {
		t.Fatalf("unexpected order %+v", got)
	}
	if got[0].Position.Lng != 80.27 || !got[0].At.Equal(base.Add(2*time.Second)) {
		t.Fatalf("unexpected event %+v", got[0])
	}
}
