package alerts

import (
	"time"

	"github.com/bandobast/bandobast-backend/internal/db"
	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/google/uuid"
)

// ZoneEventRecord is the persisted form of a monitor.Event.
type ZoneEventRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Kind       string    `gorm:"size:16;not null" json:"kind"`
	EntityID   string    `gorm:"size:64;not null;index:idx_zone_events_entity_at" json:"entity_id"`
	EntityName string    `json:"entity_name"`
	ZoneID     string    `gorm:"size:64;not null;index" json:"zone_id"`
	ZoneName   string    `json:"zone_name"`
	Lng        float64   `gorm:"not null" json:"lng"`
	Lat        float64   `gorm:"not null" json:"lat"`
	At         time.Time `gorm:"not null;index:idx_zone_events_entity_at" json:"at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (ZoneEventRecord) TableName() string { return db.Schema + ".zone_events" }

func toRecord(ev monitor.Event) ZoneEventRecord {
	return ZoneEventRecord{
		ID:         ev.ID,
		Kind:       string(ev.Kind),
		EntityID:   ev.EntityID,
		EntityName: ev.EntityName,
		ZoneID:     ev.ZoneID,
		ZoneName:   ev.ZoneName,
		Lng:        ev.Position.Lng,
		Lat:        ev.Position.Lat,
		At:         ev.At,
	}
}

func (r ZoneEventRecord) event() monitor.Event {
	return monitor.Event{
		ID:         r.ID,
		Kind:       monitor.EventKind(r.Kind),
		EntityID:   r.EntityID,
		EntityName: r.EntityName,
		ZoneID:     r.ZoneID,
		ZoneName:   r.ZoneName,
		Position:   geo.Point{Lng: r.Lng, Lat: r.Lat},
		At:         r.At,
	}
}
