package zones

import (
	"context"
	"fmt"
	"time"

	"github.com/bandobast/bandobast-backend/internal/db"
	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists zones so the registry survives restarts. The registry stays
// the source of truth while the process runs.
type Store interface {
	Save(ctx context.Context, z Zone) error
	Delete(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]Zone, error)
}

// ZoneRecord is the persisted form of a Zone. Vertices are split into two
// parallel float8[] columns.
type ZoneRecord struct {
	ID        string          `gorm:"primaryKey;size:64" json:"id"`
	Name      string          `gorm:"not null" json:"name"`
	Lngs      pq.Float64Array `gorm:"type:float8[];not null" json:"lngs"`
	Lats      pq.Float64Array `gorm:"type:float8[];not null" json:"lats"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (ZoneRecord) TableName() string { return db.Schema + ".zones" }

func toRecord(z Zone) ZoneRecord {
	vs := z.Polygon.Vertices()
	rec := ZoneRecord{
		ID:   z.ID,
		Name: z.Name,
		Lngs: make(pq.Float64Array, len(vs)),
		Lats: make(pq.Float64Array, len(vs)),
	}
	for i, v := range vs {
		rec.Lngs[i] = v.Lng
		rec.Lats[i] = v.Lat
	}
	return rec
}

func fromRecord(rec ZoneRecord) (Zone, error) {
	if len(rec.Lngs) != len(rec.Lats) {
		return Zone{}, fmt.Errorf("%w: %s has %d longitudes and %d latitudes",
			ErrInvalidZone, rec.ID, len(rec.Lngs), len(rec.Lats))
	}
	vs := make([]geo.Point, len(rec.Lngs))
	for i := range rec.Lngs {
		vs[i] = geo.Point{Lng: rec.Lngs[i], Lat: rec.Lats[i]}
	}
	return NewZone(rec.ID, rec.Name, vs)
}

// GormStore keeps zones in Postgres.
type GormStore struct {
	DB *gorm.DB
}

func (s GormStore) Save(ctx context.Context, z Zone) error {
	rec := toRecord(z)
	err := s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "lngs", "lats", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save zone %s: %w", z.ID, err)
	}
	return nil
}

func (s GormStore) Delete(ctx context.Context, id string) error {
	if err := s.DB.WithContext(ctx).Delete(&ZoneRecord{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("delete zone %s: %w", id, err)
	}
	return nil
}

func (s GormStore) LoadAll(ctx context.Context) ([]Zone, error) {
	var recs []ZoneRecord
	if err := s.DB.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	out := make([]Zone, 0, len(recs))
	for _, rec := range recs {
		z, err := fromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, z)
	}
	return out, nil
}

// Migrate creates the zones table.
func Migrate(d *gorm.DB) error {
	if err := db.EnsureSchema(d, db.Schema); err != nil {
		return fmt.Errorf("ensure schema %s: %w", db.Schema, err)
	}
	if err := d.AutoMigrate(&ZoneRecord{}); err != nil {
		return fmt.Errorf("migrate zones: %w", err)
	}
	return nil
}
