// Package alerts records zone events for the controller dashboard.
package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bandobast/bandobast-backend/internal/db"
	"github.com/bandobast/bandobast-backend/internal/monitor"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Query filters recent events. Empty fields match everything.
type Query struct {
	EntityID string
	ZoneID   string
	Limit    int
}

func (q Query) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	}
	return q.Limit
}

func (q Query) match(ev monitor.Event) bool {
	return (q.EntityID == "" || ev.EntityID == q.EntityID) &&
		(q.ZoneID == "" || ev.ZoneID == q.ZoneID)
}

// Journal is an observer that keeps zone events for later reads.
type Journal interface {
	monitor.Observer
	Recent(ctx context.Context, q Query) ([]monitor.Event, error)
}

// MemoryJournal keeps the last Capacity events in a ring.
type MemoryJournal struct {
	mu    sync.RWMutex
	buf   []monitor.Event
	next  int
	count int
}

func NewMemoryJournal(capacity int) *MemoryJournal {
	if capacity < 1 {
		capacity = 1
	}
	return &MemoryJournal{buf: make([]monitor.Event, capacity)}
}

func (j *MemoryJournal) Notify(ev monitor.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.buf[j.next] = ev
	j.next = (j.next + 1) % len(j.buf)
	if j.count < len(j.buf) {
		j.count++
	}
	return nil
}

// Recent returns matching events, newest first.
func (j *MemoryJournal) Recent(_ context.Context, q Query) ([]monitor.Event, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	limit := q.limit()
	out := []monitor.Event{}
	for i := 0; i < j.count && len(out) < limit; i++ {
		idx := (j.next - 1 - i + len(j.buf)) % len(j.buf)
		if ev := j.buf[idx]; q.match(ev) {
			out = append(out, ev)
		}
	}
	return out, nil
}

// GormJournal writes events to Postgres.
type GormJournal struct {
	DB      *gorm.DB
	Timeout time.Duration
}

func (j GormJournal) Notify(ev monitor.Event) error {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	rec := toRecord(ev)
	if err := j.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("insert zone event %s: %w", ev.ID, err)
	}
	return nil
}

func (j GormJournal) Recent(ctx context.Context, q Query) ([]monitor.Event, error) {
	tx := j.DB.WithContext(ctx).Model(&ZoneEventRecord{})
	if q.EntityID != "" {
		tx = tx.Where("entity_id = ?", q.EntityID)
	}
	if q.ZoneID != "" {
		tx = tx.Where("zone_id = ?", q.ZoneID)
	}

	var recs []ZoneEventRecord
	if err := tx.Order("at DESC, created_at DESC").Limit(q.limit()).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query zone events: %w", err)
	}
	out := make([]monitor.Event, len(recs))
	for i, r := range recs {
		out[i] = r.event()
	}
	return out, nil
}

// Migrate creates the zone_events table.
func Migrate(d *gorm.DB) error {
	if err := db.EnsureSchema(d, db.Schema); err != nil {
		return fmt.Errorf("ensure schema %s: %w", db.Schema, err)
	}
	if err := d.AutoMigrate(&ZoneEventRecord{}); err != nil {
		return fmt.Errorf("migrate zone events: %w", err)
	}
	return nil
}
