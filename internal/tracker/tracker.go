// Package tracker keeps the last known position of every tracked official.
package tracker

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidStatus = errors.New("invalid status")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// ParseStatus accepts both the internal names and the on-duty/off-duty names
// the dashboards use.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active", "on-duty", "on_duty":
		return StatusActive, nil
	case "inactive", "off-duty", "off_duty":
		return StatusInactive, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// DutyLabel is the dashboard name for the status.
func (s Status) DutyLabel() string {
	if s == StatusActive {
		return "on-duty"
	}
	return "off-duty"
}

// Entity is a snapshot of a tracked official. Position is nil until the first
// report arrives.
type Entity struct {
	ID        string
	Name      string
	Position  *geo.Point
	Status    Status
	UpdatedAt time.Time
}

func (e Entity) clone() Entity {
	if e.Position != nil {
		p := *e.Position
		e.Position = &p
	}
	return e
}

// Tracker is the single owner of entity records.
type Tracker struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

func New() *Tracker {
	return &Tracker{entities: make(map[string]*Entity)}
}

// ReportPosition records pos for id unless ts is older than the entity's last
// update. Equal timestamps are applied. Unknown entities are created active,
// named after their id. It returns whether the report was applied.
func (t *Tracker) ReportPosition(id string, pos geo.Point, ts time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entities[id]
	if !ok {
		e = &Entity{ID: id, Name: id, Status: StatusActive}
		t.entities[id] = e
	} else if ts.Before(e.UpdatedAt) {
		return false
	}
	p := pos
	e.Position = &p
	e.UpdatedAt = ts
	return true
}

// Register creates or updates the display name and status of an entity
// without touching its position.
func (t *Tracker) Register(id, name string, status Status) Entity {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entities[id]
	if !ok {
		e = &Entity{ID: id, Name: id}
		t.entities[id] = e
	}
	if n := NormalizeName(name); n != "" {
		e.Name = n
	}
	e.Status = status
	return e.clone()
}

func (t *Tracker) GetEntity(id string) (Entity, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	e, ok := t.entities[id]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return e.clone(), nil
}

// List returns a snapshot of all entities, most recently updated first. Ties,
// including entities that have never reported, are ordered by id.
func (t *Tracker) List() []Entity {
	t.mu.RLock()
	out := make([]Entity, 0, len(t.entities))
	for _, e := range t.entities {
		out = append(out, e.clone())
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Active returns the ids of active entities sorted by id.
func (t *Tracker) Active() []string {
	var ids []string
	for _, e := range t.List() {
		if e.Status == StatusActive {
			ids = append(ids, e.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// NormalizeName collapses whitespace and title-cases a display name.
func NormalizeName(name string) string {
	// a Caser is stateful, so one per call
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}
