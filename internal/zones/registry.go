package zones

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"

	"github.com/bandobast/bandobast-backend/internal/geo"
)

var (
	ErrNotFound    = errors.New("zone not found")
	ErrInvalidZone = errors.New("invalid zone")
)

// Zone is an authorized area officials are expected to stay within.
type Zone struct {
	ID      string
	Name    string
	Polygon geo.Polygon
}

// NewZone validates the vertices and builds a Zone.
func NewZone(id, name string, vertices []geo.Point) (Zone, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Zone{}, fmt.Errorf("%w: empty id", ErrInvalidZone)
	}
	pg, err := geo.NewPolygon(vertices)
	if err != nil {
		return Zone{}, fmt.Errorf("%w: %s: %v", ErrInvalidZone, id, err)
	}
	if name == "" {
		name = id
	}
	return Zone{ID: id, Name: name, Polygon: pg}, nil
}

func (z Zone) Contains(p geo.Point) bool { return z.Polygon.Contains(p) }

// Registry is an in-memory, thread-safe store of zones keyed by id.
type Registry struct {
	mu    sync.RWMutex
	zones map[string]Zone

	onChange func(count int)
}

func NewRegistry() *Registry {
	return &Registry{zones: make(map[string]Zone)}
}

// OnChange installs a hook called with the zone count after every mutation.
func (r *Registry) OnChange(fn func(count int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = fn
}

// RegisterZone adds z, replacing any zone with the same id.
func (r *Registry) RegisterZone(z Zone) error {
	if strings.TrimSpace(z.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidZone)
	}
	if len(z.Polygon.Vertices()) < 3 {
		return fmt.Errorf("%w: %s has fewer than 3 vertices", ErrInvalidZone, z.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.zones[z.ID] = z
	r.changed()
	return nil
}

func (r *Registry) GetZone(id string) (Zone, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	z, ok := r.zones[id]
	if !ok {
		return Zone{}, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return z, nil
}

func (r *Registry) RemoveZone(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.zones[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(r.zones, id)
	r.changed()
	return nil
}

// ListZones returns a sequence over the zones registered when iteration
// starts. The sequence can be ranged over any number of times; zones removed
// mid-iteration are skipped.
func (r *Registry) ListZones() iter.Seq[Zone] {
	return func(yield func(Zone) bool) {
		r.mu.RLock()
		ids := make([]string, 0, len(r.zones))
		for id := range r.zones {
			ids = append(ids, id)
		}
		r.mu.RUnlock()

		for _, id := range ids {
			r.mu.RLock()
			z, ok := r.zones[id]
			r.mu.RUnlock()
			if !ok {
				continue
			}
			if !yield(z) {
				return
			}
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.zones)
}

// must hold r.mu
func (r *Registry) changed() {
	if r.onChange != nil {
		r.onChange(len(r.zones))
	}
}
