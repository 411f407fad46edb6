package monitor

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/bandobast/bandobast-backend/internal/zones"
	"github.com/google/uuid"
)

// slot serializes all work for one entity and holds its membership states.
type slot struct {
	mu     sync.Mutex
	states map[string]State
}

// Evaluator classifies entities against every registered zone and turns
// membership changes into events. Its states are derived data: dropping them
// only means the next evaluation starts from unknown.
type Evaluator struct {
	zones   *zones.Registry
	tracker *tracker.Tracker

	mu    sync.Mutex
	slots map[string]*slot
}

func NewEvaluator(zr *zones.Registry, tr *tracker.Tracker) *Evaluator {
	return &Evaluator{
		zones:   zr,
		tracker: tr,
		slots:   make(map[string]*slot),
	}
}

// slot returns the entity's slot, creating it on first use. Callers only ask
// for ids the tracker holds or is about to hold for a valid report, and the
// tracker never forgets an entity, so slots stay one per tracked entity.
func (ev *Evaluator) slot(id string) *slot {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	s, ok := ev.slots[id]
	if !ok {
		s = &slot{states: make(map[string]State)}
		ev.slots[id] = s
	}
	return s
}

// Evaluate recomputes the entity's membership in every zone and returns the
// transitions since the previous evaluation.
func (ev *Evaluator) Evaluate(entityID string) ([]Event, error) {
	if _, err := ev.tracker.GetEntity(entityID); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPositionUnavailable, entityID, err)
	}
	s := ev.slot(entityID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return ev.evaluateLocked(entityID, s)
}

// must hold s.mu
func (ev *Evaluator) evaluateLocked(entityID string, s *slot) ([]Event, error) {
	e, err := ev.tracker.GetEntity(entityID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPositionUnavailable, entityID, err)
	}
	if e.Position == nil {
		return nil, fmt.Errorf("%w: %s has not reported a position", ErrPositionUnavailable, entityID)
	}
	pos := *e.Position

	next := make(map[string]State, len(s.states))
	var events []Event
	for z := range ev.zones.ListZones() {
		cur := classify(z, pos)
		prev, ok := s.states[z.ID]
		if !ok {
			prev = StateUnknown
		}
		if kind, emit := transition(prev, cur); emit {
			events = append(events, Event{
				ID:         uuid.New(),
				Kind:       kind,
				EntityID:   e.ID,
				EntityName: e.Name,
				ZoneID:     z.ID,
				ZoneName:   z.Name,
				Position:   pos,
				At:         e.UpdatedAt,
			})
		}
		next[z.ID] = cur
	}
	// zones removed since the last run drop out here
	s.states = next

	sort.Slice(events, func(i, j int) bool { return events[i].ZoneID < events[j].ZoneID })
	return events, nil
}

func classify(z zones.Zone, p geo.Point) State {
	if z.Contains(p) {
		return StateInside
	}
	return StateOutside
}

// transition decides whether a prev -> cur change is reported. A first
// sighting inside counts as entering; a first sighting outside is silent.
func transition(prev, cur State) (EventKind, bool) {
	switch {
	case prev == cur:
		return "", false
	case cur == StateInside:
		return ZoneEntered, true
	case prev == StateInside && cur == StateOutside:
		return ZoneExited, true
	}
	return "", false
}

// States returns the stored membership per registered zone. Zones that have
// not been evaluated for this entity report unknown.
func (ev *Evaluator) States(entityID string) []ZoneStatus {
	ev.mu.Lock()
	s, ok := ev.slots[entityID]
	ev.mu.Unlock()

	var stored map[string]State
	if ok {
		s.mu.Lock()
		stored = make(map[string]State, len(s.states))
		for k, v := range s.states {
			stored[k] = v
		}
		s.mu.Unlock()
	}

	out := []ZoneStatus{}
	for z := range ev.zones.ListZones() {
		st, ok := stored[z.ID]
		if !ok {
			st = StateUnknown
		}
		out = append(out, ZoneStatus{Zone: z.ID, State: st})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out
}
