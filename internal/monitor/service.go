package monitor

import (
	"fmt"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/bandobast/bandobast-backend/internal/zones"
)

// Service is the entry point for position reports. Each accepted report is
// evaluated exactly once and its events dispatched once, in report order per
// entity. Different entities proceed in parallel.
type Service struct {
	Zones      *zones.Registry
	Tracker    *tracker.Tracker
	Evaluator  *Evaluator
	Dispatcher *Dispatcher

	metrics Metrics
}

// New wires a Service. m may be nil.
func New(zr *zones.Registry, tr *tracker.Tracker, d *Dispatcher, m Metrics) *Service {
	if m == nil {
		m = noopMetrics{}
	}
	return &Service{
		Zones:      zr,
		Tracker:    tr,
		Evaluator:  NewEvaluator(zr, tr),
		Dispatcher: d,
		metrics:    m,
	}
}

// ReportPosition records a position and, when it is not stale, evaluates the
// entity and dispatches the resulting events. Observers run while the
// entity's lock is held and must not report positions for the same entity.
func (s *Service) ReportPosition(entityID string, pos geo.Point, ts time.Time) (bool, []Event, error) {
	if !pos.Valid() {
		return false, nil, fmt.Errorf("invalid position %s", pos)
	}

	sl := s.Evaluator.slot(entityID)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	applied := s.Tracker.ReportPosition(entityID, pos, ts)
	s.metrics.PositionReported(applied)
	if !applied {
		return false, nil, nil
	}

	events, err := s.Evaluator.evaluateLocked(entityID, sl)
	if err != nil {
		return true, nil, err
	}
	s.Dispatcher.Dispatch(events...)
	return true, events, nil
}

// Evaluate recomputes membership without dispatching. Events returned here
// are consumed by the caller; a following ReportPosition only reports changes
// relative to this evaluation.
func (s *Service) Evaluate(entityID string) ([]Event, error) {
	return s.Evaluator.Evaluate(entityID)
}

// ZoneStatus reports the entity's membership in every registered zone.
func (s *Service) ZoneStatus(entityID string) ([]ZoneStatus, error) {
	if _, err := s.Tracker.GetEntity(entityID); err != nil {
		return nil, err
	}
	return s.Evaluator.States(entityID), nil
}
