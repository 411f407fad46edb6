package monitor

import (
	"errors"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/google/uuid"
)

var ErrPositionUnavailable = errors.New("position unavailable")

// State is the membership of one entity relative to one zone.
type State string

const (
	StateUnknown State = "unknown"
	StateInside  State = "inside"
	StateOutside State = "outside"
)

type EventKind string

const (
	ZoneEntered EventKind = "ZoneEntered"
	ZoneExited  EventKind = "ZoneExited"
)

// Event is a zone membership transition. At is the timestamp of the position
// report that caused it.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Kind       EventKind `json:"kind"`
	EntityID   string    `json:"entity_id"`
	EntityName string    `json:"entity_name"`
	ZoneID     string    `json:"zone_id"`
	ZoneName   string    `json:"zone_name"`
	Position   geo.Point `json:"position"`
	At         time.Time `json:"at"`
}

// ZoneStatus is one row of an entity's membership report.
type ZoneStatus struct {
	Zone  string `json:"zone"`
	State State  `json:"state"`
}
