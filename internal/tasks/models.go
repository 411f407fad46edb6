package tasks

import (
	"errors"
	"fmt"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("task not found")
	ErrInvalidStatus = errors.New("invalid task status")
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusInProgress, StatusCompleted:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Progress is the completion percentage shown on the controller dashboard.
func (s Status) Progress() int {
	switch s {
	case StatusInProgress:
		return 50
	case StatusCompleted:
		return 100
	}
	return 0
}

// Task is a duty assignment. AssignedTo is an entity id, empty when unassigned.
type Task struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Location   geo.Point `json:"location"`
	Status     Status    `json:"status"`
	AssignedTo string    `json:"assigned_to,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
