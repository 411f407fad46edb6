// Package tasks keeps the controller's duty task list in memory.
package tasks

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/google/uuid"
)

type Board struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*Task
	seq   map[uuid.UUID]int
	next  int

	now func() time.Time
}

func NewBoard() *Board {
	return &Board{
		tasks: make(map[uuid.UUID]*Task),
		seq:   make(map[uuid.UUID]int),
		now:   time.Now,
	}
}

// Create adds a pending, unassigned task.
func (b *Board) Create(title string, loc geo.Point) (Task, error) {
	if title == "" {
		return Task{}, fmt.Errorf("task title is required")
	}
	if !loc.Valid() {
		return Task{}, fmt.Errorf("invalid task location %s", loc)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now().UTC()
	t := &Task{
		ID:        uuid.New(),
		Title:     title,
		Location:  loc,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	b.tasks[t.ID] = t
	b.seq[t.ID] = b.next
	b.next++
	return *t, nil
}

func (b *Board) Get(id uuid.UUID) (Task, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *t, nil
}

// List returns tasks in creation order. A non-empty assignedTo keeps only
// that entity's tasks.
func (b *Board) List(assignedTo string) []Task {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := []Task{}
	for _, id := range b.orderLocked() {
		t := b.tasks[id]
		if assignedTo != "" && t.AssignedTo != assignedTo {
			continue
		}
		out = append(out, *t)
	}
	return out
}

func (b *Board) SetStatus(id uuid.UUID, status Status) (Task, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Task{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if t.Status != status {
		t.Status = status
		t.UpdatedAt = b.now().UTC()
	}
	return *t, nil
}

// Assign hands a task to one entity. An empty entityID unassigns it.
func (b *Board) Assign(id uuid.UUID, entityID string) (Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tasks[id]
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if t.AssignedTo != entityID {
		t.AssignedTo = entityID
		t.UpdatedAt = b.now().UTC()
	}
	return *t, nil
}

// AssignRoundRobin distributes open tasks over the given entities in
// creation order: the i-th open task goes to entities[i % len(entities)].
// With no entities every open task is unassigned. Completed tasks keep their
// assignee.
func (b *Board) AssignRoundRobin(entities []string) []Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now().UTC()
	out := []Task{}
	i := 0
	for _, id := range b.orderLocked() {
		t := b.tasks[id]
		if t.Status == StatusCompleted {
			continue
		}
		assignee := ""
		if len(entities) > 0 {
			assignee = entities[i%len(entities)]
		}
		i++
		if t.AssignedTo != assignee {
			t.AssignedTo = assignee
			t.UpdatedAt = now
		}
		out = append(out, *t)
	}
	return out
}

// must hold b.mu
func (b *Board) orderLocked() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(b.tasks))
	for id := range b.tasks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return b.seq[ids[i]] < b.seq[ids[j]] })
	return ids
}
