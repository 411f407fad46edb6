package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/google/uuid"
)

func newBoard(t *testing.T, titles ...string) (*Board, []Task) {
	t.Helper()
	b := NewBoard()
	clock := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	b.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	var out []Task
	for _, title := range titles {
		tk, err := b.Create(title, geo.Point{Lng: 80.27, Lat: 13.06})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		out = append(out, tk)
	}
	return b, out
}

func TestProgress(t *testing.T) {
	cases := map[Status]int{StatusPending: 0, StatusInProgress: 50, StatusCompleted: 100}
	for st, want := range cases {
		if got := st.Progress(); got != want {
			t.Errorf("%s progress = %d, want %d", st, got, want)
		}
	}
}

func TestCreate_Rejects(t *testing.T) {
	b := NewBoard()
	if _, err := b.Create("", geo.Point{Lng: 80, Lat: 13}); err == nil {
		t.Fatal("empty title accepted")
	}
	if _, err := b.Create("x", geo.Point{Lng: 80, Lat: 95}); err == nil {
		t.Fatal("invalid location accepted")
	}
	if len(b.List("")) != 0 {
		t.Fatal("rejected task stored")
	}
}

func TestSetStatus(t *testing.T) {
	b, ts := newBoard(t, "Anna Nagar")

	got, err := b.SetStatus(ts[0].ID, StatusInProgress)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if got.Status != StatusInProgress || !got.UpdatedAt.After(ts[0].UpdatedAt) {
		t.Fatalf("unexpected task %+v", got)
	}
	if _, err := b.SetStatus(ts[0].ID, "archived"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("err = %v, want ErrInvalidStatus", err)
	}
	if _, err := b.SetStatus(uuid.New(), StatusCompleted); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAssignRoundRobin(t *testing.T) {
	b, ts := newBoard(t, "Anna Nagar", "T Nagar", "Adyar", "Mylapore")
	if _, err := b.SetStatus(ts[1].ID, StatusCompleted); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Assign(ts[1].ID, "9"); err != nil {
		t.Fatal(err)
	}

	out := b.AssignRoundRobin([]string{"1", "2"})
	if len(out) != 3 {
		t.Fatalf("expected 3 open tasks, got %d", len(out))
	}
	want := []string{"1", "2", "1"}
	titles := []string{"Anna Nagar", "Adyar", "Mylapore"}
	for i, tk := range out {
		if tk.Title != titles[i] {
			t.Errorf("open task %d = %q, want %q", i, tk.Title, titles[i])
		}
		if tk.AssignedTo != want[i] {
			t.Errorf("task %q assigned to %q, want %q", tk.Title, tk.AssignedTo, want[i])
		}
	}
	done, _ := b.Get(ts[1].ID)
	if done.AssignedTo != "9" {
		t.Fatalf("completed task reassigned to %q", done.AssignedTo)
	}

	// open tasks in creation order are Anna Nagar, Adyar, Mylapore
	if mine := b.List("1"); len(mine) != 2 || mine[0].Title != "Anna Nagar" || mine[1].Title != "Mylapore" {
		t.Fatalf("List(1) = %+v", mine)
	}
}

func TestAssignRoundRobin_NoOfficials(t *testing.T) {
	b, ts := newBoard(t, "Anna Nagar")
	if _, err := b.Assign(ts[0].ID, "1"); err != nil {
		t.Fatal(err)
	}
	out := b.AssignRoundRobin(nil)
	if len(out) != 1 || out[0].AssignedTo != "" {
		t.Fatalf("expected task to be unassigned, got %+v", out)
	}
}
