package seeds

import (
	"fmt"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/tasks"
	"github.com/rs/zerolog/log"
)

var demoTasks = []struct {
	Title    string
	Location geo.Point
	Status   tasks.Status
}{
	{"Traffic Management at Anna Nagar", geo.Point{Lng: 80.2707, Lat: 13.0827}, tasks.StatusPending},
	{"Crowd Control at T Nagar", geo.Point{Lng: 80.2597, Lat: 13.0527}, tasks.StatusInProgress},
	{"Traffic Signal Maintenance at Adyar", geo.Point{Lng: 80.2697, Lat: 13.0627}, tasks.StatusPending},
}

func SeedTasks(board *tasks.Board) error {
	if len(board.List("")) > 0 {
		log.Warn().Msg("Tasks exist, skipping")
		return nil
	}
	for _, d := range demoTasks {
		t, err := board.Create(d.Title, d.Location)
		if err != nil {
			return fmt.Errorf("failed to create task %s: %w", d.Title, err)
		}
		if _, err := board.SetStatus(t.ID, d.Status); err != nil {
			return fmt.Errorf("failed to set status of %s: %w", d.Title, err)
		}
	}

	log.Info().Int("count", len(demoTasks)).Msg("Seeded tasks")
	return nil
}
