package seeds

import (
	"fmt"
	"time"

	"github.com/bandobast/bandobast-backend/internal/geo"
	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/bandobast/bandobast-backend/internal/tracker"
	"github.com/rs/zerolog/log"
)

type official struct {
	ID       string
	Name     string
	Position geo.Point
	Status   tracker.Status
}

var demoOfficials = []official{
	{ID: "1", Name: "Officer Kumar", Position: geo.Point{Lng: 80.2707, Lat: 13.0827}, Status: tracker.StatusActive},
	{ID: "2", Name: "Officer Priya", Position: geo.Point{Lng: 80.2597, Lat: 13.0527}, Status: tracker.StatusActive},
	{ID: "3", Name: "Officer Raj", Position: geo.Point{Lng: 80.2697, Lat: 13.0627}, Status: tracker.StatusInactive},
}

func SeedOfficials(svc *monitor.Service, now time.Time) error {
	for _, o := range demoOfficials {
		if _, err := svc.Tracker.GetEntity(o.ID); err == nil {
			log.Warn().Str("official", o.Name).Msg("Official exists, skipping")
			continue
		}
		svc.Tracker.Register(o.ID, o.Name, o.Status)
		if _, _, err := svc.ReportPosition(o.ID, o.Position, now); err != nil {
			return fmt.Errorf("failed to seed official %s: %w", o.Name, err)
		}
	}

	log.Info().Int("count", len(demoOfficials)).Msg("Seeded officials")
	return nil
}
