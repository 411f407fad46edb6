package seeds

import (
	"time"

	"github.com/bandobast/bandobast-backend/internal/monitor"
	"github.com/bandobast/bandobast-backend/internal/tasks"
)

// SeedAll registers the demo officials and tasks. Officials report their
// positions through svc so their zone membership is evaluated like any live
// report.
func SeedAll(svc *monitor.Service, board *tasks.Board, now time.Time) error {
	if err := SeedOfficials(svc, now); err != nil {
		return err
	}
	if err := SeedTasks(board); err != nil {
		return err
	}
	return nil
}
