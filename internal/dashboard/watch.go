package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/progress"
)

// Watcher follows a project's generation until it completes or fails.
type Watcher struct {
	Client   Backend
	Interval time.Duration
	Reporter progress.Reporter
}

// Watch polls the project and reports completed slides. It returns the
// last project detail seen; a failed project also returns
// ErrGenerationFailed.
func (w *Watcher) Watch(ctx context.Context, id string) (*backend.ProjectDetail, error) {
	var (
		last    *backend.ProjectDetail
		started bool
	)
	err := poll(ctx, w.Interval, func() (bool, error) {
		detail, err := w.Client.GetProject(ctx, id)
		if err != nil {
			return false, err
		}
		last = detail

		stats := detail.SlideStats
		if !started {
			w.Reporter.Start(stats.Total)
			started = true
		}
		w.Reporter.Update(stats.Completed, statusLine(detail))
		return backend.Terminal(detail.Project.Status), nil
	})
	if started {
		w.Reporter.Finish()
	}
	if err != nil {
		return last, fmt.Errorf("watching project %s: %w", id, err)
	}
	if last.Project.Status == backend.StatusFailed {
		return last, fmt.Errorf("project %s: %w", id, ErrGenerationFailed)
	}
	return last, nil
}

func statusLine(d *backend.ProjectDetail) string {
	s := d.SlideStats
	line := d.Project.Status
	if s.Generating > 0 {
		line += fmt.Sprintf(", %d generating", s.Generating)
	}
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d failed", s.Failed)
	}
	return line
}
