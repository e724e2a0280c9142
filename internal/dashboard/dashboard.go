package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/ezppt/deckview/internal/backend"
)

// DefaultPollInterval matches the refresh rate of the project dashboard.
const DefaultPollInterval = 6 * time.Second

// maxPollFailures is how many consecutive failed polls are tolerated
// before a watch gives up.
const maxPollFailures = 3

// Backend is the subset of the backend client used by the workflows.
type Backend interface {
	GetProject(ctx context.Context, id string) (*backend.ProjectDetail, error)
	Export(ctx context.Context, id string, kind backend.ExportKind) (*backend.StatusResponse, error)
	OpenDownload(ctx context.Context, projectName string, kind backend.ExportKind) (io.ReadCloser, int64, error)
}

// poll calls check every interval until it reports done, fails, or ctx is
// cancelled. Transient errors are logged and retried.
func poll(ctx context.Context, interval time.Duration, check func() (bool, error)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failures := 0
	for {
		done, err := check()
		switch {
		case err == nil:
			failures = 0
			if done {
				return nil
			}
		case backend.StatusCode(err) == http.StatusNotFound:
			return err
		default:
			failures++
			if failures >= maxPollFailures {
				return fmt.Errorf("giving up after %d failed polls: %w", failures, err)
			}
			log.Printf("dashboard: poll failed (%d/%d): %v", failures, maxPollFailures, err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ErrGenerationFailed is returned when a watched project ends in the
// failed state.
var ErrGenerationFailed = errors.New("generation failed")
