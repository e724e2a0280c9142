package dashboard

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/progress"
)

// Exporter triggers deck exports and optionally fetches the result.
type Exporter struct {
	Client   Backend
	Interval time.Duration
	// NewBar returns the writer that renders download progress. Nil uses
	// progress.NewDownloadBar.
	NewBar func(size int64, description string) io.Writer
}

// ExportOptions controls how far an export is followed.
type ExportOptions struct {
	Wait        bool   // poll until the export finishes
	DownloadDir string // download the file here once complete; empty skips it
}

// ExportResult describes the outcome of an export request.
type ExportResult struct {
	Status string
	Path   string // local file, set when downloaded
}

// Export asks the backend to export project id as kind. With Wait it polls
// the project until the export status settles; with DownloadDir it then
// saves the file locally. Downloading implies waiting.
func (e *Exporter) Export(ctx context.Context, id string, kind backend.ExportKind, opts ExportOptions) (*ExportResult, error) {
	resp, err := e.Client.Export(ctx, id, kind)
	if err != nil {
		return nil, err
	}
	result := &ExportResult{Status: resp.Status}
	if !opts.Wait && opts.DownloadDir == "" {
		return result, nil
	}

	var detail *backend.ProjectDetail
	err = poll(ctx, e.Interval, func() (bool, error) {
		d, err := e.Client.GetProject(ctx, id)
		if err != nil {
			return false, err
		}
		detail = d
		result.Status = d.Project.ExportStatus(kind)
		return backend.Terminal(result.Status), nil
	})
	if err != nil {
		return result, fmt.Errorf("waiting for %s export of %s: %w", kind, id, err)
	}
	if result.Status == backend.StatusFailed {
		return result, fmt.Errorf("%s export of %s failed", kind, id)
	}
	if opts.DownloadDir == "" {
		return result, nil
	}

	path, err := e.download(ctx, detail.Project.ProjectName, kind, opts.DownloadDir)
	if err != nil {
		return result, err
	}
	result.Path = path
	return result, nil
}

// download streams the exported file into dir, writing through a temporary
// file so an interrupted download leaves nothing behind.
func (e *Exporter) download(ctx context.Context, name string, kind backend.ExportKind, dir string) (string, error) {
	body, size, err := e.Client.OpenDownload(ctx, name, kind)
	if err != nil {
		return "", err
	}
	defer body.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating download directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".deckview-download-*")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	defer os.Remove(tmp.Name())

	newBar := e.NewBar
	if newBar == nil {
		newBar = progress.NewDownloadBar
	}
	filename := name + "." + string(kind)
	if _, err := io.Copy(io.MultiWriter(tmp, newBar(size, "downloading "+filename)), body); err != nil {
		tmp.Close()
		return "", fmt.Errorf("downloading %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing %s: %w", filename, err)
	}

	path := filepath.Join(dir, filepath.Base(filename))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("saving %s: %w", filename, err)
	}
	return path, nil
}
