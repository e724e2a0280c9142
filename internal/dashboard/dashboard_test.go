package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ezppt/deckview/internal/backend"
)

// scriptedBackend replays a sequence of project details, one per poll.
type scriptedBackend struct {
	mu       sync.Mutex
	details  []*backend.ProjectDetail
	errs     []error
	polls    int
	export   *backend.StatusResponse
	download string
}

func (b *scriptedBackend) GetProject(ctx context.Context, id string) (*backend.ProjectDetail, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.polls
	b.polls++
	if i < len(b.errs) && b.errs[i] != nil {
		return nil, b.errs[i]
	}
	if i >= len(b.details) {
		i = len(b.details) - 1
	}
	return b.details[i], nil
}

func (b *scriptedBackend) Export(ctx context.Context, id string, kind backend.ExportKind) (*backend.StatusResponse, error) {
	return b.export, nil
}

func (b *scriptedBackend) OpenDownload(ctx context.Context, name string, kind backend.ExportKind) (io.ReadCloser, int64, error) {
	return io.NopCloser(strings.NewReader(b.download)), int64(len(b.download)), nil
}

func detail(status string, completed, total int) *backend.ProjectDetail {
	return &backend.ProjectDetail{
		Project:    backend.Project{ProjectID: "p1", ProjectName: "deck", Status: status},
		SlideStats: backend.SlideStats{Total: total, Completed: completed},
	}
}

type recordingReporter struct {
	total    int
	updates  []int
	finished bool
}

func (r *recordingReporter) Start(total int) { r.total = total }
func (r *recordingReporter) Update(current int, _ string) { r.updates = append(r.updates, current) }
func (r *recordingReporter) Finish() { r.finished = true }

func TestWatchUntilCompleted(t *testing.T) {
	b := &scriptedBackend{details: []*backend.ProjectDetail{
		detail("generating_slides", 0, 3),
		detail("generating_slides", 2, 3),
		detail("completed", 3, 3),
	}}
	rep := &recordingReporter{}
	w := &Watcher{Client: b, Interval: time.Millisecond, Reporter: rep}

	got, err := w.Watch(t.Context(), "p1")
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if got.Project.Status != "completed" {
		t.Errorf("expected completed, got %q", got.Project.Status)
	}
	if rep.total != 3 || !rep.finished {
		t.Errorf("unexpected reporter state %+v", rep)
	}
	if len(rep.updates) != 3 || rep.updates[2] != 3 {
		t.Errorf("unexpected updates %v", rep.updates)
	}
}

func TestWatchFailedProject(t *testing.T) {
	b := &scriptedBackend{details: []*backend.ProjectDetail{detail("failed", 1, 3)}}
	w := &Watcher{Client: b, Interval: time.Millisecond, Reporter: &recordingReporter{}}

	_, err := w.Watch(t.Context(), "p1")
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected ErrGenerationFailed, got %v", err)
	}
}

func TestWatchToleratesTransientErrors(t *testing.T) {
	b := &scriptedBackend{
		details: []*backend.ProjectDetail{nil, nil, detail("completed", 1, 1)},
		errs:    []error{errors.New("connection reset"), errors.New("connection reset")},
	}
	w := &Watcher{Client: b, Interval: time.Millisecond, Reporter: &recordingReporter{}}

	if _, err := w.Watch(t.Context(), "p1"); err != nil {
		t.Fatalf("Watch: %v", err)
	}
}

func TestWatchGivesUp(t *testing.T) {
	boom := errors.New("connection refused")
	b := &scriptedBackend{
		details: []*backend.ProjectDetail{nil},
		errs:    []error{boom, boom, boom},
	}
	w := &Watcher{Client: b, Interval: time.Millisecond, Reporter: &recordingReporter{}}

	if _, err := w.Watch(t.Context(), "p1"); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestWatchCancelled(t *testing.T) {
	b := &scriptedBackend{details: []*backend.ProjectDetail{detail("generating_slides", 0, 3)}}
	w := &Watcher{Client: b, Interval: time.Hour, Reporter: &recordingReporter{}}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	if _, err := w.Watch(ctx, "p1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestExportWithoutWait(t *testing.T) {
	b := &scriptedBackend{export: &backend.StatusResponse{Status: "generating"}}
	e := &Exporter{Client: b}

	res, err := e.Export(t.Context(), "p1", backend.ExportPDF, ExportOptions{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Status != "generating" || b.polls != 0 {
		t.Errorf("expected no polling, got status %q after %d polls", res.Status, b.polls)
	}
}

func TestExportWaitAndDownload(t *testing.T) {
	pending := detail("completed", 3, 3)
	pending.Project.PPTXStatus = "generating"
	done := detail("completed", 3, 3)
	done.Project.PPTXStatus = "completed"

	b := &scriptedBackend{
		export:   &backend.StatusResponse{Status: "generating"},
		details:  []*backend.ProjectDetail{pending, done},
		download: "PPTX-BYTES",
	}
	var bar strings.Builder
	e := &Exporter{Client: b, Interval: time.Millisecond, NewBar: func(int64, string) io.Writer { return &bar }}
	dir := t.TempDir()

	res, err := e.Export(t.Context(), "p1", backend.ExportPPTX, ExportOptions{DownloadDir: dir})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if res.Path != filepath.Join(dir, "deck.pptx") {
		t.Errorf("unexpected path %q", res.Path)
	}
	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "PPTX-BYTES" || bar.String() != "PPTX-BYTES" {
		t.Errorf("unexpected download %q (bar saw %q)", data, bar.String())
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the downloaded file, got %d entries", len(entries))
	}
}

func TestExportFailed(t *testing.T) {
	failed := detail("completed", 3, 3)
	failed.Project.PDFStatus = "failed"
	b := &scriptedBackend{export: &backend.StatusResponse{Status: "generating"}, details: []*backend.ProjectDetail{failed}}
	e := &Exporter{Client: b, Interval: time.Millisecond}

	res, err := e.Export(t.Context(), "p1", backend.ExportPDF, ExportOptions{Wait: true})
	if err == nil || !strings.Contains(err.Error(), "failed") {
		t.Fatalf("expected failure, got %v", err)
	}
	if res.Status != "failed" {
		t.Errorf("expected failed status, got %q", res.Status)
	}
}

func TestExportAgainstServer(t *testing.T) {
	client, calls := newExportServer(t)
	e := &Exporter{Client: client, Interval: time.Millisecond, NewBar: func(int64, string) io.Writer { return io.Discard }}

	res, err := e.Export(t.Context(), "p1", backend.ExportPDF, ExportOptions{DownloadDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(res.Path) != "my deck.pdf" {
		t.Errorf("unexpected file %q", res.Path)
	}
	if got := calls(); got["/projects/my deck/my deck.pdf"] != 1 {
		t.Errorf("expected one download request, got %v", got)
	}
}

func TestPollStopsOnNotFound(t *testing.T) {
	client, _ := newExportServer(t)
	w := &Watcher{Client: client, Interval: time.Millisecond, Reporter: &recordingReporter{}}

	_, err := w.Watch(t.Context(), "missing")
	if backend.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", err)
	}
}

func TestFilterProjects(t *testing.T) {
	projects := []backend.ProjectSummary{
		{Project: backend.Project{ProjectName: "Rust_intro_0101", Topic: "Rust intro"}},
		{Project: backend.Project{ProjectName: "go_tour", Topic: "A tour of Go"}},
	}

	tests := []struct {
		keyword string
		want    int
	}{
		{"", 2},
		{"RUST", 1},
		{"tour", 1},
		{"python", 0},
	}
	for _, tt := range tests {
		if got := FilterProjects(projects, tt.keyword); len(got) != tt.want {
			t.Errorf("FilterProjects(%q) returned %d, want %d", tt.keyword, len(got), tt.want)
		}
	}
}
