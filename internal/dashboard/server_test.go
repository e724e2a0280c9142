package dashboard

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ezppt/deckview/internal/backend"
)

// newExportServer serves a completed project "p1" named "my deck" whose
// PDF export is ready.
func newExportServer(t *testing.T) (*backend.Client, func() map[string]int) {
	t.Helper()
	var mu sync.Mutex
	calls := make(map[string]int)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects/{id}/export/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"project_id":"p1","status":"completed"}`))
	})
	mux.HandleFunc("GET /api/projects/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "p1" {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"detail":"Project not found"}`))
			return
		}
		w.Write([]byte(`{"project":{"project_id":"p1","project_name":"my deck","status":"completed","pdf_status":"completed"},
			"slide_stats":{"total":2,"completed":2},"outline_ready":true}`))
	})
	mux.HandleFunc("GET /projects/{dir}/{file}", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls[r.URL.Path]++
		mu.Unlock()
		w.Write([]byte("%PDF-1.7"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return backend.New(srv.URL), func() map[string]int {
		mu.Lock()
		defer mu.Unlock()
		out := make(map[string]int, len(calls))
		for k, v := range calls {
			out[k] = v
		}
		return out
	}
}
