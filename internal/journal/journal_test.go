package journal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/db"
	"github.com/ezppt/deckview/internal/viewer"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestRecordAndGetByID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	entry := Entry{
		ID:        "j-1",
		SessionID: "sess",
		Project:   "deck",
		File:      "1.1.html",
		Bytes:     42,
		Outcome:   OutcomeSaved,
	}
	if err := store.Record(ctx, entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.GetByID(ctx, "j-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Project != "deck" || got.File != "1.1.html" || got.Bytes != 42 || got.Outcome != OutcomeSaved {
		t.Errorf("unexpected entry %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not populated")
	}

	if _, err := store.GetByID(ctx, "missing"); err == nil {
		t.Error("expected error for missing entry")
	}
}

func TestRecordGeneratesID(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := store.Record(ctx, Entry{Project: "p", File: "f.html"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entries, err := store.Query(ctx, Filter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(entries) != 1 || entries[0].ID == "" || entries[0].Outcome != OutcomeSaved {
		t.Errorf("unexpected entries %+v", entries)
	}
}

func TestRecordSave(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	store.RecordSave(ctx, viewer.SaveAttempt{SessionID: "s", Project: "deck", File: "1.html", Bytes: 10})
	store.RecordSave(ctx, viewer.SaveAttempt{
		SessionID: "s",
		Project:   "deck",
		File:      "2.html",
		Bytes:     3,
		Err:       errors.Join(errors.New("saving 2.html"), &backend.APIError{Status: 500, Message: "disk full"}),
	})

	failed, err := store.Query(ctx, Filter{Outcome: OutcomeFailed})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(failed) != 1 || failed[0].File != "2.html" || failed[0].Message != "disk full" {
		t.Errorf("unexpected failed entries %+v", failed)
	}
}

func TestQueryFilters(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	for _, e := range []Entry{
		{ID: "a", Project: "deck", File: "1.html"},
		{ID: "b", Project: "deck", File: "2.html", Outcome: OutcomeFailed, Message: "boom"},
		{ID: "c", Project: "other", File: "1.html"},
	} {
		if err := store.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"project", Filter{Project: "deck"}, 2},
		{"file", Filter{File: "1.html"}, 2},
		{"outcome", Filter{Outcome: OutcomeFailed}, 1},
		{"limit", Filter{Limit: 2}, 2},
		{"offset", Filter{Offset: 2}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.Query(ctx, tt.filter)
			if err != nil {
				t.Fatalf("Query: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}

	// Same-second inserts come back newest first.
	all, _ := store.Query(ctx, Filter{})
	if all[0].ID != "c" {
		t.Errorf("expected newest entry first, got %s", all[0].ID)
	}
}

func TestDeleteBefore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	store.Record(ctx, Entry{Project: "p", File: "f"})

	n, err := store.DeleteBefore(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted %d rows, want 1", n)
	}
}

func TestRoutes(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	store.Record(ctx, Entry{ID: "x", Project: "deck", File: "1.html"})

	r := chi.NewRouter()
	RegisterRoutes(r, store)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal/?project=deck", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entries []Entry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "x" {
		t.Errorf("unexpected entries %+v", entries)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing entry status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/journal/?project=none", nil))
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("empty result body = %q", body)
	}
}
