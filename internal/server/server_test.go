package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthCheck(t *testing.T) {
	srv := New(Config{Port: 0})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	tests := []struct {
		name     string
		allowAll bool
		origin   string
		allowed  bool
	}{
		{"allow all", true, "http://example.com", true},
		{"localhost", false, "http://localhost:3000", true},
		{"foreign origin", false, "http://example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := New(Config{Port: 0, AllowAll: tt.allowAll})

			req := httptest.NewRequest("OPTIONS", "/healthz", nil)
			req.Header.Set("Origin", tt.origin)
			req.Header.Set("Access-Control-Request-Method", "GET")
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)

			got := w.Header().Get("Access-Control-Allow-Origin") != ""
			if got != tt.allowed {
				t.Errorf("Allow-Origin present = %v, want %v", got, tt.allowed)
			}
		})
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	srv := New(Config{Port: 8090})
	if err := srv.Shutdown(t.Context()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
	if srv.Addr() != ":8090" {
		t.Errorf("Addr = %q", srv.Addr())
	}
}

func TestHandlerTimeoutSkipsUpgrades(t *testing.T) {
	srv := New(Config{HandlerTimeout: 20 * time.Millisecond})
	srv.Router().Get("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(200 * time.Millisecond):
			w.WriteHeader(http.StatusOK)
		}
	})

	tests := []struct {
		name    string
		upgrade bool
		want    int
	}{
		{"plain request", false, http.StatusGatewayTimeout},
		{"websocket upgrade", true, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/slow", nil)
			if tt.upgrade {
				req.Header.Set("Connection", "Upgrade")
				req.Header.Set("Upgrade", "websocket")
			}
			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
