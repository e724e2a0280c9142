package preview

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/viewer"
)

// Config holds preview layer settings.
type Config struct {
	Viewer       viewer.Options
	PollInterval time.Duration // landing page refresh
	Recorder     viewer.SaveRecorder
}

// Preview serves the slide preview pages and bridges each open page to a
// viewer session over a websocket.
type Preview struct {
	client   *backend.Client
	backend  viewer.Backend
	cfg      Config
	recorder viewer.SaveRecorder
	sessions *Registry
	proxy    http.Handler
}

// New creates a Preview backed by client.
func New(client *backend.Client, cfg Config) (*Preview, error) {
	target, err := url.Parse(client.BaseURL())
	if err != nil {
		return nil, fmt.Errorf("parsing backend URL: %w", err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 6 * time.Second
	}
	return &Preview{
		client:   client,
		backend:  client,
		cfg:      cfg,
		recorder: cfg.Recorder,
		sessions: NewRegistry(),
		proxy:    newProxy(target),
	}, nil
}

// Sessions returns the live session registry.
func (p *Preview) Sessions() *Registry { return p.sessions }

// RegisterRoutes mounts all preview routes onto the given router.
func (p *Preview) RegisterRoutes(r chi.Router) {
	r.Get("/", p.ServeIndex)
	r.Get("/preview", p.ServePreview)
	r.Get("/preview/outline", p.handleOutline)
	r.Get("/preview/source/{session}/{index}", p.handleSource)
	r.Get("/api/preview/sessions", p.handleSessions)
	r.Get("/ws/preview", p.handleWebSocket)
	r.Handle("/projects/*", p.proxy)
	r.Handle("/api/*", p.proxy)
}
