package preview

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/viewer"
)

// handleOutline renders a project's outline as an HTML page.
func (p *Preview) handleOutline(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "project is required"})
		return
	}

	outline, err := p.client.GetOutline(r.Context(), project)
	if err != nil {
		status := http.StatusBadGateway
		if code := backend.StatusCode(err); code == http.StatusNotFound {
			status = code
		}
		writeJSON(w, status, map[string]string{"error": viewer.ErrorText(err)})
		return
	}

	body, err := RenderMarkdown(OutlineMarkdown(outline))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	p.renderDocument(w, "Outline: "+outline.Topic, body)
}

// handleSource shows the cached markup of one slide of a live session.
func (p *Preview) handleSource(w http.ResponseWriter, r *http.Request) {
	sess, ok := p.sessions.Get(chi.URLParam(r, "session"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid slide index"})
		return
	}

	markup, err := sess.Markup(r.Context(), index)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, viewer.ErrSlideUnavailable) || backend.StatusCode(err) == http.StatusNotFound {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": viewer.ErrorText(err)})
		return
	}

	files := sess.Files()
	body, err := RenderMarkdown(SourceMarkdown(files[index], markup))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	p.renderDocument(w, files[index], body)
}

func (p *Preview) handleSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sessions": p.sessions.List()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
