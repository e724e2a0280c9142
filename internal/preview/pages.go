package preview

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed web/*.html
var webFS embed.FS

var pages = template.Must(template.ParseFS(webFS, "web/*.html"))

// ServeIndex serves the landing page listing backend projects.
func (p *Preview) ServeIndex(w http.ResponseWriter, r *http.Request) {
	p.render(w, "index.html", map[string]any{
		"PollMillis": p.cfg.PollInterval.Milliseconds(),
	})
}

// ServePreview serves the slide preview page for ?project=. Without a
// project the visitor is sent back to the landing page.
func (p *Preview) ServePreview(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	p.render(w, "preview.html", map[string]any{
		"Project": project,
	})
}

func (p *Preview) renderDocument(w http.ResponseWriter, title, body string) {
	p.render(w, "document.html", map[string]any{
		"Title": title,
		"Body":  template.HTML(body),
	})
}

func (p *Preview) render(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("preview: rendering %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}
