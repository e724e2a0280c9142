package preview

import (
	"bytes"
	"html/template"
	"log"
)

// Placeholder documents are rendered into the slide frame when there is no
// slide to show. Each offers a reload action.
var placeholders = template.Must(template.New("placeholders").Parse(`
{{define "slide-error"}}<!DOCTYPE html><html><head><meta charset="utf-8"></head><body>
<div style="padding:2rem;text-align:center;color:#ef4444;font-family:sans-serif;">
<h2>Unable to display slide</h2>
<p>{{.File}}</p>{{if .Message}}<p style="color:#64748b;">{{.Message}}</p>{{end}}
<button onclick="parent.location.reload()" style="margin-top:1rem;padding:0.5rem 1rem;background:#3b82f6;color:white;border:none;border-radius:4px;cursor:pointer;">Reload page</button>
</div></body></html>{{end}}
{{define "empty"}}<!DOCTYPE html><html><head><meta charset="utf-8"></head><body>
<div style="padding:2rem;text-align:center;color:#64748b;font-family:sans-serif;">
<h1>No HTML files found</h1>
<p>Make sure <b>{{.Project}}/html_files</b> contains slide files.</p>
<button onclick="parent.location.reload()" style="margin-top:1rem;padding:0.5rem 1rem;background:#3b82f6;color:white;border:none;border-radius:4px;cursor:pointer;">Refresh</button>
</div></body></html>{{end}}
{{define "init-failed"}}<!DOCTYPE html><html><head><meta charset="utf-8"></head><body>
<div style="padding:2rem;text-align:center;color:#ef4444;font-family:sans-serif;">
<h1>Initialization failed</h1>
<p>{{.Message}}</p>
<button onclick="parent.location.reload()" style="margin-top:1rem;padding:0.5rem 1rem;background:#3b82f6;color:white;border:none;border-radius:4px;cursor:pointer;">Reload</button>
</div></body></html>{{end}}
`))

type placeholderData struct {
	Project string
	File    string
	Message string
}

func renderPlaceholder(name string, data placeholderData) string {
	var buf bytes.Buffer
	if err := placeholders.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("preview: rendering %s placeholder: %v", name, err)
		return ""
	}
	return buf.String()
}
