package preview

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// newProxy forwards requests to the backend unchanged. Slide documents
// carry a base URL under /projects/, so their assets load through here.
func newProxy(target *url.URL) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("preview: proxy %s %s: %v", r.Method, r.URL.Path, err)
			writeJSON(w, http.StatusBadGateway, map[string]string{"detail": "backend unavailable"})
		},
	}
}
