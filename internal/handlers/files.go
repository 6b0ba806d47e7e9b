package handlers

import (
	"net/http"
	"path"
	"strings"
)

var evidenceExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true}

// NewFilesHandler serves evidence images from casesDir under prefix. Only image files are served
// and directories are never listed.
func NewFilesHandler(prefix, casesDir string) http.Handler {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(casesDir)))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !evidenceExtensions[strings.ToLower(path.Ext(r.URL.Path))] {
			http.NotFound(w, r)
			return
		}
		fs.ServeHTTP(w, r)
	})
}
