package handler

import (
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const (
	indexFile = "index.html"
	// Built bundles under assets/ carry content hashes in their names.
	immutableCache = "public, max-age=31536000, immutable"
)

// SPAHandler serves a built single-page app from a directory. Unknown paths
// get index.html so client-side routes resolve; paths under api/ never do.
type SPAHandler struct {
	files  fs.FS
	prefix string
}

func NewSPAHandler(staticDir, prefix string) *SPAHandler {
	return &SPAHandler{
		files:  os.DirFS(staticDir),
		prefix: strings.TrimRight(prefix, "/"),
	}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, h.prefix)
	name = strings.TrimPrefix(path.Clean("/"+name), "/")

	if name == "api" || strings.HasPrefix(name, "api/") {
		http.NotFound(w, r)
		return
	}

	if name != "" && fs.ValidPath(name) {
		if info, err := fs.Stat(h.files, name); err == nil && !info.IsDir() {
			if strings.HasPrefix(name, "assets/") {
				w.Header().Set("Cache-Control", immutableCache)
			}
			http.ServeFileFS(w, r, h.files, name)
			return
		}
	}

	if _, err := fs.Stat(h.files, indexFile); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFileFS(w, r, h.files, indexFile)
}

func StaticFileServer(staticDir, prefix string) http.Handler {
	return NewSPAHandler(staticDir, prefix)
}
