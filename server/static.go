package server

import (
	_ "embed"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// defaultEntryPage backs the ignore-404 fallback when the static directory
// provides no index.html of its own.
//
//go:embed welcome.html
var defaultEntryPage []byte

// staticStage serves files from dir for GET and HEAD requests and falls
// through to next on a miss. The directory may be absent, in which case
// every request falls through.
func staticStage(dir string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}
		name, ok := resolveStaticPath(dir, r.URL.Path)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		http.ServeFile(w, r, name)
	})
}

// resolveStaticPath maps a request path to a file under dir, trying
// index.html for directories. It reports false for misses and traversal
// attempts.
func resolveStaticPath(dir, reqPath string) (string, bool) {
	cleaned := path.Clean("/" + reqPath)
	if strings.Contains(cleaned, "..") {
		return "", false
	}
	name := filepath.Join(dir, filepath.FromSlash(cleaned))
	info, err := os.Stat(name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		index := filepath.Join(name, "index.html")
		if _, err := os.Stat(index); err != nil {
			return "", false
		}
		return index, true
	}
	return name, true
}

// serveEntryPage writes the static entry page used by the ignore-404
// branch: the directory's index.html when present, the embedded default
// otherwise.
func (app *Application) serveEntryPage(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(app.cfg.StaticPath, "index.html")
	if _, err := os.Stat(index); err == nil {
		http.ServeFile(w, r, index)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(defaultEntryPage)
}
