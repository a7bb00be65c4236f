package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

// spaHandler serves the built UI from root. Paths without a matching file
// fall back to index.html so client-side routes render.
func spaHandler(root string) http.Handler {
	fsys := os.DirFS(root)
	files := http.FileServerFS(fsys)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" {
			http.ServeFileFS(w, r, fsys, "index.html")
			return
		}
		info, err := fs.Stat(fsys, name)
		switch {
		case err == nil && !info.IsDir():
			files.ServeHTTP(w, r)
		case err == nil, errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrInvalid):
			http.ServeFileFS(w, r, fsys, "index.html")
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})
}
