package api

import (
	"errors"
	"io/fs"
	"net/http"
	"path"
	"path/filepath"
)

// spa serves files from dir and falls back to index.html for paths that name
// no file, so client-side routes load the app.
func spa(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		name := path.Clean("/" + r.URL.Path)
		if f, err := root.Open(name); err == nil {
			info, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && (!info.IsDir() || hasIndex(root, name)) {
				files.ServeHTTP(w, r)
				return
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		if !hasIndex(root, "/") {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, filepath.Join(dir, "index.html"))
	})
}

func hasIndex(root http.FileSystem, dir string) bool {
	f, err := root.Open(path.Join(dir, "index.html"))
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
