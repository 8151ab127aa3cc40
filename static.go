package folio

import (
	"net/http"
	"os"
	"path"
	"strings"
)

// The StaticHandler serves theme files like http.ServeContent, without
// directory listings and without dot files. It also implements the
// http.FileSystem interface.
type StaticHandler struct {
	fs http.FileSystem
}

// Serve the file requested by r. Error 404 on directory access.
func (sh StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f, stat, code := sh.lookup(r.URL.Path)
	if code != http.StatusOK {
		http.Error(w, r.URL.Path, code)
		return
	}
	defer f.Close()
	http.ServeContent(w, r, stat.Name(), stat.ModTime(), f)
}

// lookup opens a regular, visible file. Anything else is reported as a
// status code and no file is returned.
func (sh StaticHandler) lookup(name string) (http.File, os.FileInfo, int) {
	if hidden(name) {
		return nil, nil, http.StatusNotFound
	}
	f, err := sh.Open(name)
	if err != nil {
		return nil, nil, http.StatusNotFound
	}
	stat, err := f.Stat()
	switch {
	case err != nil:
		f.Close()
		return nil, nil, http.StatusInternalServerError
	case stat.IsDir():
		f.Close()
		return nil, nil, http.StatusNotFound
	}
	return f, stat, http.StatusOK
}

// Implement the http.Filesystem interface.
func (sh StaticHandler) Open(name string) (http.File, error) {
	return sh.fs.Open(path.Clean("/" + name))
}

func hidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") && part != "." {
			return true
		}
	}
	return false
}

// Serves all files from fs.
func NewStaticHandler(fs http.FileSystem) StaticHandler {
	return StaticHandler{fs: fs}
}
