package folio

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/pkg/errors"
)

const tmplPath = "templates"

var (
	//go:embed templates/*.tmpl
	defaultTemplates embed.FS

	//go:embed assets
	assets embed.FS
)

// Assets holds the files served under /_folio/.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		panic(err)
	}
	return sub
}

// parseTemplates parses the built-in templates and then any *.tmpl a theme
// ships in its templates directory, so a theme can replace single
// definitions like "page".
func parseTemplates(themefs http.FileSystem, funcs template.FuncMap) (*template.Template, error) {
	tmain := template.New("_").Funcs(funcs)

	entries, err := fs.ReadDir(defaultTemplates, tmplPath)
	if err != nil {
		return nil, errors.Wrap(err, "Cannot read built-in templates")
	}
	for _, e := range entries {
		fpath := path.Join(tmplPath, e.Name())
		b, err := defaultTemplates.ReadFile(fpath)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot read file: %q", fpath)
		}
		if _, err := tmain.New("builtin-" + strings.TrimSuffix(e.Name(), ".tmpl")).Parse(string(b)); err != nil {
			return nil, errors.Wrapf(err, "Cannot parse template: %q", fpath)
		}
	}

	if themefs == nil {
		return tmain, nil
	}
	dir, err := themefs.Open(tmplPath)
	if err != nil {
		// no overrides
		return tmain, nil
	}
	defer dir.Close()
	fis, err := dir.Readdir(-1)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read directory: %q", tmplPath)
	}
	for _, fi := range fis {
		if fi.IsDir() || !strings.HasSuffix(fi.Name(), ".tmpl") {
			continue
		}
		fpath := path.Join(tmplPath, fi.Name())
		data, err := themefs.Open(fpath)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot open file: %q", fpath)
		}
		databytes, err := io.ReadAll(data)
		data.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot read file: %q", fpath)
		}

		tname := "theme-" + strings.TrimSuffix(fi.Name(), ".tmpl")
		if _, err := tmain.New(tname).Parse(string(databytes)); err != nil {
			return nil, errors.Wrapf(err, "Cannot parse template: %q", fpath)
		}
	}

	return tmain, nil
}
