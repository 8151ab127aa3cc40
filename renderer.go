package folio

import (
	"bytes"
	"html/template"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	bm "github.com/microcosm-cc/bluemonday"
	bf "github.com/russross/blackfriday"
)

const blogPath = "blog"

// ArticleMeta is the optional front matter of a blog article.
type ArticleMeta struct {
	Title  string `yaml:"title" json:"title,omitempty"`
	Author string `yaml:"author" json:"author,omitempty"`
	Date   string `yaml:"date" json:"date,omitempty"`
	Unsafe bool   `yaml:"unsafe,omitempty" json:"unsafe,omitempty"`
}

// ArticlePath returns the location of the markdown for slug, relative to the
// theme root.
func ArticlePath(slug string) (string, error) {
	if slug == "" || slug == "." || strings.Contains(slug, "..") || strings.ContainsAny(slug, `/\`) {
		return "", errors.Wrapf(os.ErrNotExist, "invalid slug %q", slug)
	}
	return path.Join(blogPath, slug+".md"), nil
}

type articleRenderer struct {
	fs      http.FileSystem
	md_path string
	images  string
	unsafe  bool
	meta    ArticleMeta
}

func (a *articleRenderer) Render() ([]byte, error) {
	md, err := a.fs.Open(a.md_path)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open markdown file: %q", a.md_path)
	}
	defer md.Close()

	b, err := io.ReadAll(md)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot read markdown file: %q", a.md_path)
	}
	body, err := frontmatter.Parse(bytes.NewReader(b), &a.meta)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot parse front matter: %q", a.md_path)
	}

	html := bf.Markdown(body,
		NewMdModifier(
			bf.HtmlRenderer(0, "", ""),
			a.images,
		), bf.EXTENSION_TABLES|bf.EXTENSION_FENCED_CODE|bf.EXTENSION_AUTOLINK|bf.EXTENSION_STRIKETHROUGH)
	if !a.unsafe && !a.meta.Unsafe {
		html = bm.UGCPolicy().SanitizeBytes(html)
	}
	return html, nil
}

type articleData struct {
	Meta ArticleMeta
	Body template.HTML
}

// Article renders the blog article addressed by slug as an HTML fragment.
// Articles are read on every call. When the article cannot be rendered the
// fragment is an error message naming the slug instead.
func (r *Renderer) Article(slug string) (template.HTML, error) {
	buf := bytes.Buffer{}
	err := r.article(&buf, slug)
	if err == nil {
		return template.HTML(buf.String()), nil
	}

	r.log.Warn("article failed", zap.String("slug", slug), zap.Error(err))
	buf.Reset()
	if terr := r.tmpl.ExecuteTemplate(&buf, "article-error", slug); terr != nil {
		return "", errors.Wrap(terr, "article-error template")
	}
	return template.HTML(buf.String()), err
}

func (r *Renderer) article(w io.Writer, slug string) error {
	p, err := ArticlePath(slug)
	if err != nil {
		return err
	}
	a := &articleRenderer{
		fs:      r.fs,
		md_path: p,
		images:  r.image(""),
		unsafe:  r.cfg.Unsafe,
	}
	html, err := a.Render()
	if err != nil {
		return err
	}
	return r.tmpl.ExecuteTemplate(w, "article", articleData{
		Meta: a.meta,
		Body: template.HTML(html),
	})
}

// WriteArticle writes the fragment for slug to w. A returned error means the
// article failed and w got the error fragment, unless writing itself failed.
func (r *Renderer) WriteArticle(w io.Writer, slug string) error {
	html, err := r.Article(slug)
	if html != "" {
		if _, werr := io.WriteString(w, string(html)); werr != nil {
			return werr
		}
	}
	return err
}
