package folio

import (
	"bytes"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/raymondbutcher/tidyhtml"
	"go.uber.org/zap"

	bm "github.com/microcosm-cc/bluemonday"
)

type NavItem struct {
	Label  string
	Anchor string
}

// Page is the data the "page" template is executed with.
type Page struct {
	DocumentTitle string
	Title         string
	Subtitle      string
	Hero          string
	Nav           []NavItem
	Content       template.HTML
	HasBlog       bool
	ThemePath     string
	LightboxJSON  string
}

type sectionData struct {
	Section    Section
	Content    template.HTML
	Profile    string
	ProfileAlt string
	Portfolio  []PortfolioImage
	Series     []Series
	Blog       []PostSummary
}

type errorData struct {
	Heading string
	Message string
}

// Renderer turns a theme into HTML. All configuration is passed in, nothing
// is read from globals.
type Renderer struct {
	cfg    Config
	fs     http.FileSystem
	tmpl   *template.Template
	policy *bm.Policy
	log    *zap.Logger
}

func NewRenderer(cfg Config, fs http.FileSystem, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cfg.ThemePath = strings.Trim(cfg.ThemePath, "/")
	r := &Renderer{
		cfg:    cfg,
		fs:     fs,
		policy: bm.UGCPolicy(),
		log:    log,
	}
	tmpl, err := parseTemplates(fs, template.FuncMap{
		"image":   r.image,
		"article": articleURL,
	})
	if err != nil {
		return nil, err
	}
	r.tmpl = tmpl
	return r, nil
}

func (r *Renderer) image(name string) string {
	return path.Join(r.cfg.ThemePath, "images", name)
}

// articleURL is where the fragment of an article is served, relative to the
// page.
func articleURL(slug string) string {
	return blogPath + "/" + slug + ".html"
}

// content marks descriptor HTML as safe. It is only sanitized if asked for.
func (r *Renderer) content(s string) template.HTML {
	if !r.cfg.SanitizeSections || r.cfg.Unsafe {
		return template.HTML(s)
	}
	return template.HTML(r.policy.Sanitize(s))
}

// Descriptor loads the theme's content descriptor.
func (r *Renderer) Descriptor() (*Descriptor, error) {
	return LoadDescriptor(r.fs, DescriptorPath)
}

// Sections renders all sections of d in order. After each section one
// background strip is added as long as backgrounds are left.
func (r *Renderer) Sections(d *Descriptor) (template.HTML, error) {
	buf := bytes.Buffer{}
	bg := 0
	for _, sec := range d.Sections {
		if err := r.section(&buf, d, sec); err != nil {
			return "", err
		}
		if bg < len(d.Backgrounds) {
			if err := r.tmpl.ExecuteTemplate(&buf, "background", d.Backgrounds[bg]); err != nil {
				return "", errors.Wrapf(err, "background %q", d.Backgrounds[bg])
			}
			bg++
		}
	}
	return template.HTML(buf.String()), nil
}

func (r *Renderer) section(w io.Writer, d *Descriptor, sec Section) error {
	data := sectionData{
		Section: sec,
		Content: r.content(sec.Content),
	}

	kind := sec.Kind()
	switch kind {
	case KindAbout:
		data.Profile = r.cfg.ProfileImage
		data.ProfileAlt = r.cfg.ProfileAlt
		if data.ProfileAlt == "" {
			data.ProfileAlt = d.Title
		}
	case KindPortfolio:
		data.Portfolio = d.PortfolioImages
	case KindSeries:
		data.Series = d.Series
	case KindBlog:
		data.Blog = d.Blog
	case KindGeneric:
	default:
		return errors.Errorf("section %q: unknown kind %v", sec.Key, kind)
	}

	if err := r.tmpl.ExecuteTemplate(w, "section-"+kind.String(), data); err != nil {
		return errors.Wrapf(err, "section %q", sec.Key)
	}
	return nil
}

// Page renders everything the page shell needs from d.
func (r *Renderer) Page(d *Descriptor) (Page, error) {
	content, err := r.Sections(d)
	if err != nil {
		return Page{}, err
	}
	lb, err := json.Marshal(r.cfg.Lightbox)
	if err != nil {
		return Page{}, errors.Wrap(err, "lightbox options")
	}

	p := Page{
		DocumentTitle: d.Title,
		Title:         d.Title,
		Subtitle:      d.Subtitle,
		Content:       content,
		ThemePath:     r.cfg.ThemePath,
		LightboxJSON:  string(lb),
	}
	if p.DocumentTitle == "" {
		p.DocumentTitle = "Portfolio"
	}
	if hero := r.hero(d.Backgrounds); hero != "" {
		p.Hero = r.image(hero)
	}
	for _, label := range d.Navigation {
		p.Nav = append(p.Nav, NavItem{Label: label, Anchor: strings.ToLower(label)})
	}
	_, p.HasBlog = d.Sections.Get("blog")
	return p, nil
}

// hero picks the configured background, or the first one if the list is too
// short.
func (r *Renderer) hero(backgrounds []string) string {
	i := r.cfg.HeroBackground
	if i >= 0 && i < len(backgrounds) {
		return backgrounds[i]
	}
	if len(backgrounds) > 0 {
		return backgrounds[0]
	}
	return ""
}

// WritePage loads the descriptor and writes the complete page to w. If the
// descriptor cannot be loaded or the page cannot be rendered, w only gets
// the error document and the cause is returned.
func (r *Renderer) WritePage(w io.Writer) error {
	d, err := r.Descriptor()
	if err != nil {
		return r.fail(w, err)
	}
	return r.WritePageFor(w, d)
}

// WritePageFor is WritePage with an already loaded descriptor.
func (r *Renderer) WritePageFor(w io.Writer, d *Descriptor) error {
	p, err := r.Page(d)
	if err != nil {
		return r.fail(w, err)
	}
	buf := bytes.Buffer{}
	if err := r.tmpl.ExecuteTemplate(&buf, "page", p); err != nil {
		return r.fail(w, errors.Wrap(err, "template execution failed"))
	}
	return tidy(w, &buf)
}

func (r *Renderer) fail(w io.Writer, err error) error {
	r.log.Error("loading content failed", zap.String("theme", r.cfg.Theme), zap.Error(err))
	if werr := r.WriteError(w); werr != nil {
		return werr
	}
	return err
}

// WriteError writes the full page error document.
func (r *Renderer) WriteError(w io.Writer) error {
	data := errorData{
		Heading: "Error loading",
		Message: "Unable to load content.",
	}
	if r.cfg.Theme != "" {
		data.Message = "Unable to load content for theme \"" + r.cfg.Theme + "\"."
	}
	buf := bytes.Buffer{}
	if err := r.tmpl.ExecuteTemplate(&buf, "error", data); err != nil {
		return errors.Wrap(err, "error template")
	}
	return tidy(w, &buf)
}

func tidy(w io.Writer, r io.Reader) error {
	tbuf := bytes.Buffer{}
	if err := tidyhtml.Copy(&tbuf, r); err != nil {
		return errors.Wrap(err, "tidyhtml failed")
	}
	_, err := tbuf.WriteTo(w)
	return err
}
