package folio

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

var umlauts = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss")

func delspace(r rune) rune {
	if unicode.In(r, unicode.Latin, unicode.Digit) {
		return r
	}
	return '-'
}

// Slugify derives a slug from a post title.
func Slugify(title string) string {
	s := strings.Map(delspace, umlauts.Replace(strings.ToLower(title)))
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return strings.Trim(s, "-")
}

// NewPost creates the markdown file for a new article below root and
// returns the summary to list it with in the descriptor. An existing
// article is never overwritten.
func NewPost(root, slug string, meta ArticleMeta, body string) (PostSummary, error) {
	if slug == "" {
		slug = Slugify(meta.Title)
	}
	if meta.Date == "" {
		meta.Date = time.Now().Format("2006-01-02")
	}
	p, err := ArticlePath(slug)
	if err != nil {
		return PostSummary{}, err
	}

	fm, err := yaml.Marshal(meta)
	if err != nil {
		return PostSummary{}, errors.Wrap(err, "front matter")
	}
	buf := bytes.Buffer{}
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(body)

	dst := filepath.Join(root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return PostSummary{}, errors.Wrapf(err, "Cannot create directory: %q", filepath.Dir(dst))
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return PostSummary{}, errors.Wrapf(err, "Cannot create article: %q", dst)
	}
	if _, err := buf.WriteTo(f); err != nil {
		f.Close()
		return PostSummary{}, errors.Wrapf(err, "Cannot write article: %q", dst)
	}
	if err := f.Close(); err != nil {
		return PostSummary{}, errors.Wrapf(err, "Cannot close article: %q", dst)
	}

	return PostSummary{Slug: slug, Title: meta.Title, Date: meta.Date}, nil
}
