package folio

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
)

// DescriptorPath is where a theme keeps its content descriptor.
const DescriptorPath = "content.json"

// Descriptor is the content of a portfolio page. It is loaded once per render
// and never modified afterwards.
type Descriptor struct {
	Title           string           `json:"title"`
	Subtitle        string           `json:"subtitle"`
	Navigation      []string         `json:"navigation"`
	Backgrounds     []string         `json:"backgrounds"`
	Sections        Sections         `json:"sections"`
	PortfolioImages []PortfolioImage `json:"portfolio_images,omitempty"`
	Series          []Series         `json:"series,omitempty"`
	Blog            []PostSummary    `json:"blog,omitempty"`
}

type Section struct {
	Key     string `json:"-"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s Section) Kind() Kind {
	return KindOf(s.Key)
}

type PortfolioImage struct {
	Src       string `json:"src"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Caption   string `json:"caption"`
}

// Thumb returns the thumbnail, or the source when there is none.
func (p PortfolioImage) Thumb() string {
	if p.Thumbnail != "" {
		return p.Thumbnail
	}
	return p.Src
}

type Series struct {
	Title     string        `json:"title"`
	Thumbnail string        `json:"thumbnail"`
	Images    []SeriesImage `json:"images"`
}

type SeriesImage struct {
	Src     string `json:"src"`
	Caption string `json:"caption"`
}

// PostSummary is a blog entry as listed on the page. Slug addresses the
// article markdown, see ArticlePath.
type PostSummary struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Date  string `json:"date"`
}

// Sections keeps the sections in the order they are declared in the
// descriptor, which is the order they are rendered in.
type Sections []Section

func (s *Sections) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.Errorf("sections: expected object, got %v", tok)
	}

	var ret Sections
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Errorf("sections: expected key, got %v", tok)
		}
		if seen[key] {
			return errors.Errorf("sections: duplicate key %q", key)
		}
		seen[key] = true

		sec := Section{}
		if err := dec.Decode(&sec); err != nil {
			return errors.Wrapf(err, "sections: %q", key)
		}
		sec.Key = key
		ret = append(ret, sec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = ret
	return nil
}

// Get returns the section stored under key.
func (s Sections) Get(key string) (Section, bool) {
	for _, sec := range s {
		if sec.Key == key {
			return sec, true
		}
	}
	return Section{}, false
}

// LoadDescriptor reads and decodes the descriptor stored at name in fs.
func LoadDescriptor(fs http.FileSystem, name string) (*Descriptor, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open descriptor: %q", name)
	}
	defer f.Close()

	d := &Descriptor{}
	if err := json.NewDecoder(f).Decode(d); err != nil {
		return nil, errors.Wrapf(err, "Cannot parse descriptor: %q", name)
	}
	return d, nil
}
