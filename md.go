package folio

import (
	"bytes"
	"net/url"
	"path"

	bf "github.com/russross/blackfriday"
)

// ImageAltTitleCopy fills a missing image title from the alt text and vice
// versa, and resolves relative image links against the theme's image dir.
type ImageAltTitleCopy struct {
	bf.Renderer
	images string
}

func (md ImageAltTitleCopy) Image(out *bytes.Buffer, link []byte, title []byte, alt []byte) {
	if title == nil {
		title = alt
	}
	if alt == nil {
		alt = title
	}
	md.Renderer.Image(out, md.resolve(link), title, alt)
}

func (md ImageAltTitleCopy) resolve(link []byte) []byte {
	if md.images == "" || len(link) == 0 {
		return link
	}
	u, err := url.Parse(string(link))
	if err != nil || u.IsAbs() || u.Host != "" || path.IsAbs(u.Path) {
		return link
	}
	u.Path = path.Join(md.images, u.Path)
	return []byte(u.String())
}

func NewMdModifier(r bf.Renderer, images string) bf.Renderer {
	return ImageAltTitleCopy{Renderer: r, images: images}
}
