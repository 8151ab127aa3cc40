package folio

// Kind selects how a section is rendered. It is derived from the section key.
type Kind int

const (
	KindGeneric Kind = iota
	KindAbout
	KindPortfolio
	KindSeries
	KindBlog
)

func KindOf(key string) Kind {
	switch key {
	case "about":
		return KindAbout
	case "portfolio":
		return KindPortfolio
	case "series":
		return KindSeries
	case "blog":
		return KindBlog
	}
	return KindGeneric
}

func (k Kind) String() string {
	switch k {
	case KindAbout:
		return "about"
	case KindPortfolio:
		return "portfolio"
	case KindSeries:
		return "series"
	case KindBlog:
		return "blog"
	}
	return "generic"
}
