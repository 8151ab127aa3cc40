package folio

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lemmi/compress"
	"github.com/lemmi/folio/backend"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// OpenFunc opens the theme backend. It is called for every request, so a
// git backend always serves the current head of its branch.
type OpenFunc func() (backend.Backend, error)

type Site struct {
	cfg  Config
	open OpenFunc
	log  *zap.Logger
}

func NewSite(cfg Config, open OpenFunc, log *zap.Logger) *Site {
	if log == nil {
		log = zap.NewNop()
	}
	cfg.ThemePath = strings.Trim(cfg.ThemePath, "/")
	if cfg.ThemePath == "" {
		cfg.ThemePath = DefaultConfig().ThemePath
	}
	return &Site{cfg: cfg, open: open, log: log}
}

// Handler returns the complete, gzip enabled handler of the site.
func (s *Site) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLog)
	r.Use(cacheControl)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Handle("/_folio/*", http.StripPrefix("/_folio", http.FileServer(http.FS(Assets()))))
	r.Handle("/"+s.cfg.ThemePath+"/*", http.HandlerFunc(s.static))
	r.Get("/"+blogPath+"/{file}", s.article)
	r.Get("/", s.page)

	return compress.New(r)
}

func (s *Site) HttpError(w http.ResponseWriter, code int, logErr error) {
	fields := []zap.Field{zap.Int("status", code), zap.Error(logErr)}
	if st, ok := logErr.(stackTracer); ok && s.cfg.Debug {
		fields = append(fields, zap.String("stack", strings.TrimSpace(stackString(st))))
	}
	s.log.Error("request failed", fields...)
	http.Error(w, http.StatusText(code), code)
}

func (s *Site) renderer(w http.ResponseWriter) (*Renderer, error) {
	fs, err := s.open()
	if err != nil {
		return nil, errors.Wrap(err, "open backend")
	}
	if cid := backend.CID(fs); cid != "" {
		w.Header().Set("ETag", `"`+cid+`"`)
	}
	return NewRenderer(s.cfg, fs, s.log)
}

func (s *Site) page(w http.ResponseWriter, r *http.Request) {
	buf := bytes.Buffer{}
	status := http.StatusOK

	rd, err := s.renderer(w)
	if err != nil {
		s.HttpError(w, http.StatusInternalServerError, err)
		return
	}
	if err := rd.WritePage(&buf); err != nil {
		if buf.Len() == 0 {
			s.HttpError(w, http.StatusInternalServerError, errors.Wrap(err, "page generation failed"))
			return
		}
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Site) article(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSuffix(chi.URLParam(r, "file"), ".html")

	rd, err := s.renderer(w)
	if err != nil {
		s.HttpError(w, http.StatusInternalServerError, err)
		return
	}
	buf := bytes.Buffer{}
	if err := rd.WriteArticle(&buf, slug); err != nil {
		if buf.Len() == 0 {
			s.HttpError(w, http.StatusInternalServerError, err)
			return
		}
		noCache(w.Header())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func (s *Site) static(w http.ResponseWriter, r *http.Request) {
	fs, err := s.open()
	if err != nil {
		s.HttpError(w, http.StatusInternalServerError, errors.Wrap(err, "open backend"))
		return
	}
	if cid := backend.CID(fs); cid != "" {
		w.Header().Set("ETag", `"`+cid+`"`)
	}
	http.StripPrefix("/"+s.cfg.ThemePath, NewStaticHandler(fs)).ServeHTTP(w, r)
}

func (s *Site) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// cacheControl marks responses as cacheable. Any status other than 200, 206
// or 304 drops the cache headers again, including an ETag set by the handler.
func cacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "max-age=32")
		next.ServeHTTP(&cacheWriter{ResponseWriter: w}, r)
	})
}

func noCache(h http.Header) {
	h.Del("Cache-Control")
	h.Del("ETag")
}

type cacheWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (c *cacheWriter) WriteHeader(code int) {
	if !c.wroteHeader {
		c.wroteHeader = true
		switch code {
		case http.StatusOK, http.StatusPartialContent, http.StatusNotModified:
		default:
			noCache(c.Header())
		}
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *cacheWriter) Write(b []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(b)
}
