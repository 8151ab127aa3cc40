package folio

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Build renders the theme in themefs into outDir as a static site: the page,
// one fragment per listed blog article, the script assets and a copy of the
// theme files. Existing files in outDir are overwritten, others are kept.
//
// If the descriptor cannot be loaded, index.html is the error document and
// the error is returned.
func Build(ctx context.Context, cfg Config, themefs http.FileSystem, outDir string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	rd, err := NewRenderer(cfg, themefs, log)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return errors.Wrapf(err, "Cannot create output directory: %q", outDir)
	}

	if err := copyAssets(ctx, filepath.Join(outDir, "_folio")); err != nil {
		return err
	}
	if err := copyTree(ctx, themefs, "/", filepath.Join(outDir, filepath.FromSlash(rd.cfg.ThemePath))); err != nil {
		return err
	}

	index := filepath.Join(outDir, "index.html")
	d, err := rd.Descriptor()
	if err != nil {
		buf := bytes.Buffer{}
		if ferr := rd.fail(&buf, err); ferr != err {
			return ferr
		}
		if werr := writeFile(index, &buf); werr != nil {
			return werr
		}
		return err
	}

	buf := bytes.Buffer{}
	perr := rd.WritePageFor(&buf, d)
	if buf.Len() > 0 {
		if err := writeFile(index, &buf); err != nil {
			return err
		}
	}
	if perr != nil {
		return perr
	}
	log.Info("wrote page", zap.String("path", index))

	for _, post := range d.Blog {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := ArticlePath(post.Slug); err != nil {
			log.Warn("skipping article", zap.String("slug", post.Slug), zap.Error(err))
			continue
		}
		buf := bytes.Buffer{}
		if err := rd.WriteArticle(&buf, post.Slug); err != nil && buf.Len() == 0 {
			return errors.Wrapf(err, "article %q", post.Slug)
		}
		p := filepath.Join(outDir, filepath.FromSlash(articleURL(post.Slug)))
		if err := writeFile(p, &buf); err != nil {
			return err
		}
	}

	log.Info("build done", zap.String("out", outDir), zap.Int("articles", len(d.Blog)))
	return nil
}

func copyAssets(ctx context.Context, dst string) error {
	a := Assets()
	return fs.WalkDir(a, ".", func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		f, err := a.Open(p)
		if err != nil {
			return errors.Wrapf(err, "Cannot open asset: %q", p)
		}
		defer f.Close()
		return writeFile(filepath.Join(dst, filepath.FromSlash(p)), f)
	})
}

// copyTree copies dir of src to dst, leaving out dot files and the theme's
// templates.
func copyTree(ctx context.Context, src http.FileSystem, dir, dst string) error {
	d, err := src.Open(dir)
	if err != nil {
		return errors.Wrapf(err, "Cannot open directory: %q", dir)
	}
	fis, err := d.Readdir(-1)
	d.Close()
	if err != nil {
		return errors.Wrapf(err, "Cannot read directory: %q", dir)
	}

	for _, fi := range fis {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := fi.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		p := path.Join(dir, name)
		target := filepath.Join(dst, name)
		if fi.IsDir() {
			if p == "/"+tmplPath {
				continue
			}
			if err := copyTree(ctx, src, p, target); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(src, p, target); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src http.FileSystem, name, dst string) error {
	f, err := src.Open(name)
	if err != nil {
		return errors.Wrapf(err, "Cannot open file: %q", name)
	}
	defer f.Close()
	return writeFile(dst, f)
}

func writeFile(dst string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, "Cannot create directory: %q", filepath.Dir(dst))
	}
	f, err := os.Create(dst)
	if err != nil {
		return errors.Wrapf(err, "Cannot create file: %q", dst)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return errors.Wrapf(err, "Cannot write file: %q", dst)
	}
	return errors.Wrapf(f.Close(), "Cannot close file: %q", dst)
}
