// Package backend provides the file systems a theme is read from: a plain
// directory or the head commit of a git branch.
package backend

import (
	"net/http"
	"path/filepath"
	"strings"

	g "github.com/gogits/git"
	"github.com/lemmi/ghfs"
	"github.com/pkg/errors"
)

type Backend interface {
	http.FileSystem
}

// CIDer is implemented by backends that are pinned to a content id, like a
// git commit.
type CIDer interface {
	CID() string
}

// CID returns the content id of b, or "" when b is not pinned.
func CID(b Backend) string {
	if c, ok := b.(CIDer); ok {
		return c.CID()
	}
	return ""
}

// Dir serves the theme from a directory on disk.
func Dir(path string) (Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "filepath.Abs("+path+")")
	}
	return http.Dir(abs), nil
}

type gitBackend struct {
	http.FileSystem
	cid string
}

func (gb gitBackend) CID() string {
	return gb.cid
}

// Git serves the theme from the tree of the head commit of branch.
func Git(path, branch string) (Backend, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "filepath.Abs("+path+")")
	}
	repo, err := g.OpenRepository(abs)
	if err != nil {
		return nil, errors.Wrap(err, "g.OpenRepository("+abs+")")
	}
	commit, err := repo.GetCommitOfBranch(branch)
	if err != nil {
		return nil, errors.Wrapf(err, "Can not open branch %q", branch)
	}
	return gitBackend{
		FileSystem: ghfs.FromCommit(commit),
		cid:        strings.Trim(commit.Id.String(), "\""),
	}, nil
}

// Open returns a git backend when git is set, a directory backend otherwise.
func Open(path string, git bool, branch string) (Backend, error) {
	if git {
		if branch == "" {
			branch = "master"
		}
		return Git(path, branch)
	}
	return Dir(path)
}
