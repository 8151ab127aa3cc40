package backend

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestDirOpensFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content.json"), []byte(`{}`), 0644))

	b, err := Open(dir, false, "")
	require.NoError(t, err)

	f, err := b.Open("/content.json")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))
}

func TestCID(t *testing.T) {
	require.Equal(t, "", CID(http.FS(fstest.MapFS{})))
	require.Equal(t, "abc", CID(gitBackend{cid: "abc"}))
}
