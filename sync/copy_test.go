package sync_test

import (
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/tinyfs-go/tinyfs"
	"github.com/tinyfs-go/tinyfs/sync"
)

func mountedFS(t *testing.T) *tinyfs.FS {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.tfs")
	ft := tinyfs.New()
	require.NoError(t, ft.Mkfs(path, 64*1024))
	require.NoError(t, ft.Mount(path))
	return ft
}

func TestImportTreeCopiesTopLevelRegularFiles(t *testing.T) {
	src := fstest.MapFS{
		"foo.txt": {Data: []byte("hello")},
		"bar.txt": {Data: []byte("world")},
	}
	dst := mountedFS(t)

	skipped, err := sync.ImportTree(src, dst)
	require.NoError(t, err)
	require.Empty(t, skipped)

	names, err := dst.Readdir()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"foo.txt", "bar.txt"}, names)

	fd, err := dst.OpenFile("foo.txt")
	require.NoError(t, err)
	info, err := dst.ReadFileInfo(fd)
	require.NoError(t, err)
	require.EqualValues(t, len("hello"), info.Size)
}

func TestImportTreeSkipsSubdirectoriesAndNonRegularFiles(t *testing.T) {
	src := fstest.MapFS{
		"top.txt":      {Data: []byte("kept")},
		"sub":          {Mode: fs.ModeDir | 0o755},
		"sub/deep.txt": {Data: []byte("not copied")},
	}
	dst := mountedFS(t)

	skipped, err := sync.ImportTree(src, dst)
	require.NoError(t, err)
	require.Contains(t, skipped, "sub")

	names, err := dst.Readdir()
	require.NoError(t, err)
	require.Contains(t, names, "top.txt")
	require.NotContains(t, names, "sub/deep.txt")
}
