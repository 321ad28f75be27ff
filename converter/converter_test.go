package converter_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyfs-go/tinyfs"
	"github.com/tinyfs-go/tinyfs/converter"
)

func mountedFS(t *testing.T) *tinyfs.FS {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disk.tfs")
	ft := tinyfs.New()
	require.NoError(t, ft.Mkfs(path, 64*1024))
	require.NoError(t, ft.Mount(path))
	return ft
}

func TestOpenReadAndStatThroughIOFS(t *testing.T) {
	ft := mountedFS(t)

	fd, err := ft.OpenFile("greeting")
	require.NoError(t, err)
	content := []byte("hello, tinyfs")
	require.NoError(t, ft.WriteFile(fd, content))
	require.NoError(t, ft.CloseFile(fd))

	ioFS := converter.FS(ft)
	f, err := ioFS.Open("greeting")
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), info.Size())
	require.False(t, info.IsDir())

	buf := make([]byte, len(content))
	n, err := f.Read(buf)
	require.NoError(t, err)
	require.Equal(t, content, buf[:n])
}

func TestOpenMissingFileCreatesItLikeOpenFile(t *testing.T) {
	ft := mountedFS(t)
	ioFS := converter.FS(ft)

	f, err := ioFS.Open("new.txt")
	require.NoError(t, err)
	defer f.Close()

	info, err := f.Stat()
	require.NoError(t, err)
	require.Equal(t, int64(0), info.Size())
}
