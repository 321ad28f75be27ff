package file_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tinyfs-go/tinyfs/blockdev"
	"github.com/tinyfs-go/tinyfs/file"
	"github.com/tinyfs-go/tinyfs/tfserr"
	"github.com/tinyfs-go/tinyfs/volume"
)

func mountFresh(t *testing.T, nBytes int64) (*volume.Volume, *file.Manager) {
	t.Helper()
	r := blockdev.NewRegistry()
	cat := volume.NewCatalog()
	path := filepath.Join(t.TempDir(), "d.bin")
	_, err := volume.Format(r, cat, path, nBytes)
	require.NoError(t, err)
	v, err := cat.Mount(path)
	require.NoError(t, err)
	return v, file.NewManager(v)
}

func TestOpenCreatesThenReopensSameInode(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)

	fd1, err := m.Open("greeting")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd1, []byte("hello")))

	fd2, err := m.Open("greeting")
	require.NoError(t, err)
	require.NotEqual(t, fd1, fd2)

	info, err := m.Stat(fd2)
	require.NoError(t, err)
	require.Equal(t, "greeting", info.Name)
	require.EqualValues(t, 5, info.Size)
}

func TestOpenRejectsOverlongName(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*8)
	_, err := m.Open("waytoolongname")
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.InvalidArgument))
}

func TestWriteThenReadByteByByte(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("data")
	require.NoError(t, err)
	content := []byte("tinyfs")
	require.NoError(t, m.WriteFile(fd, content))

	require.NoError(t, m.Seek(fd, 0))
	for i := range content {
		b, err := m.ReadByte(fd)
		require.NoError(t, err)
		require.Equal(t, content[i], b)
	}

	_, err = m.ReadByte(fd)
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.OutOfBounds))
}

func TestWriteFileSpansMultipleExtents(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*64)
	fd, err := m.Open("big")
	require.NoError(t, err)

	content := make([]byte, volume.PayloadSize*3+17)
	for i := range content {
		content[i] = byte(i % 251)
	}
	require.NoError(t, m.WriteFile(fd, content))

	require.NoError(t, m.Seek(fd, 0))
	for i := range content {
		b, err := m.ReadByte(fd)
		require.NoError(t, err)
		require.Equal(t, content[i], b, "byte %d mismatch", i)
	}
}

// TestWriteFileRejectsContentExceedingMaxFileSize covers the case where a volume
// has plenty of free blocks but the requested content would need more extents
// than one inode can address; it must fail cleanly rather than overrun the
// inode's extent table.
func TestWriteFileRejectsContentExceedingMaxFileSize(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*200)
	fd, err := m.Open("huge")
	require.NoError(t, err)

	content := make([]byte, volume.MaxFileSize+1)
	err = m.WriteFile(fd, content)
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.InvalidArgument))

	info, err := m.Stat(fd)
	require.NoError(t, err)
	require.EqualValues(t, 0, info.Size, "a rejected write must leave the file untouched")
}

func TestWriteByteOverwritesInPlace(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("patched")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("ABCDE")))

	require.NoError(t, m.Seek(fd, 2))
	require.NoError(t, m.WriteByte(fd, 'X'))

	require.NoError(t, m.Seek(fd, 0))
	var got []byte
	for i := 0; i < 5; i++ {
		b, err := m.ReadByte(fd)
		require.NoError(t, err)
		got = append(got, b)
	}
	require.Equal(t, []byte("ABXDE"), got)
}

func TestWriteByteRefusesToExtendPastEOF(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("short")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("ab")))

	require.NoError(t, m.Seek(fd, 2))
	err = m.WriteByte(fd, 'z')
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.OutOfBounds))
}

func TestSeekRejectsPastEOFAndNegative(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("file")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("abc")))

	require.NoError(t, m.Seek(fd, 3)) // exactly EOF is fine
	err = m.Seek(fd, 4)
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.OutOfBounds))

	err = m.Seek(fd, -1)
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.OutOfBounds))
}

func TestDeleteFreesBlocksForReuse(t *testing.T) {
	v, m := mountFresh(t, volume.BlockSize*8) // blocks 0,1 reserved, 2..7 free = 6
	fd, err := m.Open("temp")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, make([]byte, volume.PayloadSize*3)))

	require.NoError(t, m.Delete(fd))

	info, err := m.Stat(fd)
	require.NoError(t, err)
	require.EqualValues(t, 0, info.Size)

	for i := 0; i < 5; i++ {
		_, err := v.AllocateBlock()
		require.NoError(t, err, "deleted file's extents should have returned to the free list")
	}
}

func TestWriteFileRejectsReadOnly(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("locked")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("original")))
	require.NoError(t, m.MakeReadOnly("locked"))

	err = m.WriteFile(fd, []byte("changed"))
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.PermissionDenied))

	info, err := m.Stat(fd)
	require.NoError(t, err)
	require.EqualValues(t, len("original"), info.Size, "a rejected write must not truncate the existing content")
}

func TestWriteByteRejectsReadOnly(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("locked2")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("abc")))
	require.NoError(t, m.MakeReadOnly("locked2"))

	require.NoError(t, m.Seek(fd, 0))
	err = m.WriteByte(fd, 'z')
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.PermissionDenied))
}

func TestMakeReadWriteRestoresWriteAccess(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("toggle")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("v1")))
	require.NoError(t, m.MakeReadOnly("toggle"))
	require.NoError(t, m.MakeReadWrite("toggle"))

	require.NoError(t, m.WriteFile(fd, []byte("v2")))
	info, err := m.Stat(fd)
	require.NoError(t, err)
	require.EqualValues(t, 2, info.Size)
}

func TestRenameUpdatesOpenDescriptors(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("old")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("x")))

	require.NoError(t, m.Rename("old", "new"))

	_, found, err := func() (int, bool, error) {
		names, err := m.Readdir()
		if err != nil {
			return 0, false, err
		}
		for _, n := range names {
			if n == "new" {
				return 0, true, nil
			}
		}
		return 0, false, nil
	}()
	require.NoError(t, err)
	require.True(t, found)

	info, err := m.Stat(fd)
	require.NoError(t, err)
	require.Equal(t, "new", info.Name)
}

func TestRenameRejectsRoot(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	err := m.Rename("/", "notroot")
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.InvalidArgument))
}

func TestRenameUnknownFileFails(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	err := m.Rename("ghost", "whatever")
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.NotFound))
}

func TestReaddirOmitsRootAndListsCreatedFiles(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*32)
	for _, name := range []string{"a", "b", "c"} {
		fd, err := m.Open(name)
		require.NoError(t, err)
		require.NoError(t, m.Close(fd))
	}

	names, err := m.Readdir()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a", "b", "c"}, names)
}

func TestCloseInvalidatesDescriptor(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("closeme")
	require.NoError(t, err)
	require.NoError(t, m.Close(fd))

	_, err = m.ReadByte(fd)
	require.Error(t, err)
	require.True(t, tfserr.Is(err, tfserr.NotFound))
}

func TestStatReportsCreatedModifiedAccessed(t *testing.T) {
	_, m := mountFresh(t, volume.BlockSize*16)
	fd, err := m.Open("stamped")
	require.NoError(t, err)
	require.NoError(t, m.WriteFile(fd, []byte("z")))

	info, err := m.Stat(fd)
	require.NoError(t, err)
	require.False(t, info.Created.IsZero())
	require.False(t, info.Modified.IsZero())
	require.False(t, info.Accessed.IsZero())
}
