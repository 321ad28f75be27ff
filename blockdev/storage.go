package blockdev

import (
	"io/fs"
	"os"

	"github.com/tinyfs-go/tinyfs/backend"
)

// fileStorage adapts a plain *os.File to backend.Storage, so the registry's
// host-file access goes through the same Storage/WritableFile seam the backend
// package defines for pluggable disk backends, rather than calling the os package
// directly. TinyFS only ever backs onto a host file, never a raw block device, so
// Sys just hands the caller the same *os.File.
type fileStorage struct {
	f *os.File
}

func newFileStorage(f *os.File) *fileStorage { return &fileStorage{f: f} }

func (s *fileStorage) Stat() (fs.FileInfo, error) { return s.f.Stat() }

func (s *fileStorage) Read(p []byte) (int, error) { return s.f.Read(p) }

func (s *fileStorage) ReadAt(p []byte, off int64) (int, error) { return s.f.ReadAt(p, off) }

func (s *fileStorage) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *fileStorage) Close() error { return s.f.Close() }

func (s *fileStorage) Sys() (*os.File, error) { return s.f, nil }

func (s *fileStorage) Writable() (backend.WritableFile, error) { return s, nil }

func (s *fileStorage) WriteAt(p []byte, off int64) (int, error) { return s.f.WriteAt(p, off) }
