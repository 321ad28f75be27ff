// Package testhelper provides stand-ins for backend.Storage used to exercise
// error paths that a real host file won't reliably produce on demand.
package testhelper

import (
	"errors"
	"io/fs"
	"os"

	"github.com/tinyfs-go/tinyfs/backend"
)

// FaultyStorage implements backend.Storage over an in-memory byte slice, with
// optional injected failures on ReadAt/WriteAt so callers can exercise a block
// device's I/O-error handling without corrupting a real file on disk.
type FaultyStorage struct {
	Data     []byte
	ReadErr  error
	WriteErr error
	closed   bool
}

// NewFaultyStorage returns a FaultyStorage backed by size zeroed bytes.
func NewFaultyStorage(size int64) *FaultyStorage {
	return &FaultyStorage{Data: make([]byte, size)}
}

func (f *FaultyStorage) Stat() (fs.FileInfo, error) { return nil, errors.New("testhelper: Stat not supported") }

func (f *FaultyStorage) Read(p []byte) (int, error) { return f.ReadAt(p, 0) }

func (f *FaultyStorage) ReadAt(p []byte, off int64) (int, error) {
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	if f.closed {
		return 0, errors.New("testhelper: storage closed")
	}
	n := copy(p, f.Data[off:])
	return n, nil
}

func (f *FaultyStorage) Seek(offset int64, whence int) (int64, error) {
	return 0, errors.New("testhelper: Seek not supported")
}

func (f *FaultyStorage) Close() error {
	f.closed = true
	return nil
}

func (f *FaultyStorage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

func (f *FaultyStorage) Writable() (backend.WritableFile, error) { return f, nil }

func (f *FaultyStorage) WriteAt(p []byte, off int64) (int, error) {
	if f.WriteErr != nil {
		return 0, f.WriteErr
	}
	if f.closed {
		return 0, errors.New("testhelper: storage closed")
	}
	n := copy(f.Data[off:], p)
	return n, nil
}
