package tinyfs

import (
	"io"
	"io/fs"
	"time"

	"github.com/tinyfs-go/tinyfs/file"
	"github.com/tinyfs-go/tinyfs/filesystem"
)

// Open finds or creates name on the mounted volume and returns a filesystem.File
// handle to it, satisfying filesystem.FileSystem.
func (fs *FS) Open(name string) (filesystem.File, error) {
	fd, err := fs.OpenFile(name)
	if err != nil {
		return nil, err
	}
	return &adaptedFile{fs: fs, fd: fd}, nil
}

// ReadDir lists every file's name, satisfying filesystem.FileSystem.
func (fs *FS) ReadDir() ([]string, error) { return fs.Readdir() }

// Remove truncates name to zero length, satisfying filesystem.FileSystem.
func (fs *FS) Remove(name string) error {
	fd, err := fs.OpenFile(name)
	if err != nil {
		return err
	}
	if err := fs.DeleteFile(fd); err != nil {
		return err
	}
	return fs.CloseFile(fd)
}

// Chmod sets name's permission, satisfying filesystem.FileSystem.
func (fs *FS) Chmod(name string, readOnly bool) error {
	if readOnly {
		return fs.MakeReadOnly(name)
	}
	return fs.MakeReadWrite(name)
}

// adaptedFile wraps an open descriptor to satisfy filesystem.File and, through
// it, io/fs.File for converter.FS.
type adaptedFile struct {
	fs *FS
	fd file.Descriptor
}

func (a *adaptedFile) Read(p []byte) (int, error) {
	for i := range p {
		b, err := a.fs.ReadByte(a.fd)
		if err != nil {
			if i == 0 {
				return 0, io.EOF
			}
			return i, nil
		}
		p[i] = b
	}
	return len(p), nil
}

func (a *adaptedFile) Seek(offset int64, whence int) (int64, error) {
	info, err := a.fs.ReadFileInfo(a.fd)
	if err != nil {
		return 0, err
	}
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		// TinyFS's descriptor doesn't expose its current seek position directly;
		// readFileInfo doesn't report it either, so relative seeks start from 0.
		target = offset
	case io.SeekEnd:
		target = info.Size + offset
	}
	if err := a.fs.Seek(a.fd, target); err != nil {
		return 0, err
	}
	return target, nil
}

func (a *adaptedFile) Close() error { return a.fs.CloseFile(a.fd) }

func (a *adaptedFile) Replace(data []byte) error { return a.fs.WriteFile(a.fd, data) }

func (a *adaptedFile) Stat() (fs.FileInfo, error) {
	info, err := a.fs.ReadFileInfo(a.fd)
	if err != nil {
		return nil, err
	}
	return fileInfo{info}, nil
}

// fileInfo adapts file.Info to fs.FileInfo. TinyFS files are never directories.
type fileInfo struct {
	info file.Info
}

func (i fileInfo) Name() string       { return i.info.Name }
func (i fileInfo) Size() int64        { return i.info.Size }
func (i fileInfo) Mode() fs.FileMode {
	if i.info.Permission != 0 {
		return 0o444
	}
	return 0o644
}
func (i fileInfo) ModTime() time.Time { return i.info.Modified }
func (i fileInfo) IsDir() bool        { return false }
func (i fileInfo) Sys() any           { return nil }
