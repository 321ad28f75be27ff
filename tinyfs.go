// Package tinyfs is the API façade for TinyFS: a single process-wide "currently
// mounted volume" slot, dispatching onto the block device, volume, and file
// layers beneath it. It is the only layer that logs (via logrus) and the only
// layer that knows about the legacy negative-code error surface; every package
// underneath it returns plain, richly-typed Go errors.
package tinyfs

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tinyfs-go/tinyfs/blockdev"
	"github.com/tinyfs-go/tinyfs/file"
	"github.com/tinyfs-go/tinyfs/tfserr"
	"github.com/tinyfs-go/tinyfs/volume"
)

// FS is the façade. Its zero value is not usable; construct one with New.
type FS struct {
	registry *blockdev.Registry
	catalog  *volume.Catalog
	files    *file.Manager
	log      *logrus.Logger
}

// New returns a façade with nothing mounted and a standard logrus logger.
func New() *FS {
	return &FS{
		registry: blockdev.NewRegistry(),
		catalog:  volume.NewCatalog(),
		log:      logrus.StandardLogger(),
	}
}

// SetLogger replaces the façade's logger, e.g. to redirect demo output or raise
// verbosity.
func (fs *FS) SetLogger(l *logrus.Logger) { fs.log = l }

func (fs *FS) logResult(op string, err error, fields logrus.Fields) {
	entry := fs.log.WithField("op", op)
	for k, v := range fields {
		entry = entry.WithField(k, v)
	}
	if err != nil {
		entry.WithField("code", CodeOf(err)).Warn("operation failed")
		return
	}
	entry.Debug("operation ok")
}

func (fs *FS) requireMounted(op string) (*file.Manager, error) {
	if fs.files == nil {
		return nil, tfserr.New(tfserr.NotFound, op, errors.New("no volume is mounted"))
	}
	return fs.files, nil
}

// Mkfs formats a brand-new backing file of nBytes at path.
func (fs *FS) Mkfs(path string, nBytes int64) error {
	_, err := volume.Format(fs.registry, fs.catalog, path, nBytes)
	fs.logResult("mkfs", err, logrus.Fields{"path": path, "size": nBytes})
	return err
}

// Mount attaches the volume backed by path as the currently mounted volume,
// replacing whatever was mounted before and discarding its open-file table.
func (fs *FS) Mount(path string) error {
	v, err := fs.catalog.Mount(path)
	if err != nil {
		// The catalog has already unmounted any prior volume, so its table goes too.
		fs.files = nil
		fs.logResult("mount", err, logrus.Fields{"path": path})
		return err
	}
	fs.files = file.NewManager(v)
	fs.logResult("mount", nil, logrus.Fields{"path": path})
	return nil
}

// Unmount detaches the currently mounted volume. Every open descriptor it had
// handed out becomes invalid, since the Manager backing them is dropped.
func (fs *FS) Unmount() error {
	err := fs.catalog.Unmount()
	if err == nil {
		fs.files = nil
	}
	fs.logResult("unmount", err, nil)
	return err
}

// OpenFile opens or creates name on the mounted volume.
func (fs *FS) OpenFile(name string) (file.Descriptor, error) {
	const op = "openFile"
	m, err := fs.requireMounted(op)
	if err != nil {
		fs.logResult(op, err, logrus.Fields{"name": name})
		return -1, err
	}
	fd, err := m.Open(name)
	fs.logResult(op, err, logrus.Fields{"name": name})
	return fd, err
}

// CloseFile closes fd, invalidating it.
func (fs *FS) CloseFile(fd file.Descriptor) error {
	const op = "closeFile"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.Close(fd)
	fs.logResult(op, err, logrus.Fields{"fd": fd})
	return err
}

// WriteFile replaces fd's entire content with buf.
func (fs *FS) WriteFile(fd file.Descriptor, buf []byte) error {
	const op = "writeFile"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.WriteFile(fd, buf)
	fs.logResult(op, err, logrus.Fields{"fd": fd, "size": len(buf)})
	return err
}

// ReadByte reads the byte at fd's current seek offset and advances it.
func (fs *FS) ReadByte(fd file.Descriptor) (byte, error) {
	const op = "readByte"
	m, err := fs.requireMounted(op)
	if err != nil {
		return 0, err
	}
	b, err := m.ReadByte(fd)
	fs.logResult(op, err, logrus.Fields{"fd": fd})
	return b, err
}

// WriteByte overwrites the byte at fd's current seek offset and advances it.
func (fs *FS) WriteByte(fd file.Descriptor, b byte) error {
	const op = "writeByte"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.WriteByte(fd, b)
	fs.logResult(op, err, logrus.Fields{"fd": fd})
	return err
}

// Seek repositions fd's file pointer to an absolute offset.
func (fs *FS) Seek(fd file.Descriptor, offset int64) error {
	const op = "seek"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.Seek(fd, offset)
	fs.logResult(op, err, logrus.Fields{"fd": fd, "offset": offset})
	return err
}

// DeleteFile truncates fd to zero length, freeing its extents.
func (fs *FS) DeleteFile(fd file.Descriptor) error {
	const op = "deleteFile"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.Delete(fd)
	fs.logResult(op, err, logrus.Fields{"fd": fd})
	return err
}

// Rename changes a file's name from oldName to newName.
func (fs *FS) Rename(oldName, newName string) error {
	const op = "rename"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.Rename(oldName, newName)
	fs.logResult(op, err, logrus.Fields{"old": oldName, "new": newName})
	return err
}

// Readdir lists every file name on the mounted volume.
func (fs *FS) Readdir() ([]string, error) {
	const op = "readdir"
	m, err := fs.requireMounted(op)
	if err != nil {
		return nil, err
	}
	names, err := m.Readdir()
	fs.logResult(op, err, logrus.Fields{"count": len(names)})
	return names, err
}

// MakeReadOnly flips name's permission to read-only.
func (fs *FS) MakeReadOnly(name string) error {
	const op = "makeRO"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.MakeReadOnly(name)
	fs.logResult(op, err, logrus.Fields{"name": name})
	return err
}

// MakeReadWrite flips name's permission to read-write.
func (fs *FS) MakeReadWrite(name string) error {
	const op = "makeRW"
	m, err := fs.requireMounted(op)
	if err != nil {
		return err
	}
	err = m.MakeReadWrite(name)
	fs.logResult(op, err, logrus.Fields{"name": name})
	return err
}

// ReadFileInfo reports fd's metadata.
func (fs *FS) ReadFileInfo(fd file.Descriptor) (file.Info, error) {
	const op = "readFileInfo"
	m, err := fs.requireMounted(op)
	if err != nil {
		return file.Info{}, err
	}
	info, err := m.Stat(fd)
	fs.logResult(op, err, logrus.Fields{"fd": fd})
	return info, err
}

// Code is the closed, negative-on-failure enum spec.md §6 describes. Only the
// façade speaks Code; every layer underneath returns ordinary Go errors.
type Code int

const (
	// Success is returned for a nil error.
	Success Code = 0
	// ErrGeneric covers any failure CodeOf cannot classify more precisely.
	ErrGeneric Code = -1
	ErrNotFound         Code = -2
	ErrInvalidArgument  Code = -3
	ErrOutOfSpace       Code = -4
	ErrPermissionDenied Code = -5
	ErrOutOfBounds      Code = -6
	ErrCorruption       Code = -7
	ErrDeviceClosed     Code = -8
	ErrIOError          Code = -9
)

// CodeOf translates err's tfserr.Kind (if any) into the façade's legacy code
// space. A nil err yields Success.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var e *tfserr.Error
	if !errors.As(err, &e) {
		return ErrGeneric
	}
	switch e.Kind {
	case tfserr.NotFound:
		return ErrNotFound
	case tfserr.InvalidArgument:
		return ErrInvalidArgument
	case tfserr.OutOfSpace:
		return ErrOutOfSpace
	case tfserr.PermissionDenied:
		return ErrPermissionDenied
	case tfserr.OutOfBounds:
		return ErrOutOfBounds
	case tfserr.Corruption:
		return ErrCorruption
	case tfserr.DeviceClosed:
		return ErrDeviceClosed
	case tfserr.IOError:
		return ErrIOError
	default:
		return ErrGeneric
	}
}

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case ErrNotFound:
		return "not found"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrOutOfSpace:
		return "out of space"
	case ErrPermissionDenied:
		return "permission denied"
	case ErrOutOfBounds:
		return "out of bounds"
	case ErrCorruption:
		return "corruption"
	case ErrDeviceClosed:
		return "device closed"
	case ErrIOError:
		return "i/o error"
	default:
		return fmt.Sprintf("code(%d)", int(c))
	}
}
