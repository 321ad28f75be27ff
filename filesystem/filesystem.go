// Package filesystem provides the interfaces a mounted volume implements so that
// host-facing adapters (see converter) can work against it generically.
package filesystem

import "errors"

var (
	// ErrNotSupported is returned by an operation a filesystem implementation
	// chooses not to provide.
	ErrNotSupported = errors.New("operation not supported by this filesystem")
	// ErrReadonlyFilesystem is returned by a mutating operation against a
	// filesystem that was opened read-only.
	ErrReadonlyFilesystem = errors.New("read-only filesystem")
)

// FileSystem is a reference to a single mounted volume.
//
// This is trimmed from the original disk-filesystem interface down to what a
// flat, directory-less namespace like TinyFS's actually supports: no
// Mkdir/Mknod/Link/Symlink/Chown/Label, since TinyFS has no directory hierarchy,
// device nodes, hard or symbolic links, unix ownership, or volume label — those
// methods had no honest implementation here.
type FileSystem interface {
	// Open finds or creates name and returns a handle to it.
	Open(name string) (File, error)
	// ReadDir lists every file's name.
	ReadDir() ([]string, error)
	// Rename renames oldname to newname.
	Rename(oldname, newname string) error
	// Remove truncates name to zero length; TinyFS never frees an inode's slot,
	// so a removed name still exists and may be reopened.
	Remove(name string) error
	// Chmod sets name's permission: true for read-only, false for read-write.
	Chmod(name string, readOnly bool) error
}
