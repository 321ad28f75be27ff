// Package converter adapts a filesystem.FileSystem into a standard io/fs.FS, so
// a mounted volume can be walked, read, and served with any stdlib or
// third-party tooling that already speaks io/fs.
package converter

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/tinyfs-go/tinyfs/filesystem"
)

type fsCompatible struct {
	filesystem.FileSystem
}

// Open opens name for reading. filesystem.File already implements fs.File
// (Read, Close, Stat), so no wrapper type is needed the way the original
// directory-scanning stat lookup required.
func (f *fsCompatible) Open(name string) (fs.File, error) {
	if name == "." {
		return nil, fmt.Errorf("converter: %q is a directory placeholder, not a real file", name)
	}
	return f.FileSystem.Open(name)
}

// ReadDir lists every file at the namespace's single, flat level. TinyFS has
// no subdirectories, so only "." is a valid argument, satisfying fs.ReadDirFS
// so fs.WalkDir and fs.ReadDir work against the adapted volume.
func (f *fsCompatible) ReadDir(name string) ([]fs.DirEntry, error) {
	if name != "." {
		return nil, fmt.Errorf("converter: %q is not a directory", name)
	}
	names, err := f.FileSystem.ReadDir()
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(names))
	for _, n := range names {
		file, err := f.FileSystem.Open(n)
		if err != nil {
			return nil, err
		}
		info, err := file.Stat()
		_ = file.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	return entries, nil
}

// Stat reports "." as a synthetic root directory (TinyFS has no on-disk
// directory entries to back it) and defers every other name to Open+Stat,
// satisfying fs.StatFS so fs.WalkDir can stat the root before listing it.
func (f *fsCompatible) Stat(name string) (fs.FileInfo, error) {
	if name == "." {
		return rootInfo{}, nil
	}
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return file.Stat()
}

type rootInfo struct{}

func (rootInfo) Name() string       { return "." }
func (rootInfo) Size() int64        { return 0 }
func (rootInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o755 }
func (rootInfo) ModTime() time.Time { return time.Time{} }
func (rootInfo) IsDir() bool        { return true }
func (rootInfo) Sys() any           { return nil }

// FS adapts f into an io/fs.FS that also satisfies fs.ReadDirFS.
func FS(f filesystem.FileSystem) fs.FS {
	return &fsCompatible{f}
}
