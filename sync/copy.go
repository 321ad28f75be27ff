// Package sync bulk-loads a host directory tree into a mounted volume and
// verifies that two filesystem views hold identical content.
package sync

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/tinyfs-go/tinyfs/filesystem"
)

const maxCopyAllSize = 64 * 1024 * 1024

// ImportTree copies every regular file in src's root directory into dst,
// using each entry's base name as the destination name.
//
// TinyFS has no directory hierarchy, device nodes, or symlinks, so unlike the
// original recursive, depth-first tree copy this only looks at src's top
// level: subdirectories, symlinks, and anything else that isn't a regular
// file are skipped and reported back to the caller rather than copied.
func ImportTree(src fs.FS, dst filesystem.FileSystem) (skipped []string, err error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("read source tree: %w", err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !entry.Type().IsRegular() {
			skipped = append(skipped, name)
			continue
		}
		if err := copyOneFile(src, dst, name); err != nil {
			return skipped, fmt.Errorf("copy file %s: %w", name, err)
		}
	}
	return skipped, nil
}

func copyOneFile(src fs.FS, dst filesystem.FileSystem, name string) error {
	in, err := src.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	if info.Size() > maxCopyAllSize {
		return fmt.Errorf("%s is %d bytes, larger than the %d byte import limit", name, info.Size(), int64(maxCopyAllSize))
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	out, err := dst.Open(name)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	return out.Replace(data)
}
