// Package snapshot exports and imports a whole TinyFS backing file as a
// compressed archive, for cheap offline backup of a volume. It is pure host-file
// tooling: it never mounts, verifies, or otherwise interprets the file's
// contents as a TinyFS volume.
package snapshot

import (
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"

	"github.com/tinyfs-go/tinyfs/tfserr"
)

// Codec names a compression format snapshot can target.
type Codec string

const (
	// LZ4 favors export/import speed over ratio.
	LZ4 Codec = "lz4"
	// XZ favors ratio over speed, for archival snapshots.
	XZ Codec = "xz"
)

func (c Codec) valid() bool { return c == LZ4 || c == XZ }

// Export compresses the backing file at srcPath into a new archive at destPath
// using codec, overwriting destPath if it already exists.
func Export(srcPath, destPath string, codec Codec) error {
	const op = "snapshot.Export"
	if !codec.valid() {
		return tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("unknown codec %q", codec))
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return tfserr.New(tfserr.NotFound, op, err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return tfserr.New(tfserr.IOError, op, err)
	}
	defer dest.Close()

	switch codec {
	case LZ4:
		w := lz4.NewWriter(dest)
		if _, err := io.Copy(w, src); err != nil {
			return tfserr.New(tfserr.IOError, op, err)
		}
		if err := w.Close(); err != nil {
			return tfserr.New(tfserr.IOError, op, err)
		}
	case XZ:
		w, err := xz.NewWriter(dest)
		if err != nil {
			return tfserr.New(tfserr.IOError, op, err)
		}
		if _, err := io.Copy(w, src); err != nil {
			return tfserr.New(tfserr.IOError, op, err)
		}
		if err := w.Close(); err != nil {
			return tfserr.New(tfserr.IOError, op, err)
		}
	}
	return nil
}

// Import decompresses the archive at srcPath, written by Export with codec, back
// into a backing file at destPath, overwriting destPath if it already exists.
func Import(srcPath, destPath string, codec Codec) error {
	const op = "snapshot.Import"
	if !codec.valid() {
		return tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("unknown codec %q", codec))
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return tfserr.New(tfserr.NotFound, op, err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return tfserr.New(tfserr.IOError, op, err)
	}
	defer dest.Close()

	var reader io.Reader
	switch codec {
	case LZ4:
		reader = lz4.NewReader(src)
	case XZ:
		r, err := xz.NewReader(src)
		if err != nil {
			return tfserr.New(tfserr.Corruption, op, err)
		}
		reader = r
	}

	if _, err := io.Copy(dest, reader); err != nil {
		return tfserr.New(tfserr.IOError, op, err)
	}
	return nil
}
