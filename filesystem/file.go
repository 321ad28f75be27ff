package filesystem

import (
	"io"
	"io/fs"
)

// File is a reference to a single open file on a mounted volume.
//
// Trimmed from the original fs.ReadDirFile + io.Writer + io.Seeker shape: TinyFS
// has no subdirectories, so ReadDirFile doesn't apply, and writeFile always
// replaces a file's entire content rather than supporting partial or appending
// writes, so Replace stands in for io.Writer.
type File interface {
	io.Reader
	io.Seeker
	io.Closer
	Stat() (fs.FileInfo, error)
	// Replace overwrites the file's entire content, exactly like writeFile.
	Replace(data []byte) error
}
