// Package blockdev is the bottom layer of TinyFS: a pure byte-array-in-blocks
// abstraction over a host file standing in for an emulated disk.
//
// It has no knowledge of superblocks, inodes, or extents — that is the volume
// package's job. Keeping this layer ignorant of volume structure is what lets the
// volume and file layers be tested against an in-memory stand-in instead of a real
// host file.
package blockdev

import (
	"fmt"
	"os"
	"time"

	times "gopkg.in/djherbis/times.v1"

	"github.com/tinyfs-go/tinyfs/backend"
	"github.com/tinyfs-go/tinyfs/tfserr"
)

// BlockSize is the fixed size, in bytes, of every block on every TinyFS disk.
const BlockSize = 256

// Handle identifies one open disk within a Registry.
type Handle int

// Info reports the host file's own timestamps, as distinct from the timestamps
// TinyFS maintains per-inode inside the volume. It backs diagnostic tooling only;
// no core operation consults it.
type Info struct {
	Path       string
	Capacity   int64
	ModTime    time.Time
	AccessTime time.Time
	HasBirth   bool
	BirthTime  time.Time
}

type entry struct {
	storage  backend.Storage
	path     string
	capacity int64
	readOnly bool
	open     bool
}

// Registry is a process-wide table of open disks, keyed by Handle. The zero value
// is not usable; construct one with NewRegistry.
type Registry struct {
	entries map[Handle]*entry
	next    Handle
}

// NewRegistry returns an empty disk registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Handle]*entry)}
}

// OpenDisk designates the first nBytes of filename as an emulated disk and returns
// a handle to it.
//
// If nBytes > 0, the file is opened read-write, created if missing and truncated to
// exactly nBytes. If nBytes == 0, an existing file is opened read-only and its
// current size becomes the disk's capacity. OpenDisk fails if nBytes is not an
// integral multiple of BlockSize, or the host open fails.
func (r *Registry) OpenDisk(filename string, nBytes int64) (Handle, error) {
	const op = "blockdev.OpenDisk"
	if nBytes%BlockSize != 0 {
		return -1, tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("size %d is not a multiple of block size %d", nBytes, BlockSize))
	}

	var (
		f        *os.File
		err      error
		capacity = nBytes
	)
	if nBytes == 0 {
		f, err = os.OpenFile(filename, os.O_RDONLY, 0)
		if err != nil {
			return -1, tfserr.New(tfserr.NotFound, op, err)
		}
		fi, statErr := f.Stat()
		if statErr != nil {
			f.Close()
			return -1, tfserr.New(tfserr.IOError, op, statErr)
		}
		capacity = fi.Size()
	} else {
		f, err = os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return -1, tfserr.New(tfserr.IOError, op, err)
		}
		if err := f.Truncate(nBytes); err != nil {
			f.Close()
			return -1, tfserr.New(tfserr.IOError, op, err)
		}
	}

	h := r.next
	r.next++
	r.entries[h] = &entry{
		storage:  newFileStorage(f),
		path:     filename,
		capacity: capacity,
		readOnly: nBytes == 0,
		open:     true,
	}
	return h, nil
}

// Adopt registers an already-open backend.Storage as a disk, bypassing the
// host-file open path OpenDisk uses. It exists so a non-file-backed Storage —
// such as testhelper.FaultyStorage — can be plugged in without TinyFS's core
// code ever needing to know it isn't a real host file.
func (r *Registry) Adopt(storage backend.Storage, path string, capacity int64, readOnly bool) Handle {
	h := r.next
	r.next++
	r.entries[h] = &entry{
		storage:  storage,
		path:     path,
		capacity: capacity,
		readOnly: readOnly,
		open:     true,
	}
	return h
}

func (r *Registry) lookup(op string, h Handle) (*entry, error) {
	e, ok := r.entries[h]
	if !ok || !e.open {
		return nil, tfserr.New(tfserr.DeviceClosed, op, fmt.Errorf("handle %d is not open", h))
	}
	return e, nil
}

// ReadBlock reads exactly BlockSize bytes from logical block bNum into buf.
func (r *Registry) ReadBlock(h Handle, bNum int, buf []byte) error {
	const op = "blockdev.ReadBlock"
	e, err := r.lookup(op, h)
	if err != nil {
		return err
	}
	if len(buf) < BlockSize {
		return tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("buffer shorter than block size"))
	}
	offset := int64(bNum) * BlockSize
	if offset < 0 || offset+BlockSize > e.capacity {
		return tfserr.New(tfserr.OutOfBounds, op, fmt.Errorf("block %d is past the end of a %d-byte disk", bNum, e.capacity))
	}
	block := backend.Sub(e.storage, offset, BlockSize)
	if _, err := block.ReadAt(buf[:BlockSize], 0); err != nil {
		return tfserr.New(tfserr.IOError, op, err)
	}
	return nil
}

// WriteBlock writes exactly BlockSize bytes from buf to logical block bNum.
func (r *Registry) WriteBlock(h Handle, bNum int, buf []byte) error {
	const op = "blockdev.WriteBlock"
	e, err := r.lookup(op, h)
	if err != nil {
		return err
	}
	if e.readOnly {
		return tfserr.New(tfserr.PermissionDenied, op, fmt.Errorf("disk %q was opened read-only", e.path))
	}
	if len(buf) < BlockSize {
		return tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("buffer shorter than block size"))
	}
	offset := int64(bNum) * BlockSize
	if offset < 0 || offset+BlockSize > e.capacity {
		return tfserr.New(tfserr.OutOfBounds, op, fmt.Errorf("block %d is past the end of a %d-byte disk", bNum, e.capacity))
	}
	sub := backend.Sub(e.storage, offset, BlockSize)
	w, err := sub.Writable()
	if err != nil {
		return tfserr.New(tfserr.IOError, op, err)
	}
	if _, err := w.WriteAt(buf[:BlockSize], 0); err != nil {
		return tfserr.New(tfserr.IOError, op, err)
	}
	return nil
}

// CloseDisk flushes and closes the host file backing h. Closing an already-closed
// handle is a no-op, matching the original libDisk.c contract.
func (r *Registry) CloseDisk(h Handle) error {
	e, ok := r.entries[h]
	if !ok || !e.open {
		return nil
	}
	e.open = false
	return e.storage.Close()
}

// Capacity returns the disk's size in bytes.
func (r *Registry) Capacity(h Handle) (int64, error) {
	e, err := r.lookup("blockdev.Capacity", h)
	if err != nil {
		return 0, err
	}
	return e.capacity, nil
}

// Stat reports the host file's own birth/access/modification times, independent of
// whatever a TinyFS volume stores inside its inodes. It is a diagnostic only — no
// core operation depends on it.
func (r *Registry) Stat(h Handle) (Info, error) {
	const op = "blockdev.Stat"
	e, err := r.lookup(op, h)
	if err != nil {
		return Info{}, err
	}
	t, err := times.Stat(e.path)
	if err != nil {
		return Info{}, tfserr.New(tfserr.IOError, op, err)
	}
	info := Info{
		Path:       e.path,
		Capacity:   e.capacity,
		ModTime:    t.ModTime(),
		AccessTime: t.AccessTime(),
	}
	if t.HasBirthTime() {
		info.HasBirth = true
		info.BirthTime = t.BirthTime()
	}
	return info, nil
}
