// Package file is the dynamic-resource (open-file) layer of TinyFS. It drives the
// volume package by block number only, translating byte-granular read/write/seek
// calls into the logical↔physical addressing the two reserved header bytes per
// block impose.
package file

import (
	"fmt"
	"time"

	"github.com/tinyfs-go/tinyfs/tfserr"
	"github.com/tinyfs-go/tinyfs/volume"
)

// stride is how many content bytes live in one extent block.
const stride = volume.PayloadSize

// Descriptor identifies one open file within the currently mounted volume.
type Descriptor int

type resource struct {
	name       string
	seek       int64
	inodeBlock int
}

// Info is the metadata a readFileInfo call reports.
type Info struct {
	Name       string
	Size       int64
	Permission volume.Permission
	Created    time.Time
	Modified   time.Time
	Accessed   time.Time
}

// Manager owns the dynamic resource table for one mounted volume. Construct a
// fresh Manager on every successful mount and drop it on unmount: discarding it is
// what invalidates every descriptor a prior mount handed out.
type Manager struct {
	vol       *volume.Volume
	resources map[Descriptor]*resource
}

// NewManager returns a Manager with an empty resource table, bound to vol.
func NewManager(vol *volume.Volume) *Manager {
	return &Manager{vol: vol, resources: make(map[Descriptor]*resource)}
}

func (m *Manager) lookup(op string, fd Descriptor) (*resource, error) {
	res, ok := m.resources[fd]
	if !ok {
		return nil, tfserr.New(tfserr.NotFound, op, fmt.Errorf("descriptor %d is not open", fd))
	}
	return res, nil
}

// Open finds or creates the inode named name and returns a fresh descriptor for
// it. The same name may be opened repeatedly; each call yields an independent
// descriptor sharing the one inode block but tracking its own seek offset.
func (m *Manager) Open(name string) (Descriptor, error) {
	const op = "file.Open"
	if len(name) > volume.MaxNameLen {
		return -1, tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("name %q exceeds %d characters", name, volume.MaxNameLen))
	}

	block, found, err := m.vol.FindByName(name)
	if err != nil {
		return -1, err
	}
	if !found {
		block, err = m.vol.AllocateBlock()
		if err != nil {
			return -1, err
		}
		in := volume.NewInode(name, volume.ReadWrite, volume.Now())
		if err := m.vol.WriteInode(block, in); err != nil {
			return -1, err
		}
	}

	fd := Descriptor(m.vol.OpenCount)
	m.vol.OpenCount++
	m.resources[fd] = &resource{name: name, inodeBlock: block}
	return fd, nil
}

// Close stamps the backing inode's modification time, persists it, and drops the
// descriptor. Closing an already-closed descriptor fails.
func (m *Manager) Close(fd Descriptor) error {
	const op = "file.Close"
	res, err := m.lookup(op, fd)
	if err != nil {
		return err
	}
	in, err := m.vol.ReadInode(res.inodeBlock)
	if err != nil {
		return err
	}
	in.Modified = volume.Now()
	if err := m.vol.WriteInode(res.inodeBlock, in); err != nil {
		return err
	}
	delete(m.resources, fd)
	return nil
}

// truncate frees every extent in res's inode and zeroes its size, preserving the
// inode itself, its name, and its permission. It is the shared substance of
// Delete and the rewrite-with-truncate prelude of WriteFile. It refuses to touch
// a read-only inode, leaving its contents untouched.
func (m *Manager) truncate(res *resource) (*volume.Inode, error) {
	const op = "file.truncate"
	in, err := m.vol.ReadInode(res.inodeBlock)
	if err != nil {
		return nil, err
	}
	if in.Permission == volume.ReadOnly {
		return nil, tfserr.New(tfserr.PermissionDenied, op, fmt.Errorf("%q is read-only", in.Name))
	}
	for _, extent := range in.Extents {
		if err := m.vol.ReleaseBlock(int(extent)); err != nil {
			return nil, err
		}
	}
	in.Extents = nil
	in.Size = 0
	in.Modified = volume.Now()
	if err := m.vol.WriteInode(res.inodeBlock, in); err != nil {
		return nil, err
	}
	return in, nil
}

// WriteFile replaces the entire content of the file behind fd with buf, freeing
// whatever extents it held before. The descriptor's seek offset ends at 0.
func (m *Manager) WriteFile(fd Descriptor, buf []byte) error {
	const op = "file.WriteFile"
	res, err := m.lookup(op, fd)
	if err != nil {
		return err
	}

	size := len(buf)
	if int64(size) > volume.MaxFileSize {
		return tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("%d bytes exceeds the %d-byte maximum file size (%d extents)", size, volume.MaxFileSize, volume.MaxExtents))
	}

	in, err := m.truncate(res)
	if err != nil {
		return err
	}

	written := 0
	for written < size {
		block, err := m.vol.AllocateBlock()
		if err != nil {
			return err
		}
		in.Extents = append(in.Extents, int32(block))

		chunk := stride
		if remaining := size - written; chunk > remaining {
			chunk = remaining
		}
		data := make([]byte, stride)
		copy(data, buf[written:written+chunk])
		if err := m.vol.WriteExtent(block, data); err != nil {
			return err
		}
		written += chunk
	}

	res.seek = 0
	in.Size = int64(size)
	in.Modified = volume.Now()
	return m.vol.WriteInode(res.inodeBlock, in)
}

// ReadByte copies the byte at the descriptor's current seek offset to the caller
// and advances the offset by one. It fails at end-of-file without advancing.
func (m *Manager) ReadByte(fd Descriptor) (byte, error) {
	const op = "file.ReadByte"
	res, err := m.lookup(op, fd)
	if err != nil {
		return 0, err
	}
	in, err := m.vol.ReadInode(res.inodeBlock)
	if err != nil {
		return 0, err
	}
	if res.seek >= in.Size {
		return 0, tfserr.New(tfserr.OutOfBounds, op, fmt.Errorf("seek %d is at or past size %d", res.seek, in.Size))
	}

	extentIndex := int(res.seek / int64(stride))
	byteWithin := int(res.seek % int64(stride))
	if extentIndex >= len(in.Extents) {
		return 0, tfserr.New(tfserr.Corruption, op, fmt.Errorf("extent chain for %q is shorter than its recorded size", in.Name))
	}
	data, err := m.vol.ReadExtent(int(in.Extents[extentIndex]))
	if err != nil {
		return 0, err
	}
	b := data[byteWithin]

	res.seek++
	in.Accessed = volume.Now()
	if err := m.vol.WriteInode(res.inodeBlock, in); err != nil {
		return 0, err
	}
	return b, nil
}

// WriteByte overwrites the byte at the descriptor's current seek offset. It never
// extends the file: writing at or past the current size fails.
func (m *Manager) WriteByte(fd Descriptor, data byte) error {
	const op = "file.WriteByte"
	res, err := m.lookup(op, fd)
	if err != nil {
		return err
	}
	in, err := m.vol.ReadInode(res.inodeBlock)
	if err != nil {
		return err
	}
	if in.Permission == volume.ReadOnly {
		return tfserr.New(tfserr.PermissionDenied, op, fmt.Errorf("%q is read-only", in.Name))
	}
	if res.seek >= in.Size {
		return tfserr.New(tfserr.OutOfBounds, op, fmt.Errorf("seek %d is at or past size %d", res.seek, in.Size))
	}

	in.Modified = volume.Now()
	if err := m.vol.WriteInode(res.inodeBlock, in); err != nil {
		return err
	}

	extentIndex := int(res.seek / int64(stride))
	byteWithin := int(res.seek % int64(stride))
	block := int(in.Extents[extentIndex])
	payload, err := m.vol.ReadExtent(block)
	if err != nil {
		return err
	}
	buf := make([]byte, stride)
	copy(buf, payload)
	buf[byteWithin] = data
	if err := m.vol.WriteExtent(block, buf); err != nil {
		return err
	}

	res.seek++
	return nil
}

// Delete truncates the file behind fd to zero length, freeing its extents but
// keeping its inode entry so later writes can repopulate it.
func (m *Manager) Delete(fd Descriptor) error {
	const op = "file.Delete"
	res, err := m.lookup(op, fd)
	if err != nil {
		return err
	}
	_, err = m.truncate(res)
	return err
}

// Seek moves the descriptor's file pointer to offset, an absolute byte position.
// offset == size is allowed (it positions for the next write or an EOF read);
// offset > size is rejected.
func (m *Manager) Seek(fd Descriptor, offset int64) error {
	const op = "file.Seek"
	res, err := m.lookup(op, fd)
	if err != nil {
		return err
	}
	in, err := m.vol.ReadInode(res.inodeBlock)
	if err != nil {
		return err
	}
	if offset < 0 || offset > in.Size {
		return tfserr.New(tfserr.OutOfBounds, op, fmt.Errorf("offset %d is out of [0,%d]", offset, in.Size))
	}
	res.seek = offset
	return nil
}

// Rename changes a file's name in place. The root entry may never be renamed, and
// every open descriptor on the renamed file has its cached name updated.
func (m *Manager) Rename(oldName, newName string) error {
	const op = "file.Rename"
	if len(newName) > volume.MaxNameLen {
		return tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("name %q exceeds %d characters", newName, volume.MaxNameLen))
	}
	if oldName == "/" {
		return tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("the root entry cannot be renamed"))
	}

	block, found, err := m.vol.FindByName(oldName)
	if err != nil {
		return err
	}
	if !found {
		return tfserr.New(tfserr.NotFound, op, fmt.Errorf("no file named %q", oldName))
	}

	in, err := m.vol.ReadInode(block)
	if err != nil {
		return err
	}
	in.Name = newName
	in.Modified = volume.Now()
	if err := m.vol.WriteInode(block, in); err != nil {
		return err
	}

	for _, res := range m.resources {
		if res.inodeBlock == block {
			res.name = newName
		}
	}
	return nil
}

func (m *Manager) setPermission(name string, perm volume.Permission) error {
	const op = "file.setPermission"
	block, found, err := m.vol.FindByName(name)
	if err != nil {
		return err
	}
	if !found {
		return tfserr.New(tfserr.NotFound, op, fmt.Errorf("no file named %q", name))
	}
	in, err := m.vol.ReadInode(block)
	if err != nil {
		return err
	}
	in.Permission = perm
	in.Modified = volume.Now()
	return m.vol.WriteInode(block, in)
}

// MakeReadOnly flips name's permission to read-only.
func (m *Manager) MakeReadOnly(name string) error { return m.setPermission(name, volume.ReadOnly) }

// MakeReadWrite flips name's permission to read-write.
func (m *Manager) MakeReadWrite(name string) error { return m.setPermission(name, volume.ReadWrite) }

// Readdir lists every file name on the volume except the distinguished root entry.
func (m *Manager) Readdir() ([]string, error) {
	refs, err := m.vol.ListInodes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Block == volume.RootInodeNum {
			continue
		}
		names = append(names, ref.Name)
	}
	return names, nil
}

// Stat reports the metadata of the file behind fd.
func (m *Manager) Stat(fd Descriptor) (Info, error) {
	const op = "file.Stat"
	res, err := m.lookup(op, fd)
	if err != nil {
		return Info{}, err
	}
	in, err := m.vol.ReadInode(res.inodeBlock)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Name:       in.Name,
		Size:       in.Size,
		Permission: in.Permission,
		Created:    in.Created,
		Modified:   in.Modified,
		Accessed:   in.Accessed,
	}, nil
}
