package volume

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/tinyfs-go/tinyfs/blockdev"
	"github.com/tinyfs-go/tinyfs/tfserr"
)

// Volume is the in-memory handle for one formatted TinyFS volume. It owns the
// block-device handle backing it and a cached copy of its superblock (the free
// bitmap in particular); every mutation is persisted to disk before the call that
// made it returns.
type Volume struct {
	registry    *blockdev.Registry
	disk        blockdev.Handle
	Path        string
	Size        int64
	TotalBlocks int
	Mounted     bool
	OpenCount   int
	sb          *superblock
}

// UUID identifies this volume, assigned once at format time and persisted in the
// superblock. It has no on-disk semantic meaning beyond diagnostics.
func (v *Volume) UUID() uuid.UUID { return v.sb.uuid }

// Format lays out a brand-new volume of nBytes on disk at path, via registry, and
// registers it in catalog under that path.
func Format(registry *blockdev.Registry, catalog *Catalog, path string, nBytes int64) (*Volume, error) {
	const op = "volume.Format"
	if nBytes <= 0 || nBytes%BlockSize != 0 {
		return nil, tfserr.New(tfserr.InvalidArgument, op, fmt.Errorf("size %d must be a positive multiple of %d", nBytes, BlockSize))
	}

	h, err := registry.OpenDisk(path, nBytes)
	if err != nil {
		return nil, err
	}

	totalBlocks := int(nBytes / BlockSize)
	free := freeBlockImage()
	for b := 0; b < totalBlocks; b++ {
		if err := registry.WriteBlock(h, b, free); err != nil {
			return nil, tfserr.New(tfserr.IOError, op, err)
		}
	}

	sb, err := newSuperblock(totalBlocks)
	if err != nil {
		return nil, err
	}
	if err := registry.WriteBlock(h, SuperblockNum, sb.marshal()); err != nil {
		return nil, tfserr.New(tfserr.IOError, op, err)
	}

	root := NewInode("/", ReadWrite, Now())
	if err := registry.WriteBlock(h, RootInodeNum, root.marshal()); err != nil {
		return nil, tfserr.New(tfserr.IOError, op, err)
	}

	v := &Volume{
		registry:    registry,
		disk:        h,
		Path:        path,
		Size:        nBytes,
		TotalBlocks: totalBlocks,
		sb:          sb,
	}
	catalog.register(v)
	return v, nil
}

// verify re-reads every block and confirms the magic invariant holds, as Mount
// requires before attaching a volume.
func (v *Volume) verify() error {
	const op = "volume.verify"
	buf := make([]byte, BlockSize)
	for b := 0; b < v.TotalBlocks; b++ {
		if err := v.registry.ReadBlock(v.disk, b, buf); err != nil {
			return err
		}
		if buf[1] != Magic {
			return tfserr.New(tfserr.Corruption, op, fmt.Errorf("block %d has invalid magic byte", b))
		}
	}
	return nil
}

// AllocateBlock pops the lowest-numbered free block, marks it used, and persists
// the superblock.
func (v *Volume) AllocateBlock() (int, error) {
	const op = "volume.AllocateBlock"
	b, ok := v.sb.firstFree()
	if !ok {
		return 0, tfserr.New(tfserr.OutOfSpace, op, fmt.Errorf("no free blocks remain on %q", v.Path))
	}
	v.sb.markUsed(b)
	if err := v.persistSuperblock(); err != nil {
		return 0, err
	}
	return b, nil
}

// ReleaseBlock overwrites block with a fresh FREE image and returns it to the
// free bitmap.
func (v *Volume) ReleaseBlock(block int) error {
	const op = "volume.ReleaseBlock"
	if err := v.registry.WriteBlock(v.disk, block, freeBlockImage()); err != nil {
		return tfserr.New(tfserr.IOError, op, err)
	}
	v.sb.markFree(block)
	return v.persistSuperblock()
}

func (v *Volume) persistSuperblock() error {
	if err := v.registry.WriteBlock(v.disk, SuperblockNum, v.sb.marshal()); err != nil {
		return tfserr.New(tfserr.IOError, "volume.persistSuperblock", err)
	}
	return nil
}

// ReadInode loads the inode stored at block.
func (v *Volume) ReadInode(block int) (*Inode, error) {
	buf := make([]byte, BlockSize)
	if err := v.registry.ReadBlock(v.disk, block, buf); err != nil {
		return nil, err
	}
	return unmarshalInode(buf)
}

// WriteInode persists in to block.
func (v *Volume) WriteInode(block int, in *Inode) error {
	if err := v.registry.WriteBlock(v.disk, block, in.marshal()); err != nil {
		return tfserr.New(tfserr.IOError, "volume.WriteInode", err)
	}
	return nil
}

// ReadExtent returns the PayloadSize content bytes stored at block, which must be
// tagged FILE_EXTENT.
func (v *Volume) ReadExtent(block int) ([]byte, error) {
	const op = "volume.ReadExtent"
	buf := make([]byte, BlockSize)
	if err := v.registry.ReadBlock(v.disk, block, buf); err != nil {
		return nil, err
	}
	if buf[1] != Magic || Tag(buf[0]) != TagExtent {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("block %d is not a valid extent", block))
	}
	return buf[2:], nil
}

// WriteExtent tags block FILE_EXTENT and stores data. Payload bytes beyond
// len(data) are written as zeros, not kept from the block's prior contents, so
// callers pass exactly PayloadSize bytes already merged with whatever portion of
// the block should survive.
func (v *Volume) WriteExtent(block int, data []byte) error {
	if err := v.registry.WriteBlock(v.disk, block, marshalExtent(data)); err != nil {
		return tfserr.New(tfserr.IOError, "volume.WriteExtent", err)
	}
	return nil
}

// InodeRef names one inode found during a volume scan.
type InodeRef struct {
	Block int
	Name  string
}

// FindByName scans every block for an inode whose stored name matches name,
// returning its block number.
func (v *Volume) FindByName(name string) (int, bool, error) {
	buf := make([]byte, BlockSize)
	for b := 0; b < v.TotalBlocks; b++ {
		if err := v.registry.ReadBlock(v.disk, b, buf); err != nil {
			return 0, false, err
		}
		if Tag(buf[0]) != TagInode {
			continue
		}
		in, err := unmarshalInode(buf)
		if err != nil {
			return 0, false, err
		}
		if in.Name == name {
			return b, true, nil
		}
	}
	return 0, false, nil
}

// ListInodes returns every inode on the volume (including the root).
func (v *Volume) ListInodes() ([]InodeRef, error) {
	var out []InodeRef
	buf := make([]byte, BlockSize)
	for b := 0; b < v.TotalBlocks; b++ {
		if err := v.registry.ReadBlock(v.disk, b, buf); err != nil {
			return nil, err
		}
		if Tag(buf[0]) != TagInode {
			continue
		}
		in, err := unmarshalInode(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, InodeRef{Block: b, Name: in.Name})
	}
	return out, nil
}
