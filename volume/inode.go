package volume

import (
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/tinyfs-go/tinyfs/tfserr"
)

// Permission is an inode's read/write gate.
type Permission byte

const (
	ReadWrite Permission = 0
	ReadOnly  Permission = 1
)

const (
	inodeNameOffset       = 0
	inodeNameWidth        = MaxNameLen + 1 // 8 chars + NUL terminator
	inodeSizeOffset       = inodeNameOffset + inodeNameWidth
	inodePermOffset       = inodeSizeOffset + 4
	inodeExtentCountOffset = inodePermOffset + 1
	inodeCreatedOffset    = inodeExtentCountOffset + 1
	inodeModifiedOffset   = inodeCreatedOffset + timestampWidth
	inodeAccessedOffset   = inodeModifiedOffset + timestampWidth
	inodeExtentsOffset    = inodeAccessedOffset + timestampWidth
)

// MaxExtents is how many extent block numbers fit in one inode's payload after its
// name, size, permission, and three timestamps are accounted for.
const MaxExtents = (PayloadSize - inodeExtentsOffset) / 4

// MaxFileSize is the largest file TinyFS can represent: every extent full.
const MaxFileSize = MaxExtents * int64(extentPayload)

// Inode is the in-memory form of an on-disk inode block: a file's metadata and its
// ordered chain of extent block numbers.
type Inode struct {
	Name       string
	Size       int64
	Permission Permission
	Extents    []int32
	Created    time.Time
	Modified   time.Time
	Accessed   time.Time
}

// NewInode builds a fresh in-memory inode with all three timestamps set to at.
func NewInode(name string, perm Permission, at time.Time) *Inode {
	return &Inode{
		Name:       name,
		Permission: perm,
		Created:    at,
		Modified:   at,
		Accessed:   at,
	}
}

func (in *Inode) marshal() []byte {
	b := newBlankBlock(TagInode)
	payload := b[2:]

	nameBytes := []byte(in.Name)
	if len(nameBytes) > MaxNameLen {
		nameBytes = nameBytes[:MaxNameLen]
	}
	copy(payload[inodeNameOffset:inodeNameOffset+inodeNameWidth], nameBytes)

	binary.BigEndian.PutUint32(payload[inodeSizeOffset:], uint32(in.Size))
	payload[inodePermOffset] = byte(in.Permission)
	payload[inodeExtentCountOffset] = byte(len(in.Extents))

	ts := encodeTimestamp(in.Created)
	copy(payload[inodeCreatedOffset:], ts[:])
	ts = encodeTimestamp(in.Modified)
	copy(payload[inodeModifiedOffset:], ts[:])
	ts = encodeTimestamp(in.Accessed)
	copy(payload[inodeAccessedOffset:], ts[:])

	for i, extent := range in.Extents {
		off := inodeExtentsOffset + i*4
		binary.BigEndian.PutUint32(payload[off:], uint32(extent))
	}
	return b
}

func unmarshalInode(block []byte) (*Inode, error) {
	const op = "volume.unmarshalInode"
	if len(block) != BlockSize {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("short block"))
	}
	if block[1] != Magic {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("bad magic byte"))
	}
	if Tag(block[0]) != TagInode {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("block is not tagged as an inode"))
	}
	payload := block[2:]

	name := strings.TrimRight(string(payload[inodeNameOffset:inodeNameOffset+inodeNameWidth]), "\x00")
	size := int64(int32(binary.BigEndian.Uint32(payload[inodeSizeOffset:])))
	perm := Permission(payload[inodePermOffset])
	count := int(payload[inodeExtentCountOffset])
	if count > MaxExtents {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("extent count %d exceeds capacity %d", count, MaxExtents))
	}

	var created, modified, accessed [timestampWidth]byte
	copy(created[:], payload[inodeCreatedOffset:])
	copy(modified[:], payload[inodeModifiedOffset:])
	copy(accessed[:], payload[inodeAccessedOffset:])

	extents := make([]int32, count)
	for i := 0; i < count; i++ {
		off := inodeExtentsOffset + i*4
		extents[i] = int32(binary.BigEndian.Uint32(payload[off:]))
	}

	return &Inode{
		Name:       name,
		Size:       size,
		Permission: perm,
		Extents:    extents,
		Created:    decodeTimestamp(created),
		Modified:   decodeTimestamp(modified),
		Accessed:   decodeTimestamp(accessed),
	}, nil
}
