package volume

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"

	"github.com/tinyfs-go/tinyfs/tfserr"
	"github.com/tinyfs-go/tinyfs/util/bitmap"
)

// superblockUUIDOffset, superblockCountOffset, superblockBitmapOffset are
// payload-relative offsets (i.e. relative to byte 2 of block 0).
const (
	superblockUUIDOffset   = 0
	superblockCountOffset  = 16
	superblockBitmapOffset = 20
)

// maxAddressableBlocks is how many blocks the superblock's bitmap can track, given
// that it must fit inside one block's payload alongside the UUID and block count.
// This is the implementation-defined bound spec.md's Non-goals allow ("files
// larger than can fit in the free-block chain" — by extension, volumes larger than
// the superblock can account for are also out of scope).
const maxAddressableBlocks = (PayloadSize - superblockBitmapOffset) * 8

// superblock is the in-memory mirror of block 0: the volume's UUID, its total
// block count, and a bitmap of which blocks are in use (set) versus free (clear).
// Block 0 and block 1 (the root inode) are always marked in use.
type superblock struct {
	uuid      uuid.UUID
	numBlocks int
	bits      *bitmap.Bitmap
}

func newSuperblock(numBlocks int) (*superblock, error) {
	if numBlocks > maxAddressableBlocks {
		return nil, tfserr.New(tfserr.InvalidArgument, "volume.newSuperblock",
			fmt.Errorf("volume of %d blocks exceeds the %d blocks this superblock format can address", numBlocks, maxAddressableBlocks))
	}
	sb := &superblock{
		uuid:      uuid.New(),
		numBlocks: numBlocks,
		bits:      bitmap.NewBits(numBlocks),
	}
	sb.markUsed(SuperblockNum)
	sb.markUsed(RootInodeNum)
	return sb, nil
}

func (sb *superblock) markFree(block int) { _ = sb.bits.Clear(block) }

func (sb *superblock) markUsed(block int) { _ = sb.bits.Set(block) }

func (sb *superblock) isFree(block int) bool {
	if block < 0 || block >= sb.numBlocks {
		return false
	}
	set, err := sb.bits.IsSet(block)
	return err == nil && !set
}

// firstFree scans for the lowest-numbered free block at or above block 2,
// satisfying the spec's "allocation is FIFO so block numbers grow predictably"
// intent without needing an explicit ordered list (spec.md's design notes endorse
// a bitmap for exactly this reason).
func (sb *superblock) firstFree() (int, bool) {
	b := sb.bits.FirstFree(2)
	if b < 0 || b >= sb.numBlocks {
		return 0, false
	}
	return b, true
}

func (sb *superblock) marshal() []byte {
	b := newBlankBlock(TagSuperblock)
	payload := b[2:]
	copy(payload[superblockUUIDOffset:], sb.uuid[:])
	binary.BigEndian.PutUint32(payload[superblockCountOffset:], uint32(sb.numBlocks))
	copy(payload[superblockBitmapOffset:], sb.bits.ToBytes())
	return b
}

func unmarshalSuperblock(block []byte) (*superblock, error) {
	const op = "volume.unmarshalSuperblock"
	if len(block) != BlockSize {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("short block"))
	}
	if block[1] != Magic {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("bad magic byte"))
	}
	if Tag(block[0]) != TagSuperblock {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("block 0 is not tagged as a superblock"))
	}
	payload := block[2:]
	sb := &superblock{}
	copy(sb.uuid[:], payload[superblockUUIDOffset:superblockUUIDOffset+16])
	sb.numBlocks = int(binary.BigEndian.Uint32(payload[superblockCountOffset:]))
	nBytes := (sb.numBlocks + 7) / 8
	if superblockBitmapOffset+nBytes > len(payload) {
		return nil, tfserr.New(tfserr.Corruption, op, fmt.Errorf("block count %d overflows the bitmap region", sb.numBlocks))
	}
	sb.bits = bitmap.FromBytes(payload[superblockBitmapOffset : superblockBitmapOffset+nBytes])
	return sb, nil
}
