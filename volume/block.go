// Package volume owns the on-disk layout of a TinyFS volume: the superblock, the
// root inode, the free-block bitmap, and every per-file inode and its extent chain.
//
// It sits on top of blockdev and knows nothing about file descriptors or seek
// offsets — that state belongs to the file package, which drives this package by
// block number only.
package volume

import "github.com/tinyfs-go/tinyfs/blockdev"

// Tag is the one-byte type discriminator stored at byte 0 of every block.
type Tag byte

const (
	TagSuperblock Tag = 1
	TagInode      Tag = 2
	TagExtent     Tag = 3
	TagFree       Tag = 4
)

// Magic is the constant every block carries at byte 1; its presence (or absence)
// is what mount-time verification checks.
const Magic byte = 0x45

// BlockSize is the fixed block size in bytes, re-exported from blockdev for
// convenience within this package's callers.
const BlockSize = blockdev.BlockSize

// PayloadSize is how many of a block's BlockSize bytes remain once the one-byte
// tag and one-byte magic are accounted for.
const PayloadSize = BlockSize - 2

const (
	// SuperblockNum is the fixed block number of the superblock.
	SuperblockNum = 0
	// RootInodeNum is the fixed block number of the root inode.
	RootInodeNum = 1
)

// MaxNameLen is the longest filename TinyFS accepts, not counting the terminator.
const MaxNameLen = 8

func newBlankBlock(tag Tag) []byte {
	b := make([]byte, BlockSize)
	b[0] = byte(tag)
	b[1] = Magic
	return b
}
