package volume

// extentPayload is how many file-content bytes fit in one FILE_EXTENT block.
// Every extent block spends its first two bytes on the tag and magic, so the
// payload stride is BlockSize-2, not BlockSize.
const extentPayload = PayloadSize

func marshalExtent(data []byte) []byte {
	b := newBlankBlock(TagExtent)
	copy(b[2:], data)
	return b
}

func freeBlockImage() []byte {
	return newBlankBlock(TagFree)
}
