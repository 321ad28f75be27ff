package volume

import (
	"strings"
	"time"

	"github.com/tinyfs-go/tinyfs/util/timestamp"
)

// timestampWidth is the fixed on-disk width, in bytes, of each of an inode's three
// timestamp fields, per spec.md §3 ("≤30 bytes").
const timestampWidth = 30

// asctimeLayout mirrors the traditional C asctime() rendering the spec's design
// notes suggest ("Www Mmm dd hh:mm:ss yyyy"), trimmed of its trailing newline.
const asctimeLayout = "Mon Jan _2 15:04:05 2006"

// Now returns the current time, honoring SOURCE_DATE_EPOCH so that formatting
// a volume in a test produces reproducible inode timestamps.
func Now() time.Time {
	return timestamp.GetTime()
}

// encodeTimestamp renders t into a fixed timestampWidth-byte field, NUL-padded.
func encodeTimestamp(t time.Time) [timestampWidth]byte {
	var out [timestampWidth]byte
	s := t.Format(asctimeLayout)
	copy(out[:], s)
	return out
}

// decodeTimestamp parses a fixed timestampWidth-byte field back into a time.Time.
// A field holding only zero bytes (never written) decodes to the zero time.
func decodeTimestamp(b [timestampWidth]byte) time.Time {
	s := strings.TrimRight(string(b[:]), "\x00")
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(asctimeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
