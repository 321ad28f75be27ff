// Package hostprobe tags and identifies TinyFS backing files from the host side,
// without mounting them. It is a collaborator of the core (spec.md's "host-side
// file-system path handling" concern), never consulted by mount or verify: a
// backing file missing its tag, or carrying a stale one, still mounts normally.
package hostprobe

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/xattr"

	"github.com/tinyfs-go/tinyfs/tfserr"
)

// attrName is the extended attribute Tag writes and Probe reads.
const attrName = "user.tinyfs.uuid"

// Tag stamps path's extended attributes with id, so a host tool can recognize it
// as a TinyFS volume without mounting it. Overwrites any prior tag.
func Tag(path string, id uuid.UUID) error {
	const op = "hostprobe.Tag"
	if err := xattr.Set(path, attrName, []byte(id.String())); err != nil {
		return tfserr.New(tfserr.IOError, op, fmt.Errorf("setting %s on %q: %w", attrName, path, err))
	}
	return nil
}

// Probe reads back the UUID Tag wrote to path. It fails with NotFound if path
// carries no such attribute, or Corruption if the attribute's contents aren't a
// well-formed UUID.
func Probe(path string) (uuid.UUID, error) {
	const op = "hostprobe.Probe"
	raw, err := xattr.Get(path, attrName)
	if err != nil {
		return uuid.UUID{}, tfserr.New(tfserr.NotFound, op, fmt.Errorf("reading %s from %q: %w", attrName, path, err))
	}
	id, err := uuid.Parse(string(raw))
	if err != nil {
		return uuid.UUID{}, tfserr.New(tfserr.Corruption, op, fmt.Errorf("%q does not hold a valid UUID: %w", path, err))
	}
	return id, nil
}

// Untag removes whatever tag Tag left on path, if any. Untagging an untagged file
// is a no-op.
func Untag(path string) error {
	const op = "hostprobe.Untag"
	if err := xattr.Remove(path, attrName); err != nil {
		if xattr.IsNotExist(err) {
			return nil
		}
		return tfserr.New(tfserr.IOError, op, fmt.Errorf("removing %s from %q: %w", attrName, path, err))
	}
	return nil
}
