package volume

import (
	"fmt"

	"github.com/tinyfs-go/tinyfs/tfserr"
)

// Catalog is the process-wide registry of formatted volumes and the single
// "currently mounted" slot spec.md §5 describes. At most one of its volumes is
// ever mounted at a time.
type Catalog struct {
	volumes map[string]*Volume
	mounted *Volume
}

// NewCatalog returns an empty volume catalog.
func NewCatalog() *Catalog {
	return &Catalog{volumes: make(map[string]*Volume)}
}

func (c *Catalog) register(v *Volume) {
	c.volumes[v.Path] = v
}

// Mount attaches the volume registered under path as the current mounted volume,
// unmounting whatever was mounted beforehand. It fails if no volume is registered
// under path, or if the volume fails magic-byte verification.
func (c *Catalog) Mount(path string) (*Volume, error) {
	const op = "volume.Mount"
	if c.mounted != nil {
		if err := c.Unmount(); err != nil {
			return nil, err
		}
	}

	v, ok := c.volumes[path]
	if !ok {
		return nil, tfserr.New(tfserr.NotFound, op, fmt.Errorf("no volume registered at %q", path))
	}
	if err := v.verify(); err != nil {
		return nil, err
	}

	buf := make([]byte, BlockSize)
	if err := v.registry.ReadBlock(v.disk, SuperblockNum, buf); err != nil {
		return nil, err
	}
	sb, err := unmarshalSuperblock(buf)
	if err != nil {
		return nil, err
	}
	v.sb = sb

	v.Mounted = true
	c.mounted = v
	return v, nil
}

// Unmount clears the mounted slot. It fails if no volume is currently mounted.
func (c *Catalog) Unmount() error {
	const op = "volume.Unmount"
	if c.mounted == nil {
		return tfserr.New(tfserr.NotFound, op, fmt.Errorf("no volume is mounted"))
	}
	c.mounted.Mounted = false
	c.mounted = nil
	return nil
}

// Mounted returns the currently mounted volume, if any.
func (c *Catalog) Mounted() (*Volume, bool) {
	return c.mounted, c.mounted != nil
}
