// Package host provides the host-side collaborators vb2core's verifier
// expects to be driven by: named-resource reads (GBB, vblocks), disk I/O
// in LBA units, and the concrete glue a real bootloader would supply for
// vb2.EC. Everything in vb2 itself only ever sees the small interfaces it
// declares (vb2.EC, vb2.PersistentWriter); this package is where a real
// implementation — or, for tests, a simulated one — lives.
package host

// ResourceIndex selects which named resource a ReadResource call is
// asking for (spec.md §6).
type ResourceIndex int

const (
	ResourceGBB ResourceIndex = iota
	ResourceFWVblock
	ResourceKernelVblock
	ResourceFWBody
)

// ReadResource copies exactly size bytes of the named resource at offset
// into buf, or fails with a size/index error. Firmware body reads are
// expected to stream: a caller hashing a large body calls repeatedly with
// advancing offsets rather than asking for the whole thing at once.
type ReadResource interface {
	ReadResource(index ResourceIndex, offset uint64, buf []byte) error
}

// DiskIO is the LBA-addressed block device interface (spec.md §6): all
// reads and writes are in whole multiples of BytesPerLBA.
type DiskIO interface {
	BytesPerLBA() uint64
	LBACount() uint64
	ReadLBA(lbaStart, lbaCount uint64, buf []byte) error
	WriteLBA(lbaStart, lbaCount uint64, buf []byte) error
}
