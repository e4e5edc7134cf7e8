package host

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/edsrzf/mmap-go"
)

// SimDisk is an mmap-backed DiskIO over a regular file, the way the
// teacher's bootimg.go maps boot images with mmap-go rather than reading
// them into a buffer up front. It is meant for tests and cmd/vb2tool
// devtools, not a real bootloader, which would talk to actual block
// device firmware.
//
// Production gates whether WriteLBA actually touches the backing file.
// The original test harness's disk-write callback has an early return
// SUCCESS before its (unreachable) write code, evidently to avoid
// trashing the fixture image under test; we make that suppression
// explicit instead of leaving dead code behind it. Real callers must set
// Production true.
type SimDisk struct {
	Production bool

	f           *os.File
	m           mmap.MMap
	bytesPerLBA uint64
	debugSize   string
}

// OpenSimDisk maps path read-write and derives LBACount from its size.
func OpenSimDisk(path string, bytesPerLBA uint64) (*SimDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	if bytesPerLBA == 0 {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("host: bytesPerLBA must be nonzero")
	}
	d := &SimDisk{f: f, m: m, bytesPerLBA: bytesPerLBA}
	d.debugSize = humanize.Bytes(uint64(len(m)))
	return d, nil
}

// debugSize is a human-readable rendering of the mapped disk's size,
// computed once at open time for diagnostic logging (e.g. cmd/vb2tool
// reporting what it just mapped) rather than recomputed on every call.
func (d *SimDisk) DebugSize() string { return d.debugSize }

func (d *SimDisk) Close() error {
	if err := d.m.Unmap(); err != nil {
		return err
	}
	return d.f.Close()
}

func (d *SimDisk) BytesPerLBA() uint64 { return d.bytesPerLBA }

func (d *SimDisk) LBACount() uint64 { return uint64(len(d.m)) / d.bytesPerLBA }

func (d *SimDisk) span(lbaStart, lbaCount uint64, bufLen int) (uint64, uint64, error) {
	start := lbaStart * d.bytesPerLBA
	length := lbaCount * d.bytesPerLBA
	if start+length > uint64(len(d.m)) {
		return 0, 0, fmt.Errorf("host: lba range [%d,+%d) exceeds disk size", lbaStart, lbaCount)
	}
	if uint64(bufLen) != length {
		return 0, 0, fmt.Errorf("host: buffer size %d does not match %d requested LBAs", bufLen, lbaCount)
	}
	return start, length, nil
}

func (d *SimDisk) ReadLBA(lbaStart, lbaCount uint64, buf []byte) error {
	start, length, err := d.span(lbaStart, lbaCount, len(buf))
	if err != nil {
		return err
	}
	copy(buf, d.m[start:start+length])
	return nil
}

// WriteLBA is a no-op unless Production is set, matching the original
// test harness's write-suppression behavior (see SimDisk's doc comment).
func (d *SimDisk) WriteLBA(lbaStart, lbaCount uint64, buf []byte) error {
	if !d.Production {
		return nil
	}
	start, length, err := d.span(lbaStart, lbaCount, len(buf))
	if err != nil {
		return err
	}
	copy(d.m[start:start+length], buf)
	return nil
}

// SimGBB maps a GBB blob (or a full firmware image containing one, at a
// byte offset within it) for ReadResource(ResourceGBB, ...) without
// requiring the caller to read the whole image into memory first.
type SimGBB struct {
	f      *os.File
	m      mmap.MMap
	base   uint64
	length uint64
}

func OpenSimGBB(path string, base, length uint64) (*SimGBB, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	if base+length > uint64(len(m)) {
		m.Unmap()
		f.Close()
		return nil, fmt.Errorf("host: gbb region [%d,+%d) exceeds file size", base, length)
	}
	return &SimGBB{f: f, m: m, base: base, length: length}, nil
}

func (g *SimGBB) Close() error {
	if err := g.m.Unmap(); err != nil {
		return err
	}
	return g.f.Close()
}

func (g *SimGBB) Bytes() []byte { return g.m[g.base : g.base+g.length] }

// ReadResource serves ResourceGBB from the mapped region; ResourceFWVblock,
// ResourceKernelVblock, and ResourceFWBody are expected to be served by
// a disk-backed reader instead, since they live in firmware/kernel
// partitions rather than the GBB.
func (g *SimGBB) ReadResource(index ResourceIndex, offset uint64, buf []byte) error {
	if index != ResourceGBB {
		return fmt.Errorf("host: SimGBB cannot serve resource %d", index)
	}
	if offset+uint64(len(buf)) > g.length {
		return fmt.Errorf("host: gbb read [%d,+%d) exceeds mapped region", offset, len(buf))
	}
	copy(buf, g.Bytes()[offset:offset+uint64(len(buf))])
	return nil
}
