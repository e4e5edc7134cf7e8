// Package codec detects and (de)compresses firmware/kernel bodies.
// Preambles can carry a compression tag (Preamble.CompressionFormat), and
// HashFwBody/VerifyKernelData route a tagged body through this package to
// decompress it before the signature check; cmd/vb2tool also uses it
// directly to build compressed test fixtures in the same formats real
// images ship in. This package is adapted from the teacher's
// format.go/compress.go, narrowed to the compression formats vboot-
// adjacent kernel/firmware images actually use.
package codec

import "bytes"

// Format identifies a compression container. Unlike the teacher's
// format_t, this has no boot-image-format members (AOSP/DHTB/MTK/…) —
// those belonged to the Android boot.img family this module has no
// analog for.
type Format int

const (
	Unknown Format = iota
	Gzip
	Zopfli
	XZ
	LZMA
	BZip2
	LZ4
)

const (
	gzip1Magic = "\x1f\x8b"
	gzip2Magic = "\x1f\x9e"
	xzMagic    = "\xfd7zXZ"
	bzipMagic  = "BZh"
	lz4Magic1  = "\x03\x21\x4c\x18"
	lz4Magic2  = "\x04\x22\x4d\x18"
)

// Detect identifies buf's compression format from its magic bytes, the
// same table-driven magic-matching style as the teacher's CheckFmt.
// Zopfli produces standard gzip-format output, so it is indistinguishable
// from Gzip by magic alone; Detect never returns Zopfli — callers that
// produced a buffer with Encode(Zopfli, ...) already know what they made.
func Detect(buf []byte) Format {
	match := func(magic string) bool {
		return len(buf) >= len(magic) && bytes.Equal(buf[:len(magic)], []byte(magic))
	}
	switch {
	case match(gzip1Magic), match(gzip2Magic):
		return Gzip
	case match(xzMagic):
		return XZ
	case len(buf) >= 13 && bytes.Equal(buf[:3], []byte("\x5d\x00\x00")) && (buf[12] == 0xff || buf[12] == 0x00):
		return LZMA
	case match(bzipMagic):
		return BZip2
	case match(lz4Magic1), match(lz4Magic2):
		return LZ4
	default:
		return Unknown
	}
}

func (f Format) String() string {
	switch f {
	case Gzip:
		return "gzip"
	case Zopfli:
		return "zopfli"
	case XZ:
		return "xz"
	case LZMA:
		return "lzma"
	case BZip2:
		return "bzip2"
	case LZ4:
		return "lz4"
	default:
		return "raw"
	}
}

// Name looks up a Format by its String() form, the inverse the teacher's
// Name2Fmt provides for CLI flag parsing.
func Name(s string) Format {
	switch s {
	case "gzip":
		return Gzip
	case "zopfli":
		return Zopfli
	case "xz":
		return XZ
	case "lzma":
		return LZMA
	case "bzip2":
		return BZip2
	case "lz4":
		return LZ4
	default:
		return Unknown
	}
}
