package vb2

import "fmt"

// Status is the flat, truncatable error namespace required by spec.md §7:
// every operation returns SUCCESS or a single Status value rather than a
// nested error type, so a caller can safely cast it to a uint8 when it
// needs to stash the failure as a secdata/nvdata subcode.
type Status uint32

const Success Status = 0

const (
	// Workbuf arena (§4.1)
	StatusWorkbufAlignSize Status = 0x1000 + iota
	StatusWorkbufSmallSize
	StatusWorkbufOOM
	StatusWorkbufInvalidRealloc
	StatusWorkbufUsedShrink
)

const (
	// Packed key / keyblock / preamble (§4.2)
	StatusUnpackKeySize Status = 0x2000 + iota
	StatusUnpackKeyAlgorithm
	StatusUnpackKeyArraySize
	StatusKeyblockMagic
	StatusKeyblockSize
	StatusKeyblockDataKeySize
	StatusKeyblockSigSize
	StatusKeyblockSigInvalid
	StatusPreambleSize
	StatusPreambleSigSize
	StatusPreambleSigInvalid
	StatusPreambleBodySize
	StatusPreambleBodyDecompress
)

const (
	// Crypto verifier (§4.2)
	StatusDigestUnsupportedAlgorithm Status = 0x3000 + iota
	StatusDigestBufferTooSmall
	StatusRSAInvalidSignature
	StatusRSAInvalidKey
)

const (
	// GBB (§3)
	StatusGBBMagic Status = 0x4000 + iota
	StatusGBBVersion
	StatusGBBTooSmall
	StatusGBBInvalidOffset
)

const (
	// Persistent stores (§4.3, §6)
	StatusNVDataCRC Status = 0x5000 + iota
	StatusNVDataTooSmall
	StatusSecdataCRC
	StatusSecdataVersion
	StatusSecdataUninitialized
	StatusNVDataWrite
	StatusSecdataFirmwareWrite
	StatusSecdataKernelWrite
)

const (
	// Firmware verification (§4.4)
	StatusFWKeyblockVersionRollback Status = 0x6000 + iota
	StatusFWPreambleVersionRollback
	StatusFWBodyHashMismatch
	StatusFWNoSlotsLeft
)

const (
	// Kernel verification (§4.5)
	StatusKernelKeyblockVersionRollback Status = 0x7000 + iota
	StatusKernelPreambleVersionRollback
	StatusKernelDataSize
	StatusKernelDataHashMismatch
	StatusKernelDataSigInvalid
)

const (
	// EC software sync (§4.6)
	StatusECRebootToROrequired Status = 0x8000 + iota
	StatusECJumpFailed
	StatusECProtectFailed
	StatusECHashSizeMismatch
	StatusECExpectedHashMissing
	StatusECUnknownImage
	StatusECUpdateFailed
)

const (
	// Dispatcher / misc (§4.7)
	StatusRebootRequired Status = 0x9000 + iota
	StatusShutdownRequired
)

var statusNames = map[Status]string{
	StatusWorkbufAlignSize:              "workbuf: alignment overflowed requested size",
	StatusWorkbufSmallSize:              "workbuf: capacity smaller than minimum arena size",
	StatusWorkbufOOM:                    "workbuf: allocation exceeds free space",
	StatusWorkbufInvalidRealloc:         "workbuf: realloc target is not the most recent allocation",
	StatusWorkbufUsedShrink:             "workbuf: set_used would orphan a pinned region",
	StatusUnpackKeySize:                 "unpack_key: buffer too small for packed key header",
	StatusUnpackKeyAlgorithm:            "unpack_key: unknown algorithm tag",
	StatusUnpackKeyArraySize:            "unpack_key: key_offset+key_size exceeds buffer_size",
	StatusKeyblockMagic:                 "keyblock: bad magic",
	StatusKeyblockSize:                  "keyblock: declared size exceeds buffer",
	StatusKeyblockDataKeySize:           "keyblock: embedded data key out of bounds",
	StatusKeyblockSigSize:               "keyblock: signature out of bounds",
	StatusKeyblockSigInvalid:            "keyblock: signature verification failed",
	StatusPreambleSize:                  "preamble: declared size exceeds buffer",
	StatusPreambleSigSize:               "preamble: signature out of bounds",
	StatusPreambleSigInvalid:            "preamble: signature verification failed",
	StatusPreambleBodySize:              "preamble: body_signature.data_size mismatch",
	StatusPreambleBodyDecompress:        "preamble: body decompression failed",
	StatusDigestUnsupportedAlgorithm:    "digest: algorithm not compiled in",
	StatusDigestBufferTooSmall:          "digest: destination buffer too small",
	StatusRSAInvalidSignature:           "rsa: signature does not verify",
	StatusRSAInvalidKey:                 "rsa: key rejected (size or exponent)",
	StatusGBBMagic:                      "gbb: bad magic",
	StatusGBBVersion:                    "gbb: unsupported major/minor version",
	StatusGBBTooSmall:                   "gbb: buffer smaller than header_size",
	StatusGBBInvalidOffset:              "gbb: offset+size exceeds buffer",
	StatusNVDataCRC:                     "nvdata: crc mismatch",
	StatusNVDataTooSmall:                "nvdata: buffer too small",
	StatusSecdataCRC:                    "secdata: crc mismatch",
	StatusSecdataVersion:                "secdata: unsupported struct version",
	StatusSecdataUninitialized:          "secdata: read before init",
	StatusNVDataWrite:                   "nvdata: write failed (unrecoverable, VB2_REC_OR_DIE)",
	StatusSecdataFirmwareWrite:          "secdata-firmware: write failed",
	StatusSecdataKernelWrite:            "secdata-kernel: write failed",
	StatusFWKeyblockVersionRollback:     "firmware keyblock: key_version older than secdata",
	StatusFWPreambleVersionRollback:     "firmware preamble: composite version older than secdata",
	StatusFWBodyHashMismatch:            "firmware body: signature does not verify",
	StatusFWNoSlotsLeft:                 "firmware: no slot left to try",
	StatusKernelKeyblockVersionRollback: "kernel keyblock: key_version older than secdata-kernel",
	StatusKernelPreambleVersionRollback: "kernel preamble: composite version older than secdata-kernel",
	StatusKernelDataSize:                "kernel body: size does not match body_signature.data_size",
	StatusKernelDataHashMismatch:        "kernel body: digest mismatch",
	StatusKernelDataSigInvalid:          "kernel body: signature does not verify",
	StatusECRebootToROrequired:          "ec sync: reboot to RO required",
	StatusECJumpFailed:                  "ec sync: jump to RW failed",
	StatusECProtectFailed:               "ec sync: protect (lock) failed",
	StatusECHashSizeMismatch:            "ec sync: hash size mismatch",
	StatusECExpectedHashMissing:         "ec sync: expected hash unavailable",
	StatusECUnknownImage:                "ec sync: could not determine running image",
	StatusECUpdateFailed:                "ec sync: reflash did not converge",
	StatusRebootRequired:                "dispatcher: reboot required",
	StatusShutdownRequired:              "dispatcher: shutdown required",
}

func (s Status) Error() string {
	if s == Success {
		return "success"
	}
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("vb2: unknown status 0x%x", uint32(s))
}

func (s Status) String() string { return s.Error() }

// Subcode truncates a Status to the 8 bits a recovery-reason subcode field
// can hold (spec.md §7).
func (s Status) Subcode() uint8 { return uint8(s) }
