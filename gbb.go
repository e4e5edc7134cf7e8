package vb2

import (
	"bytes"
	"encoding/binary"
)

// gbbSignatureScramble is xor'd with the on-disk GBB magic; this mirrors
// the original source's obfuscation of the literal string "$GBB" and is
// kept bit-for-bit so existing factory-programmed images still parse.
var gbbSignatureScramble = [4]byte{0x7e, 0x51, 0x51, 0x0e}

const gbbMagicWant = "$GBB"

const (
	gbbExpectedMajor = 1
	gbbExpectedMinor = 1
)

// GBBFlag are the factory-set policy overrides carried in GBBHeader.Flags.
type GBBFlag uint32

const (
	GBBFlagDevScreenShortDelay GBBFlag = 1 << iota
	GBBFlagLoadOptionROM
	GBBFlagEnableAltFW
	GBBFlagForceDevSwitchOn
	GBBFlagForceDevBootUSB
	GBBFlagDisableFWRollbackCheck
	GBBFlagEnterTriggersTonorm
	GBBFlagForceDevBootLegacy
	GBBFlagFAFTBoot
	GBBFlagEnableSerial
	GBBFlagDisableECSoftwareSync
	GBBFlagDefaultDevBootLegacy
	GBBFlagDisableLidShutdown
	GBBFlagForceDevBootFastbootFullCap
	GBBFlagEnableDevForceBootAltFW
)

// gbbOffsetSize is the self-relative (offset, size) pair format used five
// times in the GBB header (hwid, two bitmaps, root key, recovery key).
type gbbOffsetSize struct {
	Offset uint32
	Size   uint32
}

// GBBHeaderWire is the bit-exact on-disk layout from spec.md §6.
type GBBHeaderWire struct {
	Signature    [4]byte
	MajorVersion uint16
	MinorVersion uint16
	HeaderSize   uint32
	Flags        uint32
	HWID         gbbOffsetSize
	RootKey      gbbOffsetSize
	BmpFV        gbbOffsetSize
	BmpBlock     gbbOffsetSize
	RecoveryKey  gbbOffsetSize
}

// GBB is the parsed, bounds-validated view over a raw GBB buffer. Unlike
// GBBHeaderWire its RootKey/RecoveryKey fields are already-sliced byte
// views, never offsets a caller has to re-validate.
type GBB struct {
	MajorVersion uint16
	MinorVersion uint16
	Flags        GBBFlag

	rootKeyBuf     []byte
	recoveryKeyBuf []byte
}

func (g GBB) HasFlag(f GBBFlag) bool { return g.Flags&f != 0 }

// ParseGBB validates the header and bounds-checks every offset/size pair
// against buf before returning. It never trusts an offset it hasn't
// checked, matching the "bounds-checked before trust" discipline spec.md
// §4.2 requires of unpack_key.
func ParseGBB(buf []byte) (GBB, Status) {
	var hdr GBBHeaderWire
	if len(buf) < binary.Size(hdr) {
		return GBB{}, StatusGBBTooSmall
	}
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return GBB{}, StatusGBBTooSmall
	}

	var scrambled [4]byte
	for i := range scrambled {
		scrambled[i] = hdr.Signature[i] ^ gbbSignatureScramble[i]
	}
	if string(scrambled[:]) != gbbMagicWant {
		return GBB{}, StatusGBBMagic
	}
	if hdr.MajorVersion != gbbExpectedMajor || hdr.MinorVersion < gbbExpectedMinor {
		return GBB{}, StatusGBBVersion
	}
	if uint64(hdr.HeaderSize) > uint64(len(buf)) {
		return GBB{}, StatusGBBTooSmall
	}

	rootKey, status := sliceOffsetSize(buf, hdr.RootKey.Offset, hdr.RootKey.Size)
	if status != Success {
		return GBB{}, status
	}
	recoveryKey, status := sliceOffsetSize(buf, hdr.RecoveryKey.Offset, hdr.RecoveryKey.Size)
	if status != Success {
		return GBB{}, status
	}

	return GBB{
		MajorVersion:   hdr.MajorVersion,
		MinorVersion:   hdr.MinorVersion,
		Flags:          GBBFlag(hdr.Flags),
		rootKeyBuf:     rootKey,
		recoveryKeyBuf: recoveryKey,
	}, Success
}

func (g GBB) RootKeyBytes() []byte     { return g.rootKeyBuf }
func (g GBB) RecoveryKeyBytes() []byte { return g.recoveryKeyBuf }

// sliceOffsetSize bounds-checks offset+size against buf before slicing,
// the same guard unpack_key applies to every packed key (spec.md §4.2).
func sliceOffsetSize(buf []byte, offset, size uint32) ([]byte, Status) {
	end := uint64(offset) + uint64(size)
	if end < uint64(offset) || end > uint64(len(buf)) {
		return nil, StatusGBBInvalidOffset
	}
	return buf[offset:end], Success
}
