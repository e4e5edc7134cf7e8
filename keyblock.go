package vb2

import (
	"bytes"
	"encoding/binary"
)

const keyblockMagicWant = "CHROMEOS"

// signatureWire is the self-relative (sig_offset, sig_size, data_size)
// triple used by both the keyblock and the preamble to describe "this
// much of my own bytes, starting there, is what got signed".
type signatureWire struct {
	SigOffset uint64
	SigSize   uint64
	DataSize  uint64
}

func sliceSignature(buf []byte, sig signatureWire) ([]byte, Status) {
	return sliceOffsetSize(buf, uint32(sig.SigOffset), uint32(sig.SigSize))
}

// keyblockHeaderWire is the bit-exact layout from spec.md §6: magic,
// header_version_{major,minor}, keyblock_size, keyblock_signature, the
// embedded data key, then keyblock_flags.
type keyblockHeaderWire struct {
	Magic              [8]byte
	HeaderVersionMajor uint32
	HeaderVersionMinor uint32
	KeyblockSize       uint64
	KeyblockSignature  signatureWire
	// data_key (packedKeyWire) follows here on the wire; it is parsed
	// separately because its own size is variable (depends on its
	// algorithm), so it cannot be a fixed Go struct field.
}

// Keyblock is the parsed, verified keyblock: the data key it certifies,
// plus bookkeeping needed by the caller to find what follows it in the
// buffer (the preamble).
type Keyblock struct {
	DataKey      PublicKey
	Flags        uint64
	KeyblockSize uint64
}

// VerifyKeyblock checks the keyblock magic and size, bounds-checks the
// inner data key and signature, then verifies the signature over
// header+data-key using parentKey and a transient digest allocated in wb
// (spec.md §4.2). Rollback comparisons against secdata are the caller's
// responsibility (fw_phase3.go / kernel_vblock.go), not this function's —
// VerifyKeyblock only proves "this data key was legitimately certified by
// parentKey", nothing about version policy.
func VerifyKeyblock(buf []byte, parentKey PublicKey, wb *Workbuf) (Keyblock, Status) {
	hdrSize := binary.Size(keyblockHeaderWire{})
	if len(buf) < hdrSize {
		return Keyblock{}, StatusKeyblockSize
	}
	var hdr keyblockHeaderWire
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return Keyblock{}, StatusKeyblockSize
	}
	if string(hdr.Magic[:]) != keyblockMagicWant {
		return Keyblock{}, StatusKeyblockMagic
	}
	if hdr.KeyblockSize > uint64(len(buf)) {
		return Keyblock{}, StatusKeyblockSize
	}

	dataKeyBuf := buf[hdrSize:]
	dataKey, status := UnpackKey(dataKeyBuf)
	if status != Success {
		return Keyblock{}, StatusKeyblockDataKeySize
	}
	dataKeySize, status := packedKeySize(dataKey.Algorithm)
	if status != Success {
		return Keyblock{}, StatusKeyblockDataKeySize
	}
	if uint64(hdrSize)+dataKeySize > hdr.KeyblockSize {
		return Keyblock{}, StatusKeyblockDataKeySize
	}

	signedRegion := buf[:uint64(hdrSize)+dataKeySize]

	sigBuf, status := sliceSignature(buf, hdr.KeyblockSignature)
	if status != Success {
		return Keyblock{}, StatusKeyblockSigSize
	}
	if hdr.KeyblockSignature.DataSize != uint64(len(signedRegion)) {
		return Keyblock{}, StatusKeyblockSigSize
	}

	alg, status := parentKey.Algorithm.DigestAlgorithm()
	if status != Success {
		return Keyblock{}, status
	}
	if status := VerifyDigestInWorkbuf(wb, parentKey, sigBuf, alg, signedRegion); status != Success {
		return Keyblock{}, StatusKeyblockSigInvalid
	}

	var flags uint64
	flagsOffset := uint64(hdrSize) + dataKeySize
	if flagsOffset+8 <= uint64(len(buf)) {
		flags = binary.LittleEndian.Uint64(buf[flagsOffset : flagsOffset+8])
	}

	return Keyblock{
		DataKey:      dataKey,
		Flags:        flags,
		KeyblockSize: hdr.KeyblockSize,
	}, Success
}
