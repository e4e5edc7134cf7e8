package vb2

import (
	"bytes"
	"encoding/binary"

	"vb2core/codec"
)

// preambleHeaderWire is the fixed-size prefix common to both firmware and
// kernel preambles (spec.md §6): preamble_size, preamble_signature (over
// the preamble body), header_version, body_version, then the
// body_signature that covers the firmware/kernel body proper, then flags.
// Firmware preambles additionally carry a kernel subkey between
// body_signature and flags; kernel preambles do not.
type preambleHeaderWire struct {
	PreambleSize       uint64
	PreambleSignature  signatureWire
	HeaderVersionMajor uint32
	HeaderVersionMinor uint32
	BodyVersion        uint32
	BodySignature      signatureWire
}

// Preamble is the parsed, verified preamble shared by firmware and
// kernel vblocks.
type Preamble struct {
	BodyVersion   uint32
	BodySignature signatureWire
	KernelSubkey  *PublicKey // only present on firmware preambles
	Flags         uint32     // low byte is the body's codec.Format tag; see CompressionFormat
	Raw           []byte     // the full preamble buffer, for body-size bookkeeping
}

// parsePreamble unpacks the fixed header and optional embedded kernel
// subkey without touching preamble_signature. It is the half of
// verification that is safe to redo on an already-verified, already-
// signature-destroyed preamble buffer (HashFwBody / VerifyKernelData need
// BodySignature/BodyVersion again later in the boot but must never
// re-check preamble_signature, since its bytes were already destroyed
// (inverted in place) by the first, authoritative check in FwPhase3 / LoadKernelVblock).
func parsePreamble(buf []byte, hasKernelSubkey bool) (Preamble, signatureWire, []byte, Status) {
	hdrSize := binary.Size(preambleHeaderWire{})
	if len(buf) < hdrSize {
		return Preamble{}, signatureWire{}, nil, StatusPreambleSize
	}
	var hdr preambleHeaderWire
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return Preamble{}, signatureWire{}, nil, StatusPreambleSize
	}
	if hdr.PreambleSize > uint64(len(buf)) {
		return Preamble{}, signatureWire{}, nil, StatusPreambleSize
	}

	cursor := uint64(hdrSize)
	var kernelSubkey *PublicKey
	if hasKernelSubkey {
		key, status := UnpackKey(buf[cursor:])
		if status != Success {
			return Preamble{}, signatureWire{}, nil, status
		}
		keySize, status := packedKeySize(key.Algorithm)
		if status != Success {
			return Preamble{}, signatureWire{}, nil, status
		}
		cursor += keySize
		kernelSubkey = &key
	}

	flagsOffset := cursor
	var flags uint32
	if flagsOffset+4 <= hdr.PreambleSize {
		flags = binary.LittleEndian.Uint32(buf[flagsOffset : flagsOffset+4])
	}

	signedLen := hdr.PreambleSignature.DataSize
	if signedLen == 0 || signedLen > hdr.PreambleSize {
		return Preamble{}, signatureWire{}, nil, StatusPreambleSigSize
	}
	signedRegion := buf[:signedLen]

	return Preamble{
		BodyVersion:   hdr.BodyVersion,
		BodySignature: hdr.BodySignature,
		KernelSubkey:  kernelSubkey,
		Flags:         flags,
		Raw:           buf[:hdr.PreambleSize],
	}, hdr.PreambleSignature, signedRegion, Success
}

// verifyPreamble is the shared two-step pattern (bounds + signature) both
// verify_fw_preamble and the kernel preamble verifier use (spec.md §4.2,
// §4.5): parse the header, then verify preamble_signature over
// everything up to (but not including) the signature itself, using
// dataKey (unwrapped from the keyblock that precedes this preamble on
// disk). The signature bytes are destroyed in place as a side effect of
// VerifyDigestInWorkbuf (§4.2 policy, §8 invariant 3).
func verifyPreamble(buf []byte, dataKey PublicKey, wb *Workbuf, hasKernelSubkey bool) (Preamble, Status) {
	preamble, preSig, signedRegion, status := parsePreamble(buf, hasKernelSubkey)
	if status != Success {
		return Preamble{}, status
	}

	sigBuf, status := sliceSignature(buf, preSig)
	if status != Success {
		return Preamble{}, StatusPreambleSigSize
	}

	alg, status := dataKey.Algorithm.DigestAlgorithm()
	if status != Success {
		return Preamble{}, status
	}
	if status := VerifyDigestInWorkbuf(wb, dataKey, sigBuf, alg, signedRegion); status != Success {
		return Preamble{}, StatusPreambleSigInvalid
	}

	return preamble, Success
}

// VerifyFwPreamble verifies a firmware preamble, which embeds a kernel
// subkey the kernel verification state machine will later pin for
// kernel_phase1 (spec.md §4.4).
func VerifyFwPreamble(buf []byte, dataKey PublicKey, wb *Workbuf) (Preamble, Status) {
	return verifyPreamble(buf, dataKey, wb, true)
}

// VerifyKernelPreamble verifies a kernel preamble, which carries no
// embedded subkey (spec.md §4.5).
func VerifyKernelPreamble(buf []byte, dataKey PublicKey, wb *Workbuf) (Preamble, Status) {
	return verifyPreamble(buf, dataKey, wb, false)
}

// ParseFwPreambleFields re-reads BodyVersion/BodySignature/KernelSubkey
// from an already-verified firmware preamble buffer without re-checking
// preamble_signature. Callers that need those fields again after the
// authoritative verify (HashFwBody) must use this, not VerifyFwPreamble.
func ParseFwPreambleFields(buf []byte) (Preamble, Status) {
	preamble, _, _, status := parsePreamble(buf, true)
	return preamble, status
}

// ParseKernelPreambleFields is the kernel-preamble analog of
// ParseFwPreambleFields.
func ParseKernelPreambleFields(buf []byte) (Preamble, Status) {
	preamble, _, _, status := parsePreamble(buf, false)
	return preamble, status
}

// BodySizeFromSignature returns the data_size the body_signature
// declares, which VerifyKernelData / hash_body must match exactly
// against the actual body buffer length (spec.md §4.5).
func (p Preamble) BodySizeFromSignature() uint64 { return p.BodySignature.DataSize }

// CompressionFormat reports the codec.Format the signer recorded for this
// body, packed into the preamble's flags' low byte. A factory image that
// ships its body uncompressed leaves flags at zero, which is also
// codec.Unknown's value: DecompressBody treats that as "pass through".
func (p Preamble) CompressionFormat() codec.Format { return codec.Format(p.Flags & 0xff) }

// DecompressBody returns body_data's plaintext bytes, the step vboot
// historically inserted between loading a kernel/firmware body off disk
// and verifying it: preambles can carry a compression tag so the host
// ships a smaller compressed body and decompresses it before hashing
// (spec.md §4.2, §4.5). stored is passed through unchanged when the
// preamble's tag is codec.Unknown (the common uncompressed case).
func (p Preamble) DecompressBody(stored []byte) ([]byte, Status) {
	format := p.CompressionFormat()
	if format == codec.Unknown {
		return stored, Success
	}
	body, err := codec.Decode(stored, format)
	if err != nil {
		return nil, StatusPreambleBodyDecompress
	}
	return body, Success
}
