package vb2

import (
	"bytes"
	"crypto/rsa"
	"encoding/binary"
	"math/big"
)

// SigAlgorithm is the packed key's algorithm tag. The numbering matches
// the original vboot2 table: RSA key size in bits paired with the digest
// algorithm used for the signature over it.
type SigAlgorithm uint64

const (
	AlgRSA1024SHA1 SigAlgorithm = iota
	AlgRSA1024SHA256
	AlgRSA1024SHA512
	AlgRSA2048SHA1
	AlgRSA2048SHA256
	AlgRSA2048SHA512
	AlgRSA4096SHA1
	AlgRSA4096SHA256
	AlgRSA4096SHA512
	AlgRSA8192SHA1
	AlgRSA8192SHA256
	AlgRSA8192SHA512
	algCount
)

type algInfo struct {
	bits int
	alg  DigestAlgorithm
}

var sigAlgorithms = map[SigAlgorithm]algInfo{
	AlgRSA1024SHA1:   {1024, DigestSHA1},
	AlgRSA1024SHA256: {1024, DigestSHA256},
	AlgRSA1024SHA512: {1024, DigestSHA512},
	AlgRSA2048SHA1:   {2048, DigestSHA1},
	AlgRSA2048SHA256: {2048, DigestSHA256},
	AlgRSA2048SHA512: {2048, DigestSHA512},
	AlgRSA4096SHA1:   {4096, DigestSHA1},
	AlgRSA4096SHA256: {4096, DigestSHA256},
	AlgRSA4096SHA512: {4096, DigestSHA512},
	AlgRSA8192SHA1:   {8192, DigestSHA1},
	AlgRSA8192SHA256: {8192, DigestSHA256},
	AlgRSA8192SHA512: {8192, DigestSHA512},
}

func (a SigAlgorithm) DigestAlgorithm() (DigestAlgorithm, Status) {
	info, ok := sigAlgorithms[a]
	if !ok {
		return 0, StatusUnpackKeyAlgorithm
	}
	return info.alg, Success
}

// packedKeyWire is the self-relative on-disk layout from spec.md §6:
// key_offset/key_size/algorithm/key_version followed by raw key bytes at
// key_offset from the struct's own start.
type packedKeyWire struct {
	KeyOffset  uint64
	KeySize    uint64
	Algorithm  uint64
	KeyVersion uint64
}

// PublicKey is the parsed, trust-ready form of a packed key: an RSA
// public key plus the version/algorithm metadata rollback checks compare
// against. The original additionally precomputes a Montgomery n0inv and
// rr for its hand-rolled bignum modexp; Go's crypto/rsa does modular
// exponentiation via math/big itself; we decode the same modulus bytes
// math/big needs and skip the Montgomery precomputation as dead weight.
type PublicKey struct {
	Algorithm  SigAlgorithm
	KeyVersion uint64
	RSA        *rsa.PublicKey
}

// UnpackKey validates algorithm tag, bounds-checks key_offset+key_size
// against buffer_size, and decodes the RSA modulus (spec.md §4.2). The
// packed key's exponent is always the vboot-standard F4 (65537); only the
// modulus is carried on disk.
func UnpackKey(buf []byte) (PublicKey, Status) {
	if len(buf) < binary.Size(packedKeyWire{}) {
		return PublicKey{}, StatusUnpackKeySize
	}
	var hdr packedKeyWire
	if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &hdr); err != nil {
		return PublicKey{}, StatusUnpackKeySize
	}

	algInfo, ok := sigAlgorithms[SigAlgorithm(hdr.Algorithm)]
	if !ok {
		return PublicKey{}, StatusUnpackKeyAlgorithm
	}

	keyBytes, status := sliceOffsetSize(buf, uint32(hdr.KeyOffset), uint32(hdr.KeySize))
	if status != Success {
		return PublicKey{}, StatusUnpackKeyArraySize
	}
	wantBytes := algInfo.bits / 8
	if len(keyBytes) != wantBytes {
		return PublicKey{}, StatusUnpackKeyArraySize
	}

	modulus := new(big.Int).SetBytes(keyBytes)
	return PublicKey{
		Algorithm:  SigAlgorithm(hdr.Algorithm),
		KeyVersion: hdr.KeyVersion,
		RSA: &rsa.PublicKey{
			N: modulus,
			E: 65537,
		},
	}, Success
}

// MarshalKey re-encodes a PublicKey back into the packed-key wire form:
// key_offset/key_size/algorithm/key_version header immediately followed
// by the left-padded modulus bytes at key_offset from the struct's own
// start (spec.md §6). Used both when moving a verified key forward into
// a reused workbuf region (fw_phase3.go) and when building fixtures for
// signing (sign.go, cmd/vb2tool).
func MarshalKey(key PublicKey) []byte {
	info := sigAlgorithms[key.Algorithm]
	keyBytes := key.RSA.N.Bytes()
	// left-pad to the algorithm's declared modulus width; big.Int drops
	// leading zero bytes that the wire format still reserves space for.
	padded := make([]byte, info.bits/8)
	copy(padded[len(padded)-len(keyBytes):], keyBytes)

	hdrSize := binary.Size(packedKeyWire{})
	out := make([]byte, hdrSize+len(padded))
	binary.LittleEndian.PutUint64(out[0:8], uint64(hdrSize))
	binary.LittleEndian.PutUint64(out[8:16], uint64(len(padded)))
	binary.LittleEndian.PutUint64(out[16:24], uint64(key.Algorithm))
	binary.LittleEndian.PutUint64(out[24:32], key.KeyVersion)
	copy(out[hdrSize:], padded)
	return out
}

// packedKeySize reports how many bytes a packed key occupies on disk,
// header plus key material, for callers computing where the next
// structure begins.
func packedKeySize(alg SigAlgorithm) (uint64, Status) {
	info, ok := sigAlgorithms[alg]
	if !ok {
		return 0, StatusUnpackKeyAlgorithm
	}
	return uint64(binary.Size(packedKeyWire{})) + uint64(info.bits/8), Success
}
