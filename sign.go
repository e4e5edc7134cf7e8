package vb2

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
)

// GenerateKey creates a fresh RSA keypair sized for alg and wraps its
// public half as a vb2 PublicKey, for building signed test fixtures and
// for cmd/vb2tool's genkey devtool. Production key material is never
// generated this way on a real device — this exists purely so this
// module's own tests and fixtures don't depend on externally-supplied
// key files.
func GenerateKey(alg SigAlgorithm, keyVersion uint64) (*rsa.PrivateKey, PublicKey, Status) {
	info, ok := sigAlgorithms[alg]
	if !ok {
		return nil, PublicKey{}, StatusUnpackKeyAlgorithm
	}
	priv, err := rsa.GenerateKey(rand.Reader, info.bits)
	if err != nil {
		return nil, PublicKey{}, StatusRSAInvalidKey
	}
	// vboot packed keys are always F4; reject anything rand happened to
	// produce otherwise (rsa.GenerateKey always uses F4 itself, but the
	// check documents the invariant rather than trusting it silently).
	if priv.PublicKey.E != 65537 {
		return nil, PublicKey{}, StatusRSAInvalidKey
	}
	return priv, PublicKey{Algorithm: alg, KeyVersion: keyVersion, RSA: &priv.PublicKey}, Success
}

// sign produces a raw PKCS#1v1.5 signature of body under priv using the
// digest algorithm alg implies, the inverse of VerifyDigest. Unlike
// VerifyDigest it never destroys anything — signing produces a fresh
// signature, it doesn't consume one.
func sign(priv *rsa.PrivateKey, alg SigAlgorithm, body []byte) ([]byte, Status) {
	digestAlg, status := alg.DigestAlgorithm()
	if status != Success {
		return nil, status
	}
	digest, status := HashBuffer(digestAlg, body)
	if status != Success {
		return nil, status
	}
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, digestAlg.cryptoHash(), digest)
	if err != nil {
		return nil, StatusRSAInvalidSignature
	}
	return sig, Success
}

// BuildKeyblock assembles and signs a keyblock certifying dataKey with
// parentPriv/parentAlg (spec.md §6's keyblock layout), the write side of
// VerifyKeyblock.
//
// Layout, matching what VerifyKeyblock expects: fixed header, the data
// key, keyblock_flags (8 bytes, deliberately outside the signed range —
// VerifyKeyblock never checks them against the signature, matching the
// on-disk format this is modeled on), then keyblock_signature's own
// signature bytes last.
func BuildKeyblock(dataKey PublicKey, parentPriv *rsa.PrivateKey, parentAlg SigAlgorithm, flags uint64) ([]byte, Status) {
	dataKeyWire := MarshalKey(dataKey)
	hdrSize := binary.Size(keyblockHeaderWire{})
	signedLen := hdrSize + len(dataKeyWire)
	flagsOffset := signedLen

	sigSize, status := packedSignatureSize(parentAlg)
	if status != Success {
		return nil, status
	}
	sigOffset := flagsOffset + 8
	total := sigOffset + int(sigSize)

	buf := make([]byte, total)
	copy(buf[0:8], keyblockMagicWant)
	binary.LittleEndian.PutUint32(buf[8:12], 2)                  // header_version_major
	binary.LittleEndian.PutUint32(buf[12:16], 2)                 // header_version_minor
	binary.LittleEndian.PutUint64(buf[16:24], uint64(total))     // keyblock_size
	binary.LittleEndian.PutUint64(buf[24:32], uint64(sigOffset)) // keyblock_signature.sig_offset
	binary.LittleEndian.PutUint64(buf[32:40], uint64(sigSize))   // keyblock_signature.sig_size
	binary.LittleEndian.PutUint64(buf[40:48], uint64(signedLen)) // keyblock_signature.data_size
	copy(buf[hdrSize:hdrSize+len(dataKeyWire)], dataKeyWire)
	binary.LittleEndian.PutUint64(buf[flagsOffset:flagsOffset+8], flags)

	sig, status := sign(parentPriv, parentAlg, buf[:signedLen])
	if status != Success {
		return nil, status
	}
	copy(buf[sigOffset:], sig)
	return buf, Success
}

func packedSignatureSize(alg SigAlgorithm) (uint64, Status) {
	info, ok := sigAlgorithms[alg]
	if !ok {
		return 0, StatusUnpackKeyAlgorithm
	}
	return uint64(info.bits / 8), Success
}

// BuildPreamble assembles and signs a preamble over body using dataPriv
// (spec.md §6's preamble layout), the write side of VerifyFwPreamble /
// VerifyKernelPreamble. kernelSubkey is only embedded when non-nil
// (firmware preambles carry one; kernel preambles do not).
//
// Layout, matching what parsePreamble/verifyPreamble expect: fixed header,
// optional kernel subkey, flags, body_signature's own signature bytes (so
// they fall within preamble_signature's signed range and can't be swapped
// without invalidating it), then preamble_signature's own signature bytes
// last (outside the range it signs, as any trailing signature must be).
func BuildPreamble(bodyVersion uint32, body []byte, dataPriv *rsa.PrivateKey, dataAlg SigAlgorithm, kernelSubkey *PublicKey, flags uint32) ([]byte, Status) {
	bodySig, status := sign(dataPriv, dataAlg, body)
	if status != Success {
		return nil, status
	}

	hdrSize := binary.Size(preambleHeaderWire{})
	cursor := hdrSize
	var subkeyWire []byte
	if kernelSubkey != nil {
		subkeyWire = MarshalKey(*kernelSubkey)
		cursor += len(subkeyWire)
	}
	flagsOffset := cursor
	bodySigOffset := flagsOffset + 4
	signedLen := bodySigOffset + len(bodySig)
	preSigSize, status := packedSignatureSize(dataAlg)
	if status != Success {
		return nil, status
	}
	total := signedLen + int(preSigSize)

	buf := make([]byte, total)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(total))           // preamble_size
	binary.LittleEndian.PutUint64(buf[8:16], uint64(signedLen))      // preamble_signature.sig_offset
	binary.LittleEndian.PutUint64(buf[16:24], uint64(preSigSize))    // preamble_signature.sig_size
	binary.LittleEndian.PutUint64(buf[24:32], uint64(signedLen))     // preamble_signature.data_size
	binary.LittleEndian.PutUint32(buf[32:36], 2)                     // header_version_major
	binary.LittleEndian.PutUint32(buf[36:40], 2)                     // header_version_minor
	binary.LittleEndian.PutUint32(buf[40:44], bodyVersion)           // body_version
	binary.LittleEndian.PutUint64(buf[44:52], uint64(bodySigOffset)) // body_signature.sig_offset
	binary.LittleEndian.PutUint64(buf[52:60], uint64(len(bodySig)))  // body_signature.sig_size
	binary.LittleEndian.PutUint64(buf[60:68], uint64(len(body)))     // body_signature.data_size
	if subkeyWire != nil {
		copy(buf[hdrSize:hdrSize+len(subkeyWire)], subkeyWire)
	}
	binary.LittleEndian.PutUint32(buf[flagsOffset:flagsOffset+4], flags)
	copy(buf[bodySigOffset:bodySigOffset+len(bodySig)], bodySig)

	preSig, status := sign(dataPriv, dataAlg, buf[:signedLen])
	if status != Success {
		return nil, status
	}
	copy(buf[signedLen:], preSig)

	return buf, Success
}
