package vb2

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
)

// DigestAlgorithm selects among the hash primitives spec.md §4.2 requires
// ("any subset selectable at build time"). Raw primitives themselves are
// out of scope (§1) — we call straight into the standard library's
// crypto/sha1, crypto/sha256, crypto/sha512.
type DigestAlgorithm int

const (
	DigestSHA1 DigestAlgorithm = iota
	DigestSHA256
	DigestSHA512
)

func (d DigestAlgorithm) size() int {
	switch d {
	case DigestSHA1:
		return sha1.Size
	case DigestSHA256:
		return sha256.Size
	case DigestSHA512:
		return sha512.Size
	default:
		return 0
	}
}

func (d DigestAlgorithm) cryptoHash() crypto.Hash {
	switch d {
	case DigestSHA1:
		return crypto.SHA1
	case DigestSHA256:
		return crypto.SHA256
	case DigestSHA512:
		return crypto.SHA512
	default:
		return 0
	}
}

// Digest is the hash-extend interface spec.md §4.2 names:
// digest_init/digest_extend/digest_finalize. It wraps hash.Hash so the
// verifier never has to special-case which algorithm it is extending.
type Digest struct {
	alg DigestAlgorithm
	h   hash.Hash
}

func DigestInit(alg DigestAlgorithm) (*Digest, Status) {
	var h hash.Hash
	switch alg {
	case DigestSHA1:
		h = sha1.New()
	case DigestSHA256:
		h = sha256.New()
	case DigestSHA512:
		h = sha512.New()
	default:
		return nil, StatusDigestUnsupportedAlgorithm
	}
	return &Digest{alg: alg, h: h}, Success
}

func (d *Digest) Extend(buf []byte) { d.h.Write(buf) }

// Finalize writes the digest into dst, which must be at least as large
// as the algorithm's digest size, and returns the number of bytes
// written.
func (d *Digest) Finalize(dst []byte) (int, Status) {
	sum := d.h.Sum(nil)
	if len(dst) < len(sum) {
		return 0, StatusDigestBufferTooSmall
	}
	return copy(dst, sum), Success
}

func HashBuffer(alg DigestAlgorithm, buf []byte) ([]byte, Status) {
	d, status := DigestInit(alg)
	if status != Success {
		return nil, status
	}
	d.Extend(buf)
	out := make([]byte, alg.size())
	if _, status := d.Finalize(out); status != Success {
		return nil, status
	}
	return out, Success
}

// VerifyDigest RSA-verifies signature against digest using key, then
// destroys signature in place. spec.md §4.2 policy: "the verifier
// destroys the signature buffer in place (each signature is checked at
// most once per boot)" — §8 invariant 3 requires this to be observable
// by the caller.
func VerifyDigest(key PublicKey, signature []byte, digest []byte) Status {
	alg, status := key.Algorithm.DigestAlgorithm()
	if status != Success {
		return status
	}
	err := rsa.VerifyPKCS1v15(key.RSA, alg.cryptoHash(), digest, signature)
	// Destroy the signature regardless of outcome: a signature is only
	// ever allowed one verification attempt per boot.
	for i := range signature {
		signature[i] ^= 0xff
	}
	if err != nil {
		return StatusRSAInvalidSignature
	}
	return Success
}

// VerifyDigestInWorkbuf allocates a transient digest buffer in wb, hashes
// buf into it with alg, and verifies signature against it. This is the
// pattern verify_keyblock and verify_fw_preamble both use: a scratch
// digest that is never pinned permanently (spec.md §4.1's "transient
// regions exist only for the duration of a single verification phase").
func VerifyDigestInWorkbuf(wb *Workbuf, key PublicKey, signature []byte, alg DigestAlgorithm, body []byte) Status {
	digestBuf, _, status := wb.Alloc(uint64(alg.size()))
	if status != Success {
		return status
	}
	sum, status := HashBuffer(alg, body)
	if status != Success {
		return status
	}
	copy(digestBuf, sum)
	return VerifyDigest(key, signature, digestBuf)
}
