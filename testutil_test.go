package vb2

import (
	"crypto/rsa"
	"encoding/binary"
	"testing"
)

// buildGBB assembles a minimal well-formed GBB buffer around the given
// root/recovery packed-key bytes, scrambled-magic and offset/size pairs
// included, for tests that need ParseGBB to succeed without a real
// factory-programmed image.
func buildGBB(rootKey, recoveryKey []byte, flags uint32) []byte {
	hdrSize := binary.Size(GBBHeaderWire{})
	rootOffset := uint32(hdrSize)
	recoveryOffset := rootOffset + uint32(len(rootKey))
	total := int(recoveryOffset) + len(recoveryKey)

	buf := make([]byte, total)
	var scrambled [4]byte
	for i, c := range []byte(gbbMagicWant) {
		scrambled[i] = c ^ gbbSignatureScramble[i]
	}
	copy(buf[0:4], scrambled[:])
	binary.LittleEndian.PutUint16(buf[4:6], gbbExpectedMajor)
	binary.LittleEndian.PutUint16(buf[6:8], gbbExpectedMinor)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(hdrSize))
	binary.LittleEndian.PutUint32(buf[12:16], flags)
	binary.LittleEndian.PutUint32(buf[16:20], 0) // hwid offset
	binary.LittleEndian.PutUint32(buf[20:24], 0) // hwid size
	binary.LittleEndian.PutUint32(buf[24:28], rootOffset)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(len(rootKey)))
	binary.LittleEndian.PutUint32(buf[32:36], 0) // bmpfv offset
	binary.LittleEndian.PutUint32(buf[36:40], 0) // bmpfv size
	binary.LittleEndian.PutUint32(buf[40:44], 0) // bmpblock offset
	binary.LittleEndian.PutUint32(buf[44:48], 0) // bmpblock size
	binary.LittleEndian.PutUint32(buf[48:52], recoveryOffset)
	binary.LittleEndian.PutUint32(buf[52:56], uint32(len(recoveryKey)))
	copy(buf[rootOffset:], rootKey)
	copy(buf[recoveryOffset:], recoveryKey)
	return buf
}

// mustKeyPair generates an RSA keypair of the given algorithm or fails
// the calling test immediately; every fixture builder in this package's
// tests needs fresh keys and none of them wants to handle GenerateKey
// failing (it only can on an unsupported algorithm or a crypto/rand
// error, neither of which a test run should ever hit).
func mustKeyPair(t *testing.T, alg SigAlgorithm) (*rsa.PrivateKey, PublicKey) {
	t.Helper()
	priv, pub, status := GenerateKey(alg, 1)
	if status != Success {
		t.Fatalf("GenerateKey(%v): %s", alg, status)
	}
	return priv, pub
}
