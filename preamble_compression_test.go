package vb2

import (
	"bytes"
	"testing"

	"vb2core/codec"
)

// TestVerifyKernelDataDecompressesBody builds a kernel preamble whose
// flags tag the body as LZ4-compressed, the way a host ships a smaller
// kernel blob on disk, and checks VerifyKernelData transparently
// decompresses before the signature check.
func TestVerifyKernelDataDecompressesBody(t *testing.T) {
	priv, pub := mustKeyPair(t, AlgRSA1024SHA256)
	plain := bytes.Repeat([]byte("kernel body payload "), 32)

	preambleBuf, status := BuildPreamble(1, plain, priv, pub.Algorithm, nil, uint32(codec.LZ4))
	if status != Success {
		t.Fatalf("BuildPreamble: %s", status)
	}
	preamble, status := ParseKernelPreambleFields(preambleBuf)
	if status != Success {
		t.Fatalf("ParseKernelPreambleFields: %s", status)
	}
	if preamble.CompressionFormat() != codec.LZ4 {
		t.Fatalf("CompressionFormat() = %v, want LZ4", preamble.CompressionFormat())
	}

	stored, err := codec.Encode(codec.LZ4, plain)
	if err != nil {
		t.Fatalf("codec.Encode: %v", err)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	if status := VerifyKernelData(FromCtx(ctx), pub, preamble, stored); status != Success {
		t.Fatalf("VerifyKernelData(compressed body): %s", status)
	}
}

// TestDecompressBodyUncompressedIgnoresFlags checks the zero-flags (no
// compression tag) path passes a plain firmware body through unchanged —
// the common case every other firmware test in this package already
// relies on, asserted explicitly here so a regression in DecompressBody's
// "Unknown means pass through" branch gets caught directly.
func TestDecompressBodyUncompressedIgnoresFlags(t *testing.T) {
	priv, pub := mustKeyPair(t, AlgRSA1024SHA256)
	_, subkeyPub := mustKeyPair(t, AlgRSA1024SHA256)
	body := []byte("plain firmware body, never compressed")

	preambleBuf, status := BuildPreamble(1, body, priv, pub.Algorithm, &subkeyPub, 0)
	if status != Success {
		t.Fatalf("BuildPreamble: %s", status)
	}
	preamble, status := ParseFwPreambleFields(preambleBuf)
	if status != Success {
		t.Fatalf("ParseFwPreambleFields: %s", status)
	}
	if preamble.CompressionFormat() != codec.Unknown {
		t.Fatalf("CompressionFormat() = %v, want Unknown", preamble.CompressionFormat())
	}
	got, status := preamble.DecompressBody(body)
	if status != Success {
		t.Fatalf("DecompressBody: %s", status)
	}
	if !bytes.Equal(got, body) {
		t.Fatal("DecompressBody altered an uncompressed body")
	}
}

// TestVerifyKernelDataRejectsCorruptCompressedBody checks a body that
// cannot be decompressed under the preamble's tag fails closed rather
// than falling through to a signature check against garbage.
func TestVerifyKernelDataRejectsCorruptCompressedBody(t *testing.T) {
	priv, pub := mustKeyPair(t, AlgRSA1024SHA256)
	plain := []byte("kernel body")

	preambleBuf, status := BuildPreamble(1, plain, priv, pub.Algorithm, nil, uint32(codec.XZ))
	if status != Success {
		t.Fatalf("BuildPreamble: %s", status)
	}
	preamble, status := ParseKernelPreambleFields(preambleBuf)
	if status != Success {
		t.Fatalf("ParseKernelPreambleFields: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	if status := VerifyKernelData(FromCtx(ctx), pub, preamble, []byte("not actually xz-compressed")); status != StatusPreambleBodyDecompress {
		t.Fatalf("VerifyKernelData(corrupt xz body): got %s, want StatusPreambleBodyDecompress", status)
	}
}
