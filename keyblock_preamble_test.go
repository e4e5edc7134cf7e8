package vb2

import "testing"

func TestBuildAndVerifyKeyblockRoundTrip(t *testing.T) {
	parentPriv, parentPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, dataPub := mustKeyPair(t, AlgRSA1024SHA256)

	kbBytes, status := BuildKeyblock(dataPub, parentPriv, parentPub.Algorithm, 0x42)
	if status != Success {
		t.Fatalf("BuildKeyblock: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	kb, status := VerifyKeyblock(kbBytes, parentPub, wb)
	if status != Success {
		t.Fatalf("VerifyKeyblock: %s", status)
	}
	if kb.Flags != 0x42 {
		t.Fatalf("Flags = %#x, want 0x42", kb.Flags)
	}
	if kb.DataKey.RSA.N.Cmp(dataPub.RSA.N) != 0 {
		t.Fatal("recovered data key modulus does not match")
	}
}

func TestVerifyKeyblockRejectsTamperedSignature(t *testing.T) {
	parentPriv, parentPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, dataPub := mustKeyPair(t, AlgRSA1024SHA256)

	kbBytes, status := BuildKeyblock(dataPub, parentPriv, parentPub.Algorithm, 0)
	if status != Success {
		t.Fatalf("BuildKeyblock: %s", status)
	}
	kbBytes[len(kbBytes)-1] ^= 0xff // corrupt a byte inside the signature

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	if _, status := VerifyKeyblock(kbBytes, parentPub, FromCtx(ctx)); status != StatusKeyblockSigInvalid {
		t.Fatalf("VerifyKeyblock(tampered): got %s, want StatusKeyblockSigInvalid", status)
	}
}

func TestBuildAndVerifyFwPreambleRoundTrip(t *testing.T) {
	dataPriv, dataPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, subkeyPub := mustKeyPair(t, AlgRSA1024SHA256)
	body := []byte("this is a firmware body")

	preBytes, status := BuildPreamble(7, body, dataPriv, dataPub.Algorithm, &subkeyPub, 0x3)
	if status != Success {
		t.Fatalf("BuildPreamble: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	preamble, status := VerifyFwPreamble(preBytes, dataPub, wb)
	if status != Success {
		t.Fatalf("VerifyFwPreamble: %s", status)
	}
	if preamble.BodyVersion != 7 {
		t.Fatalf("BodyVersion = %d, want 7", preamble.BodyVersion)
	}
	if preamble.Flags != 0x3 {
		t.Fatalf("Flags = %#x, want 0x3", preamble.Flags)
	}
	if preamble.KernelSubkey == nil {
		t.Fatal("expected a kernel subkey on a firmware preamble")
	}
	if preamble.KernelSubkey.RSA.N.Cmp(subkeyPub.RSA.N) != 0 {
		t.Fatal("recovered kernel subkey modulus does not match")
	}
	if preamble.BodySizeFromSignature() != uint64(len(body)) {
		t.Fatalf("BodySizeFromSignature() = %d, want %d", preamble.BodySizeFromSignature(), len(body))
	}
}

func TestVerifyFwPreambleDestroysSignatureOnUse(t *testing.T) {
	dataPriv, dataPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, subkeyPub := mustKeyPair(t, AlgRSA1024SHA256)
	body := []byte("firmware body")

	preBytes, status := BuildPreamble(1, body, dataPriv, dataPub.Algorithm, &subkeyPub, 0)
	if status != Success {
		t.Fatalf("BuildPreamble: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)

	if _, status := VerifyFwPreamble(preBytes, dataPub, wb); status != Success {
		t.Fatalf("first VerifyFwPreamble: %s", status)
	}
	// The second authoritative verify must fail: preamble_signature's
	// bytes were destroyed in place by the first call (spec §8 invariant
	// 3). Re-reading fields must go through the non-destructive parser
	// instead, which HashFwBody exercises via ParseFwPreambleFields.
	if _, status := VerifyFwPreamble(preBytes, dataPub, wb); status == Success {
		t.Fatal("second VerifyFwPreamble unexpectedly succeeded; signature should have been destroyed")
	}

	preamble, status := ParseFwPreambleFields(preBytes)
	if status != Success {
		t.Fatalf("ParseFwPreambleFields after destructive verify: %s", status)
	}
	if preamble.BodyVersion != 1 {
		t.Fatalf("BodyVersion = %d, want 1", preamble.BodyVersion)
	}
}

func TestVerifyKernelPreambleHasNoSubkey(t *testing.T) {
	dataPriv, dataPub := mustKeyPair(t, AlgRSA1024SHA256)
	body := []byte("kernel body")

	preBytes, status := BuildPreamble(2, body, dataPriv, dataPub.Algorithm, nil, 0)
	if status != Success {
		t.Fatalf("BuildPreamble: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	preamble, status := VerifyKernelPreamble(preBytes, dataPub, FromCtx(ctx))
	if status != Success {
		t.Fatalf("VerifyKernelPreamble: %s", status)
	}
	if preamble.KernelSubkey != nil {
		t.Fatal("kernel preambles must not carry a kernel subkey")
	}
}
