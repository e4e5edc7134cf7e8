package vb2

import "testing"

func TestParseGBBRoundTrip(t *testing.T) {
	_, rootPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, recoveryPub := mustKeyPair(t, AlgRSA1024SHA256)
	buf := buildGBB(MarshalKey(rootPub), MarshalKey(recoveryPub), uint32(GBBFlagForceDevSwitchOn))

	gbb, status := ParseGBB(buf)
	if status != Success {
		t.Fatalf("ParseGBB: %s", status)
	}
	if !gbb.HasFlag(GBBFlagForceDevSwitchOn) {
		t.Fatal("expected GBBFlagForceDevSwitchOn to survive round trip")
	}
	if gbb.HasFlag(GBBFlagDisableECSoftwareSync) {
		t.Fatal("unexpected flag set")
	}

	rootKey, status := UnpackKey(gbb.RootKeyBytes())
	if status != Success {
		t.Fatalf("UnpackKey(root): %s", status)
	}
	if rootKey.RSA.N.Cmp(rootPub.RSA.N) != 0 {
		t.Fatal("root key modulus did not round-trip")
	}
}

func TestParseGBBBadMagic(t *testing.T) {
	buf := buildGBB(make([]byte, 0), make([]byte, 0), 0)
	buf[0] ^= 0xff
	if _, status := ParseGBB(buf); status != StatusGBBMagic {
		t.Fatalf("ParseGBB with corrupted magic: got %s, want StatusGBBMagic", status)
	}
}

func TestParseGBBTooSmall(t *testing.T) {
	if _, status := ParseGBB(make([]byte, 4)); status != StatusGBBTooSmall {
		t.Fatalf("ParseGBB(4 bytes): got %s, want StatusGBBTooSmall", status)
	}
}
