package vb2

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestFirmwareAndKernelVerificationEndToEnd builds a complete, self-consistent firmware+
// kernel signing chain: a root key certifying a data key (the
// firmware keyblock), a firmware preamble over a body that embeds a
// kernel subkey, and a kernel keyblock+preamble+signed body certified by
// that subkey — the same chain a real factory-signed image carries.
func TestFirmwareAndKernelVerificationEndToEnd(t *testing.T) {
	rootPriv, rootPub := mustKeyPair(t, AlgRSA1024SHA256)
	fwDataPriv, fwDataPub := mustKeyPair(t, AlgRSA1024SHA256)
	kernelSubkeyPriv, kernelSubkeyPub := mustKeyPair(t, AlgRSA1024SHA256)
	kernelDataPriv, kernelDataPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, recoveryPub := mustKeyPair(t, AlgRSA1024SHA256)

	gbbBuf := buildGBB(MarshalKey(rootPub), MarshalKey(recoveryPub), 0)
	gbb, status := ParseGBB(gbbBuf)
	if status != Success {
		t.Fatalf("ParseGBB: %s", status)
	}

	fwBody := []byte("firmware body contents")
	fwKeyblock, status := BuildKeyblock(fwDataPub, rootPriv, rootPub.Algorithm, 0)
	if status != Success {
		t.Fatalf("BuildKeyblock(fw): %s", status)
	}
	fwPreamble, status := BuildPreamble(1, fwBody, fwDataPriv, fwDataPub.Algorithm, &kernelSubkeyPub, 0)
	if status != Success {
		t.Fatalf("BuildPreamble(fw): %s", status)
	}
	fwVblock := append(append([]byte{}, fwKeyblock...), fwPreamble...)

	kernelBody := []byte("kernel body contents, much bigger in real life")
	kernelKeyblock, status := BuildKeyblock(kernelDataPub, kernelSubkeyPriv, kernelSubkeyPub.Algorithm, 0)
	if status != Success {
		t.Fatalf("BuildKeyblock(kernel): %s", status)
	}
	kernelPreamble, status := BuildPreamble(3, kernelBody, kernelDataPriv, kernelDataPub.Algorithm, nil, 0)
	if status != Success {
		t.Fatalf("BuildPreamble(kernel): %s", status)
	}
	kernelVblock := append(append([]byte{}, kernelKeyblock...), kernelPreamble...)

	ctx, status := NewContext(minWorkbufSize, FlagAllowKernelRollForward)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	if status := FwPhase1(ctx, nil, nil, gbb); status != Success {
		t.Fatalf("FwPhase1: %s", status)
	}
	ctx.SD.FwSlot = FwPhase2(ctx)
	ctx.SD.Set(StatusChoseSlot)

	wb := FromCtx(ctx)
	if status := FwPhase3(ctx, wb, gbb, fwVblock); status != Success {
		t.Fatalf("FwPhase3: %s", status)
	}

	dataKey, status := UnpackKey(ctx.SD.DataKey.Bytes(ctx))
	if status != Success {
		t.Fatalf("UnpackKey(ctx.SD.DataKey): %s", status)
	}
	if status := HashFwBody(ctx, fwBody, dataKey); status != Success {
		t.Fatalf("HashFwBody: %s", status)
	}

	wb2 := FromCtx(ctx)
	if status := KernelPhase1(ctx, wb2, gbb, nil, nil); status != Success {
		t.Fatalf("KernelPhase1: %s", status)
	}
	if ctx.SD.KernelKeyIsRecoveryKey {
		t.Fatal("normal-mode boot should use the firmware preamble's kernel subkey, not the recovery key")
	}

	kb, preamble, status := LoadKernelVblock(ctx, wb2, kernelVblock)
	if status != Success {
		t.Fatalf("LoadKernelVblock: %s", status)
	}
	if status := VerifyKernelData(wb2, kb.DataKey, preamble, kernelBody); status != Success {
		t.Fatalf("VerifyKernelData: %s", status)
	}
	if status := KernelPhase3(ctx, wb2, kb, preamble); status != Success {
		t.Fatalf("KernelPhase3: %s", status)
	}

	wantComposite := MakeCompositeVersion(uint16(kb.DataKey.KeyVersion), 3)
	if ctx.SD.KernelVersion != wantComposite {
		t.Fatalf("KernelVersion = %v, want %v", ctx.SD.KernelVersion, wantComposite)
	}
	if ctx.SecdataKernel().Versions != wantComposite {
		t.Fatalf("roll-forward did not bump secdata-kernel: got %v, want %v", ctx.SecdataKernel().Versions, wantComposite)
	}
}

func TestFwPhase3RejectsKeyVersionRollback(t *testing.T) {
	rootPriv, rootPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, fwDataPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, recoveryPub := mustKeyPair(t, AlgRSA1024SHA256)

	gbb, status := ParseGBB(buildGBB(MarshalKey(rootPub), MarshalKey(recoveryPub), 0))
	if status != Success {
		t.Fatalf("ParseGBB: %s", status)
	}

	fwBody := []byte("body")
	fwKeyblock, status := BuildKeyblock(fwDataPub, rootPriv, rootPub.Algorithm, 0)
	if status != Success {
		t.Fatalf("BuildKeyblock: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	if status := FwPhase1(ctx, nil, nil, gbb); status != Success {
		t.Fatalf("FwPhase1: %s", status)
	}
	// Pretend secdata-firmware already recorded a newer key version than
	// this keyblock carries.
	ctx.SetSecdataFirmwareVersions(MakeCompositeVersion(5, 0))
	ctx.SD.Set(StatusChoseSlot)

	wb := FromCtx(ctx)
	fwVblock := append(append([]byte{}, fwKeyblock...), mustSignedFwPreamble(t, fwDataPub, fwBody)...)
	if status := FwPhase3(ctx, wb, gbb, fwVblock); status != StatusFWKeyblockVersionRollback {
		t.Fatalf("FwPhase3 with stale key version: got %s, want StatusFWKeyblockVersionRollback", status)
	}
}

// mustSignedFwPreamble is a tiny helper that signs body with a freshly
// generated key matching dataPub's algorithm, used only where the test
// cares about the keyblock check firing before the preamble signature
// would ever be checked.
func mustSignedFwPreamble(t *testing.T, dataPub PublicKey, body []byte) []byte {
	t.Helper()
	priv, pub, status := GenerateKey(dataPub.Algorithm, dataPub.KeyVersion)
	if status != Success {
		t.Fatalf("GenerateKey: %s", status)
	}
	preamble, status := BuildPreamble(1, body, priv, pub.Algorithm, nil, 0)
	if status != Success {
		t.Fatalf("BuildPreamble: %s", status)
	}
	return preamble
}

func TestKernelPhase1UsesRecoveryKeyInRecoveryMode(t *testing.T) {
	_, rootPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, recoveryPub := mustKeyPair(t, AlgRSA1024SHA256)
	gbb, status := ParseGBB(buildGBB(MarshalKey(rootPub), MarshalKey(recoveryPub), 0))
	if status != Success {
		t.Fatalf("ParseGBB: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, FlagRecoveryMode)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	wb := FromCtx(ctx)
	if status := KernelPhase1(ctx, wb, gbb, nil, nil); status != Success {
		t.Fatalf("KernelPhase1: %s", status)
	}
	if !ctx.SD.KernelKeyIsRecoveryKey {
		t.Fatal("recovery-mode boot must select the GBB recovery key")
	}

	key, status := UnpackKey(ctx.SD.KernelKey.Bytes(ctx))
	if status != Success {
		t.Fatalf("UnpackKey(ctx.SD.KernelKey): %s", status)
	}
	if key.RSA.N.Cmp(recoveryPub.RSA.N) != 0 {
		t.Fatal("pinned kernel key does not match the GBB recovery key")
	}
}

func TestKernelPhase1FailsWithoutFwSubkeyOutsideRecovery(t *testing.T) {
	_, rootPub := mustKeyPair(t, AlgRSA1024SHA256)
	_, recoveryPub := mustKeyPair(t, AlgRSA1024SHA256)
	gbb, status := ParseGBB(buildGBB(MarshalKey(rootPub), MarshalKey(recoveryPub), 0))
	if status != Success {
		t.Fatalf("ParseGBB: %s", status)
	}

	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	// No FwPhase3 ran, so ctx.SD.KernelSubkey was never pinned.
	if status := KernelPhase1(ctx, FromCtx(ctx), gbb, nil, nil); status != StatusKeyblockDataKeySize {
		t.Fatalf("KernelPhase1 without a pinned subkey: got %s, want StatusKeyblockDataKeySize", status)
	}
	if ctx.SD.RecoveryReason != RecoveryRWKernelKeyVerify {
		t.Fatalf("RecoveryReason = %v, want RecoveryRWKernelKeyVerify", ctx.SD.RecoveryReason)
	}
}

// TestFwPhase2TryCountTransition diffs the nvdata snapshot FwPhase2 reads
// against the one it writes back, the same kind of before/after
// state-machine assertion spec.md §4.4's try-count rules describe: a
// boot with tries remaining records the chosen slot in FwTried, flips
// PrevResult to trying and decrements TryCount, nothing else.
func TestFwPhase2TryCountTransition(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	if status := ctx.InitNVData(nil); status != Success {
		t.Fatalf("InitNVData: %s", status)
	}
	before := ctx.NVData()
	before.TryNext = SlotB
	before.TryCount = 2
	before.PrevResult = ResultSuccess
	ctx.SetNVData(before)
	before = ctx.NVData()

	FwPhase2(ctx)
	after := ctx.NVData()

	want := before
	want.FwTried = SlotB
	want.PrevResult = ResultTrying
	want.TryCount = 1
	if diff := cmp.Diff(want, after, cmp.AllowUnexported(NVData{})); diff != "" {
		t.Fatalf("nvdata after FwPhase2 mismatch (-want +got):\n%s", diff)
	}
}
