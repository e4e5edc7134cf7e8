package vb2

import "testing"

func TestNVDataSerializeRoundTrip(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	if status := ctx.InitNVData(nil); status != Success {
		t.Fatalf("InitNVData(nil): %s", status)
	}

	nv := ctx.NVData()
	nv.TryCount = 3
	nv.TryNext = SlotB
	nv.RecoveryRequest = RecoveryROManual
	nv.DisplayRequest = true
	nv.TryRoSync = true
	ctx.SetNVData(nv)

	raw := ctx.NVData().serialize()
	roundTripped, status := parseNVData(raw)
	if status != Success {
		t.Fatalf("parseNVData: %s", status)
	}
	if roundTripped.TryCount != 3 || roundTripped.TryNext != SlotB ||
		roundTripped.RecoveryRequest != RecoveryROManual ||
		!roundTripped.DisplayRequest || !roundTripped.TryRoSync {
		t.Fatalf("round trip mismatch: %+v", roundTripped)
	}
}

func TestNVDataCorruptFallsBackToDefaults(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	corrupt := make([]byte, nvdataSize)
	corrupt[nvdataSize-1] = 0xff // wrong CRC
	if status := ctx.InitNVData(corrupt); status != Success {
		t.Fatalf("InitNVData(corrupt): %s, want Success (defaults on corruption)", status)
	}
	if ctx.NVData().TryCount != 0 {
		t.Fatal("expected zeroed defaults after CRC failure")
	}
}

func TestSecdataFirmwareCreateAndBump(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	ctx.CreateSecdataFirmware()
	if ctx.SecdataFirmware().Versions != 0 {
		t.Fatal("freshly created secdata-firmware should start at version 0")
	}

	composite := MakeCompositeVersion(2, 5)
	ctx.SetSecdataFirmwareVersions(composite)
	if ctx.SecdataFirmware().Versions != composite {
		t.Fatalf("Versions = %v, want %v", ctx.SecdataFirmware().Versions, composite)
	}

	raw := ctx.SecdataFirmware().serialize()
	parsed, status := parseSecdataFirmware(raw)
	if status != Success {
		t.Fatalf("parseSecdataFirmware: %s", status)
	}
	if parsed.Versions != composite {
		t.Fatalf("round-tripped Versions = %v, want %v", parsed.Versions, composite)
	}
}

func TestSecdataKernelRoundTrip(t *testing.T) {
	ctx, status := NewContext(minWorkbufSize, 0)
	if status != Success {
		t.Fatalf("NewContext: %s", status)
	}
	ctx.CreateSecdataKernel()
	composite := MakeCompositeVersion(1, 9)
	ctx.SetSecdataKernelVersions(composite)

	parsed, status := parseSecdataKernel(ctx.SecdataKernel().serialize())
	if status != Success {
		t.Fatalf("parseSecdataKernel: %s", status)
	}
	if parsed.Versions != composite {
		t.Fatalf("Versions = %v, want %v", parsed.Versions, composite)
	}
}

func TestCompositeVersionOrdering(t *testing.T) {
	older := MakeCompositeVersion(1, 5)
	newer := MakeCompositeVersion(1, 6)
	if uint32(newer) <= uint32(older) {
		t.Fatalf("expected body-version bump to increase composite: %v <= %v", newer, older)
	}
	keyBump := MakeCompositeVersion(2, 0)
	if uint32(keyBump) <= uint32(newer) {
		t.Fatal("expected key-version bump to dominate body-version")
	}
}
