package vb2

// LoadKernelVblock verifies one candidate kernel partition's vblock
// (keyblock + preamble), the kernel-side analog of FwPhase3 (spec.md
// §4.5, state KERNEL_VBLOCK_VALID). vblock is the raw bytes the host read
// from the partition's vblock region; the keyblock occupies its front and
// the preamble immediately follows, as on disk.
//
// Unlike firmware, a rollback failure here is not fatal to the boot by
// itself: it is only returned as a Status, with no recovery reason
// requested, so a caller iterating candidate partitions (before handing
// the winner to KernelPhase3) can move on to the next one.
func LoadKernelVblock(ctx *Context, wb *Workbuf, vblock []byte) (Keyblock, Preamble, Status) {
	if !ctx.SD.Has(StatusKernelKeyValid) {
		return Keyblock{}, Preamble{}, StatusKeyblockDataKeySize
	}
	kernelKey, status := UnpackKey(ctx.SD.KernelKey.Bytes(ctx))
	if status != Success {
		return Keyblock{}, Preamble{}, status
	}

	kb, status := VerifyKeyblock(vblock, kernelKey, wb)
	if status != Success {
		return Keyblock{}, Preamble{}, status
	}

	// The recovery key is exempt from the rollback check: it isn't drawn
	// from the monotonic secdata-kernel series at all (spec.md §4.5).
	if !ctx.SD.KernelKeyIsRecoveryKey {
		if uint32(kb.DataKey.KeyVersion) < uint32(ctx.SecdataKernel().Versions.KeyVersion()) {
			return kb, Preamble{}, StatusKernelKeyblockVersionRollback
		}
	}

	preambleBuf := vblock[kb.KeyblockSize:]
	preamble, status := VerifyKernelPreamble(preambleBuf, kb.DataKey, wb)
	if status != Success {
		return kb, Preamble{}, status
	}

	composite := MakeCompositeVersion(uint16(kb.DataKey.KeyVersion), uint16(preamble.BodyVersion))
	if !ctx.SD.KernelKeyIsRecoveryKey && uint32(composite) < uint32(ctx.SecdataKernel().Versions) {
		return kb, preamble, StatusKernelPreambleVersionRollback
	}

	return kb, preamble, Success
}
