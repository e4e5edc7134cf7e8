package vb2

// FwPhase3 loads and verifies the chosen slot's vblock (keyblock +
// preamble), applies the rollback/roll-forward rules against
// secdata-firmware, and pins the resulting data key + preamble in the
// workbuf for the host to hash the firmware body against afterward
// (spec.md §4.4, state PREAMBLE_LOADED).
//
// vblock is the raw bytes the host read from the chosen slot via
// ReadResource(FW_VBLOCK, ...); the keyblock occupies its front and the
// preamble immediately follows, as on disk.
func FwPhase3(ctx *Context, wb *Workbuf, gbb GBB, vblock []byte) Status {
	rootKey, status := UnpackKey(gbb.RootKeyBytes())
	if status != Success {
		return status
	}
	rootKeyBuf, rootOffset, status := wb.Alloc(uint64(len(gbb.RootKeyBytes())))
	if status != Success {
		return status
	}
	copy(rootKeyBuf, gbb.RootKeyBytes())
	ctx.SD.RootKey = WorkbufView{Offset: rootOffset, Length: uint64(len(rootKeyBuf))}

	// VerifyKeyblock's digest is transient: it is allocated in a local
	// copy of the cursor, so the root key stays the most recent allocation
	// in wb and can be resized in place below.
	wbLocal := *wb
	kb, status := VerifyKeyblock(vblock, rootKey, &wbLocal)
	if status != Success {
		return status
	}

	rollbackOverride := gbb.HasFlag(GBBFlagDisableFWRollbackCheck)
	secdataVersions := ctx.SecdataFirmware().Versions

	if !rollbackOverride && uint32(kb.DataKey.KeyVersion) < uint32(secdataVersions.KeyVersion()) {
		return StatusFWKeyblockVersionRollback
	}

	// The data key buffer reuses the root key's workbuf region in place:
	// the root key has done its one job (certifying this data key) and
	// is never consulted again this boot. This is the "in-place buffer
	// reuse across phases" space optimization design note §9 calls out
	// — we move the bytes explicitly and invalidate the old view rather
	// than modeling two overlapping live objects.
	dataKeyWire := MarshalKey(kb.DataKey)
	reused, status := wb.Realloc(rootOffset, uint64(len(rootKeyBuf)), uint64(len(dataKeyWire)))
	if status != Success {
		return status
	}
	copy(reused, dataKeyWire)
	ctx.SD.RootKey = WorkbufView{} // invalidated; root key region now holds the data key
	ctx.SD.DataKey = WorkbufView{Offset: rootOffset, Length: uint64(len(dataKeyWire))}

	preambleBuf := vblock[kb.KeyblockSize:]
	preamble, status := VerifyFwPreamble(preambleBuf, kb.DataKey, wb)
	if status != Success {
		return status
	}

	preView, preOffset, status := wb.Alloc(uint64(len(preamble.Raw)))
	if status != Success {
		return status
	}
	copy(preView, preamble.Raw)
	ctx.SD.Preamble = WorkbufView{Offset: preOffset, Length: uint64(len(preView))}

	if preamble.KernelSubkey != nil {
		subkeyWire := MarshalKey(*preamble.KernelSubkey)
		subkeyBuf, subkeyOffset, status := wb.Alloc(uint64(len(subkeyWire)))
		if status != Success {
			return status
		}
		copy(subkeyBuf, subkeyWire)
		ctx.SD.KernelSubkey = WorkbufView{Offset: subkeyOffset, Length: uint64(len(subkeyBuf))}
	}

	composite := MakeCompositeVersion(uint16(kb.DataKey.KeyVersion), uint16(preamble.BodyVersion))
	if !rollbackOverride && uint32(composite) < uint32(secdataVersions) {
		return StatusFWPreambleVersionRollback
	}

	if uint32(composite) > uint32(secdataVersions) &&
		ctx.SD.PrevFwResult == ResultSuccess && ctx.SD.PrevFwSlot == ctx.SD.FwSlot {
		ctx.SetSecdataFirmwareVersions(composite)
	}

	ctx.SD.FwVersion = composite
	return wb.SetUsed(ctx, wb.Used())
}

// ApiFail implements vb2api_fail (spec.md §4.4): the failure policy for
// any verification failure after a slot has been chosen. It never itself
// decides to reboot or shut down — it only updates nvdata/shared-data so
// the dispatcher's end-of-boot commit persists the right intent.
func ApiFail(ctx *Context, reason RecoveryReason) {
	if !ctx.SD.Has(StatusChoseSlot) {
		ctx.SD.RequestRecovery(reason)
		return
	}

	// ctx.SD.PrevFwSlot/PrevFwResult were captured by FwPhase2 before it
	// overwrote nvdata with this boot's (optimistic) TRYING state, so
	// they still describe the boot before this one.
	otherSlotAlreadyFailed := ctx.SD.PrevFwResult == ResultFailure && ctx.SD.PrevFwSlot == ctx.SD.FwSlot.Other()

	nv := ctx.NVData()
	nv.PrevResult = ResultFailure
	nv.TryCount = 0
	nv.TryNext = ctx.SD.FwSlot.Other()
	ctx.SetNVData(nv)

	if otherSlotAlreadyFailed {
		ctx.SD.RequestRecovery(reason)
	}
}
