package vb2

// KernelPhase3 finalizes the winning kernel candidate LoadKernelVblock and
// VerifyKernelData already accepted: it pins the preamble in the workbuf
// for the caller to read BodyVersion/body metadata from afterward, and
// applies the kernel roll-forward rule (spec.md §4.5, state
// KERNEL_VERSION_COMMITTED):
//
//	if this candidate's composite version exceeds secdata-kernel's stored
//	version, FlagAllowKernelRollForward is set, we are not in recovery
//	mode, and the keyblock was certified by the ordinary kernel subkey
//	(not the GBB recovery key, which never drives the monotonic counter
//	forward), secdata-kernel is bumped to match and marked dirty for the
//	next Commit.
func KernelPhase3(ctx *Context, wb *Workbuf, kb Keyblock, preamble Preamble) Status {
	preView, preOffset, status := wb.Alloc(uint64(len(preamble.Raw)))
	if status != Success {
		return status
	}
	copy(preView, preamble.Raw)
	ctx.SD.KernelPreamble = WorkbufView{Offset: preOffset, Length: uint64(len(preView))}

	composite := MakeCompositeVersion(uint16(kb.DataKey.KeyVersion), uint16(preamble.BodyVersion))
	ctx.SD.KernelVersion = composite

	if ctx.HasFlag(FlagAllowKernelRollForward) &&
		!ctx.HasFlag(FlagRecoveryMode) &&
		!ctx.SD.KernelKeyIsRecoveryKey &&
		uint32(composite) > uint32(ctx.SecdataKernel().Versions) {
		ctx.SetSecdataKernelVersions(composite)
	}

	return wb.SetUsed(ctx, wb.Used())
}
