package vb2

// KernelPhase1 initializes secdata-kernel (and secdata-fwmp, if the host
// carries one) and selects the key that will certify the kernel keyblock
// (spec.md §4.5, state KERNEL_KEY_VALID):
//
//   - in recovery mode, the GBB recovery key — the firmware preamble
//     (and any kernel subkey it carried) is not trusted for kernel
//     verification once we're already recovering from a firmware problem;
//   - otherwise, the kernel subkey FwPhase3 pinned in the workbuf.
//
// secdataKernelRaw/secdataFWMPRaw follow the same nil-means-absent
// convention as FwPhase1's secdataRaw; secdataFWMPRaw is nil whenever
// FlagNoSecdataFWMP is set, since the store may legitimately not exist.
func KernelPhase1(ctx *Context, wb *Workbuf, gbb GBB, secdataKernelRaw, secdataFWMPRaw []byte) Status {
	if secdataKernelRaw == nil {
		ctx.CreateSecdataKernel()
	} else if status := ctx.InitSecdataKernel(secdataKernelRaw); status != Success {
		ctx.Debugf("secdata-kernel init failed (%s), recreating", status)
		ctx.CreateSecdataKernel()
	}

	if !ctx.HasFlag(FlagNoSecdataFWMP) {
		if status := ctx.InitSecdataFWMP(secdataFWMPRaw); status != Success {
			return status
		}
	}

	if ctx.HasFlag(FlagRecoveryMode) {
		recoveryKey, status := UnpackKey(gbb.RecoveryKeyBytes())
		if status != Success {
			ctx.SD.RequestRecovery(RecoveryROInvalidRWGBB)
			return status
		}
		keyWire := MarshalKey(recoveryKey)
		keyBuf, keyOffset, status := wb.Alloc(uint64(len(keyWire)))
		if status != Success {
			return status
		}
		copy(keyBuf, keyWire)
		ctx.SD.KernelKey = WorkbufView{Offset: keyOffset, Length: uint64(len(keyBuf))}
		ctx.SD.KernelKeyIsRecoveryKey = true
	} else {
		if ctx.SD.KernelSubkey.Length == 0 || !ctx.SD.KernelSubkey.Valid(ctx) {
			ctx.SD.RequestRecovery(RecoveryRWKernelKeyVerify)
			return StatusKeyblockDataKeySize
		}
		ctx.SD.KernelKey = ctx.SD.KernelSubkey
		ctx.SD.KernelKeyIsRecoveryKey = false
	}

	ctx.SD.Set(StatusKernelKeyValid)
	return wb.SetUsed(ctx, wb.Used())
}
