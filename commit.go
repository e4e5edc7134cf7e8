package vb2

// PersistentWriter is the host collaborator `commit_data` writes through
// (spec.md §6). Each method is only called when the corresponding store's
// dirty bit is set (spec.md §8 invariant 5).
type PersistentWriter interface {
	WriteNVData(raw []byte) error
	WriteSecdataFirmware(raw []byte) error
	WriteSecdataKernel(raw []byte) error
}

// Commit writes every store flagged dirty, in nvdata → secdata-firmware →
// secdata-kernel order, and returns the most serious error encountered
// (spec.md §4.7: "after the path returns, always attempt a final commit;
// retain the more serious error").
//
// Failure policy (§6, §7):
//   - nvdata write failure is unrecoverable: VB2_REC_OR_DIE, returned as
//     StatusNVDataWrite with no retry and no recovery-reason path (there
//     is nowhere left to record one).
//   - secdata write failure sets RecoveryRWTPMWError and retries the
//     commit once, unless we are already in recovery mode (retrying there
//     would loop forever trying to write the very reason recovery was
//     entered for).
func Commit(ctx *Context, w PersistentWriter) Status {
	status := commitOnce(ctx, w)
	if status == Success {
		return status
	}
	if status == StatusNVDataWrite {
		return status
	}
	if ctx.HasFlag(FlagRecoveryMode) {
		return status
	}
	ctx.SD.RequestRecovery(RecoveryRWTPMWError)
	return commitOnce(ctx, w)
}

// syncRecoveryRequest copies the current boot's latched recovery reason
// into nvdata.RecoveryRequest so it survives past this boot: SharedData
// is rebuilt from scratch every boot, so a reason that only ever lived in
// ctx.SD would be lost the instant this boot ends, and FwPhase1's
// arbitrateRecoveryReason would never see it on the next boot (spec.md
// §3/§4.4: recovery-request is the persistent half of this, SD's
// RecoveryReason only the in-boot latch). Mirrors vb2api_fail's
// vb2_set_recovery_request calling vb2_nv_set(RECOVERY_REQUEST, reason).
func syncRecoveryRequest(ctx *Context) {
	if ctx.SD.RecoveryReason == RecoveryNotRequested {
		return
	}
	nv := ctx.NVData()
	if nv.RecoveryRequest == ctx.SD.RecoveryReason {
		return
	}
	nv.RecoveryRequest = ctx.SD.RecoveryReason
	ctx.SetNVData(nv)
}

func commitOnce(ctx *Context, w PersistentWriter) Status {
	syncRecoveryRequest(ctx)
	if ctx.HasFlag(flagNVDataDirty) {
		if err := w.WriteNVData(ctx.nvdata.serialize()); err != nil {
			ctx.Debugf("nvdata write failed: %v", err)
			return StatusNVDataWrite
		}
		ctx.ClearFlag(flagNVDataDirty)
	}

	worstSecdata := Success
	if ctx.HasFlag(flagSecdataFWDirty) {
		if err := w.WriteSecdataFirmware(ctx.secdataFW.serialize()); err != nil {
			ctx.Debugf("secdata-firmware write failed: %v", err)
			worstSecdata = StatusSecdataFirmwareWrite
		} else {
			ctx.ClearFlag(flagSecdataFWDirty)
		}
	}
	if ctx.HasFlag(flagSecdataKernelDirty) {
		if err := w.WriteSecdataKernel(ctx.secdataKernel.serialize()); err != nil {
			ctx.Debugf("secdata-kernel write failed: %v", err)
			if worstSecdata == Success {
				worstSecdata = StatusSecdataKernelWrite
			}
		} else {
			ctx.ClearFlag(flagSecdataKernelDirty)
		}
	}
	return worstSecdata
}
