package vb2

// FwPhase1 initializes nvdata and secdata-firmware and arbitrates the
// recovery reason for this boot (spec.md §4.4, state RECOVERY_DECIDED).
// It is the first phase the host runs on every boot, recovery included, because recovery mode still needs nvdata/secdata available to
// decide *why* it is in recovery and to record that reason.
//
// secdataRaw may be nil if the host has no TPM-backed store yet (first
// boot from a wiped device); CreateSecdataFirmware is used in that case.
func FwPhase1(ctx *Context, nvRaw, secdataRaw []byte, gbb GBB) Status {
	if status := ctx.InitNVData(nvRaw); status != Success {
		return status
	}

	if secdataRaw == nil {
		ctx.CreateSecdataFirmware()
	} else if status := ctx.InitSecdataFirmware(secdataRaw); status != Success {
		ctx.Debugf("secdata-firmware init failed (%s), recreating", status)
		ctx.CreateSecdataFirmware()
	}

	arbitrateRecoveryReason(ctx, gbb)
	return Success
}

// arbitrateRecoveryReason decides whether this boot enters recovery mode
// and, if so, latches why (spec.md §7 write-once rule applies from here
// on: whatever gets set first during this phase is what sticks; a later
// RequestRecovery this boot does not replace it).
func arbitrateRecoveryReason(ctx *Context, gbb GBB) {
	nv := ctx.NVData()

	switch {
	case ctx.HasFlag(FlagForceRecoveryMode):
		ctx.SetFlag(FlagRecoveryMode)
		ctx.SD.RequestRecovery(RecoveryROManual)
	case nv.RecoveryRequest != RecoveryNotRequested:
		ctx.SetFlag(FlagRecoveryMode)
		ctx.SD.RequestRecovery(nv.RecoveryRequest)
	}

	if gbb.HasFlag(GBBFlagForceDevSwitchOn) {
		ctx.SetFlag(FlagDeveloperMode)
	}
}
