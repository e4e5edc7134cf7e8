package vb2

// EC is the embedded-controller collaborator the software-sync protocol
// drives (spec.md §6, §4.6). A single implementation is expected to
// cover both the RO and RW regions; which one a given call addresses is
// selected by the rw argument.
type EC interface {
	// RunningRW reports whether the EC is currently executing its RW
	// image. An error means the running image could not be determined.
	RunningRW() (bool, error)

	// HashImage returns the EC's current hash of the given region.
	HashImage(rw bool) ([]byte, error)
	// ExpectedHash returns the hash the AP firmware ships for that
	// region, for comparison against HashImage.
	ExpectedHash(rw bool) ([]byte, error)
	// UpdateImage reflashes the given region to match ExpectedHash.
	UpdateImage(rw bool) error

	// JumpToRW transfers execution to the RW image.
	JumpToRW() error
	// DisableJump permanently disables JumpToRW until the next EC reset,
	// called once software sync is done with a boot.
	DisableJump() error
	// Protect write-protects the given region for the rest of this boot.
	Protect(rw bool) error

	// VbootDone signals the EC that vboot has finished with it this
	// boot; must be called exactly once regardless of how many times
	// EcSync itself is invoked (spec.md §4.6 step 6).
	VbootDone() error

	// Trusted reports whether the running EC image is one vboot
	// considers trustworthy (e.g. it was not unlocked via a factory
	// debug path). An untrusted EC cannot be allowed to finish software
	// sync normally.
	Trusted() (bool, error)
}

// checkRegion compares an EC region's current hash against the expected
// one (spec.md §4.6 step 2/3's read-only half) without reflashing
// anything, so the caller can decide whether a reflash may proceed
// before committing to one.
func checkRegion(ec EC, rw bool) (matches bool, status Status, reason RecoveryReason) {
	current, err := ec.HashImage(rw)
	if err != nil {
		return false, StatusECUnknownImage, RecoveryECUnknownImage
	}
	expected, err := ec.ExpectedHash(rw)
	if err != nil {
		return false, StatusECExpectedHashMissing, RecoveryECExpectedHash
	}
	if len(current) != len(expected) {
		return false, StatusECHashSizeMismatch, RecoveryECHashSize
	}
	return bytesEqual(current, expected), Success, RecoveryNotRequested
}

// reflashRegion is the write half of the compare-and-reflash step
// (checkRegion is the compare half): update the region to the expected
// hash and re-check once. A failed UpdateImage or a persistent mismatch
// after reflashing maps to recovery reason EC_UPDATE rather than a
// transient EC_HASH_* failure.
func reflashRegion(ec EC, rw bool) (status Status, reason RecoveryReason) {
	expected, err := ec.ExpectedHash(rw)
	if err != nil {
		return StatusECExpectedHashMissing, RecoveryECExpectedHash
	}
	if err := ec.UpdateImage(rw); err != nil {
		return StatusECUpdateFailed, RecoveryECUpdate
	}
	current, err := ec.HashImage(rw)
	if err != nil {
		return StatusECUnknownImage, RecoveryECUnknownImage
	}
	if !bytesEqual(current, expected) {
		return StatusECUpdateFailed, RecoveryECUpdate
	}
	return Success, RecoveryNotRequested
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// EcSync runs the EC software-sync protocol (spec.md §4.6). It is a
// no-op, returning Success immediately, whenever FlagECSyncSupported is
// unset, we're already in recovery mode, GBBFlagDisableECSoftwareSync is
// set, or a prior call this boot already completed it
// (StatusECSyncComplete short-circuits every call after the first).
func EcSync(ctx *Context, ec EC, gbb GBB) Status {
	if !ctx.HasFlag(FlagECSyncSupported) || ctx.HasFlag(FlagRecoveryMode) ||
		gbb.HasFlag(GBBFlagDisableECSoftwareSync) {
		return Success
	}
	if ctx.SD.Has(StatusECSyncComplete) {
		return Success
	}

	inRW, err := ec.RunningRW()
	if err != nil {
		ctx.SD.RequestRecovery(RecoveryECUnknownImage)
		return StatusECUnknownImage
	}

	rwMatches, status, reason := checkRegion(ec, true)
	if status != Success {
		ctx.SD.RequestRecovery(reason)
		return StatusECRebootToROrequired
	}
	rwUpdated := false
	if !rwMatches {
		if !ctx.HasFlag(FlagDisplayInitialized) {
			// Slow-update policy: a reflash is needed but the display
			// isn't up yet to show a WAIT screen during it, so ask for a
			// reboot before touching the EC at all (spec.md §4.6 steps
			// 2-3 are deferred to the boot that follows).
			return StatusRebootRequired
		}
		if status, reason = reflashRegion(ec, true); status != Success {
			ctx.SD.RequestRecovery(reason)
			return StatusECRebootToROrequired
		}
		rwUpdated = true
	}
	if rwUpdated && inRW {
		// Already executing the image we just reflashed out from under
		// ourselves; the update only takes effect after a trip through
		// RO (spec.md §4.6 step 2).
		return StatusECRebootToROrequired
	}

	nv := ctx.NVData()
	if nv.TryRoSync {
		roMatches, status, reason := checkRegion(ec, false)
		if status != Success {
			ctx.SD.RequestRecovery(reason)
			return StatusECRebootToROrequired
		}
		if !roMatches {
			if !ctx.HasFlag(FlagDisplayInitialized) {
				return StatusRebootRequired
			}
			if status, reason := reflashRegion(ec, false); status != Success {
				ctx.SD.RequestRecovery(reason)
				return StatusECRebootToROrequired
			}
		}
	}

	if !inRW {
		if err := ec.JumpToRW(); err != nil {
			ctx.SD.RequestRecovery(RecoveryECJumpRW)
			return StatusECJumpFailed
		}
	}

	if err := ec.Protect(false); err != nil {
		ctx.SD.RequestRecovery(RecoveryECProtect)
		return StatusECProtectFailed
	}
	if err := ec.Protect(true); err != nil {
		ctx.SD.RequestRecovery(RecoveryECProtect)
		return StatusECProtectFailed
	}

	if !ctx.ecVbootDoneCalled {
		if err := ec.VbootDone(); err != nil {
			ctx.SD.RequestRecovery(RecoveryECJumpRW)
			return StatusECJumpFailed
		}
		ctx.ecVbootDoneCalled = true
	}

	if trusted, err := ec.Trusted(); err != nil || !trusted {
		ctx.SD.RequestRecovery(RecoveryECUnknownImage)
		return StatusECUnknownImage
	}
	if err := ec.DisableJump(); err != nil {
		ctx.SD.RequestRecovery(RecoveryECJumpRW)
		return StatusECJumpFailed
	}

	ctx.SD.Set(StatusECSyncComplete)
	return Success
}
