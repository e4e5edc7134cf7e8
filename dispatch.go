package vb2

// BootPath is the tagged variant selecting which of the four boot
// sequences a Dispatch call follows, chosen exactly once per boot
// (design note §9: "represent as a tagged variant ... selected in one
// place", replacing the original's scattered if/else chain).
type BootPath int

const (
	BootPathNormal BootPath = iota
	BootPathDeveloper
	BootPathRecovery
	BootPathDiagnostic
)

func (p BootPath) String() string {
	switch p {
	case BootPathNormal:
		return "normal"
	case BootPathDeveloper:
		return "developer"
	case BootPathRecovery:
		return "recovery"
	case BootPathDiagnostic:
		return "diagnostic"
	default:
		return "unknown"
	}
}

// AuxFwSync and BatteryCutoff are minimal host collaborators for the two
// pre-path-selection steps spec.md §4.7 names in prose but does not give
// their own [MODULE]: auxiliary firmware (e.g. a touchpad or biometric
// sensor's own updatable firmware) sync, and battery-cutoff handling on
// platforms that support shipping mode. Neither participates in the
// verification chain proper; both can only ever ask for a reboot/shutdown
// or defer.
type AuxFwSync interface {
	// Sync reflashes any auxiliary firmware that is out of date. A true
	// return means a reboot is required before continuing this boot.
	Sync(ctx *Context) (rebootRequired bool, status Status)
}

type BatteryCutoff interface {
	// Check acts on nvdata's battery-cutoff-request flag if set. A true
	// return means power is being cut; Dispatch then ends the boot with
	// StatusShutdownRequired.
	Check(ctx *Context) (shutdownRequired bool, status Status)
}

// BootPathRunner runs exactly one of the four boot sequences; the
// dispatcher selects which one and calls it after EC sync / aux-fw sync /
// battery-cutoff handling have all deferred. Supplying these as a small
// interface rather than four named functions lets callers (tests,
// cmd/vb2tool) swap in stub paths without depending on the disk/kernel
// machinery those paths normally drive.
type BootPathRunner interface {
	NormalBoot(ctx *Context) Status
	DeveloperBoot(ctx *Context) Status
	RecoveryBoot(ctx *Context) Status
	DiagnosticBoot(ctx *Context) Status
}

// SelectBootPath is the tagged-variant selection spec.md §4.7 describes
// as a flat if/elif/else chain: recovery mode first (it overrides
// everything), then an explicit diagnostic request, then developer mode,
// else normal.
func SelectBootPath(ctx *Context) BootPath {
	switch {
	case ctx.HasFlag(FlagRecoveryMode):
		return BootPathRecovery
	case ctx.NVData().DiagRequest:
		return BootPathDiagnostic
	case ctx.HasFlag(FlagDeveloperMode):
		return BootPathDeveloper
	default:
		return BootPathNormal
	}
}

// Dispatch is vb2api_fw_phase4 / the top-level entry point the host calls
// once per boot after FwPhase1-3 have chosen and verified a firmware slot
// (spec.md §4.7). It runs EC sync, aux-firmware sync, and battery-cutoff
// handling — any of which may end the boot early with a reboot/shutdown
// status — then selects and runs exactly one boot path, and finally
// always attempts a commit before returning, keeping whichever of the
// path's status and the commit's status is more "serious" (non-Success
// wins; an existing non-Success is never silently replaced by Success).
func Dispatch(ctx *Context, ec EC, gbb GBB, aux AuxFwSync, battery BatteryCutoff, w PersistentWriter, paths BootPathRunner) Status {
	if status := EcSync(ctx, ec, gbb); status != Success {
		return finalizeStatus(ctx, w, status)
	}

	if aux != nil {
		if reboot, status := aux.Sync(ctx); status != Success {
			return finalizeStatus(ctx, w, status)
		} else if reboot {
			return finalizeStatus(ctx, w, StatusRebootRequired)
		}
	}

	if battery != nil {
		if shutdown, status := battery.Check(ctx); status != Success {
			return finalizeStatus(ctx, w, status)
		} else if shutdown {
			return finalizeStatus(ctx, w, StatusShutdownRequired)
		}
	}

	path := SelectBootPath(ctx)
	var pathStatus Status
	switch path {
	case BootPathRecovery:
		pathStatus = paths.RecoveryBoot(ctx)
	case BootPathDiagnostic:
		pathStatus = paths.DiagnosticBoot(ctx)
	case BootPathDeveloper:
		pathStatus = paths.DeveloperBoot(ctx)
	default:
		pathStatus = paths.NormalBoot(ctx)
	}

	return finalizeStatus(ctx, w, pathStatus)
}

// finalizeStatus always attempts the end-of-boot commit, then returns
// whichever of pathStatus and the commit's own status is more serious:
// a non-Success pathStatus is never masked by a clean commit, but a
// commit failure still surfaces even when the path itself succeeded.
func finalizeStatus(ctx *Context, w PersistentWriter, pathStatus Status) Status {
	commitStatus := Commit(ctx, w)
	if pathStatus != Success {
		return pathStatus
	}
	return commitStatus
}
