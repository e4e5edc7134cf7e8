package vb2

// FwSlot identifies one of the two redundant RW firmware copies.
type FwSlot uint8

const (
	SlotA FwSlot = iota
	SlotB
)

func (s FwSlot) Other() FwSlot {
	if s == SlotA {
		return SlotB
	}
	return SlotA
}

func (s FwSlot) String() string {
	if s == SlotA {
		return "A"
	}
	return "B"
}

// BootResult is the outcome nvdata records for the slot that was tried on
// the previous boot (spec.md §3, §4.4).
type BootResult uint8

const (
	ResultUnknown BootResult = iota
	ResultSuccess
	ResultFailure
	ResultTrying
)

// CompositeVersion packs a 16-bit key-version and a 16-bit body-version
// into the 32-bit value spec.md's rollback rules compare directly
// (design note: "GLOSSARY — Composite version").
type CompositeVersion uint32

func MakeCompositeVersion(keyVersion, bodyVersion uint16) CompositeVersion {
	return CompositeVersion(uint32(keyVersion)<<16 | uint32(bodyVersion))
}

func (c CompositeVersion) KeyVersion() uint16  { return uint16(c >> 16) }
func (c CompositeVersion) BodyVersion() uint16 { return uint16(c) }

// WorkbufView is a validated (offset, length) window into a Context's
// workbuf, the "explicit view type" design notes §9 call for in place of
// the original's self-relative pointer arithmetic. A view is only ever
// constructed by code that has already bounds-checked offset+length
// against the arena, so simply holding one is a proof of liveness as long
// as nothing has since called SetUsed below offset.
type WorkbufView struct {
	Offset uint64
	Length uint64
}

func (v WorkbufView) Bytes(ctx *Context) []byte {
	return ctx.workbuf[v.Offset : v.Offset+v.Length]
}

func (v WorkbufView) Valid(ctx *Context) bool {
	return v.Offset+v.Length <= ctx.workbufUsed
}

// SharedData is the derived boot state that spec.md §3 says "lives at the
// base of the workbuf": the chosen slot, composite versions, previous
// boot's result, the arbitrated recovery reason, and workbuf views onto
// every key/preamble pinned so far. We keep it as a Context field rather
// than literally embedding it at workbuf offset 0 — Go's GC and slice
// bounds checks already give us the safety the original got from manual
// placement — but every invariant the spec states about it (offsets valid
// only after the producing phase's success, status bits gating access)
// still holds.
type SharedData struct {
	StatusBits   SharedStatus
	FwSlot       FwSlot
	PrevFwSlot   FwSlot
	PrevFwResult BootResult

	FwVersion     CompositeVersion
	KernelVersion CompositeVersion

	RecoveryReason RecoveryReason

	RootKey      WorkbufView
	DataKey      WorkbufView
	Preamble     WorkbufView
	KernelSubkey WorkbufView

	// KernelKey is the view kernel_phase1 pins once it has decided which
	// key certifies the kernel keyblock: a copy of the GBB recovery key
	// in recovery mode, otherwise KernelSubkey itself.
	KernelKey WorkbufView

	// KernelKeyIsRecoveryKey records which key kernel_phase1 selected
	// (spec.md §4.5): the GBB recovery key in recovery mode, otherwise
	// the firmware preamble's kernel subkey.
	KernelKeyIsRecoveryKey bool

	KernelPreamble WorkbufView
}

// SharedStatus mirrors the status bits spec.md §3 names: nv-init,
// secdata-init, chose-slot, ec-sync-complete, ….
type SharedStatus uint32

const (
	StatusNVInit SharedStatus = 1 << iota
	StatusSecdataFWInit
	StatusSecdataKernelInit
	StatusSecdataFWMPInit
	StatusChoseSlot
	StatusECSyncComplete
	StatusKernelKeyValid
)

func (s *SharedData) Has(bit SharedStatus) bool { return s.StatusBits&bit != 0 }
func (s *SharedData) Set(bit SharedStatus)      { s.StatusBits |= bit }

// RequestRecovery sets reason unless a reason is already latched
// (spec.md §7 "Recovery reason write-once": the earliest more-specific
// reason wins; invariant 4 of §8).
func (s *SharedData) RequestRecovery(reason RecoveryReason) {
	if s.RecoveryReason == RecoveryNotRequested {
		s.RecoveryReason = reason
	}
}
