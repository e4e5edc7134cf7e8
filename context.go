package vb2

import "fmt"

// ContextFlag holds the observable boot-wide flag bits named in spec.md
// §6. They are set by the host before the dispatcher runs and read by
// every phase; the core writes only the internal dirty bits it manages,
// plus FlagRecoveryMode/FlagDeveloperMode, which FwPhase1 sets when it
// arbitrates recovery and applies the GBB dev-switch override.
type ContextFlag uint32

const (
	FlagRecoveryMode ContextFlag = 1 << iota
	FlagDeveloperMode
	FlagForceRecoveryMode
	FlagForceWipeoutMode
	FlagDisableDeveloperMode
	FlagECSyncSupported
	FlagNVDataV2
	FlagNoSecdataFWMP
	FlagAllowKernelRollForward
	FlagFWSlotB
	FlagVendorDataSettable
	FlagNoFailBoot
	FlagDisplayInitialized

	// Internal bookkeeping, not part of the host-facing contract but
	// tracked the same way (single bitset) for consistency.
	flagNVDataDirty
	flagSecdataFWDirty
	flagSecdataKernelDirty
	flagSecdataFWMPDirty
)

// Context is the sole mutable root of a boot, as required by spec.md §3
// and design note "Global mutable state": one value threaded through
// every core operation instead of file-static globals.
type Context struct {
	flags ContextFlag

	workbuf     []byte
	workbufUsed uint64

	nvdata         NVData
	secdataFW      SecdataFirmware
	secdataKernel  SecdataKernel
	secdataFWMP    SecdataFWMP
	secdataFWMPSet bool

	// SD is the derived shared state described in spec.md §3 ("shared
	// data... lives at the base of the workbuf"); see shareddata.go.
	SD SharedData

	ecVbootDoneCalled bool

	debugLog []string
}

// NewContext allocates a fresh boot Context with a workbuf of the given
// capacity. Flags should be set immediately afterward to reflect the
// host's boot-mode determination (recovery button, developer switch,
// diagnostic request, …) before any phase runs.
func NewContext(workbufSize uint64, flags ContextFlag) (*Context, Status) {
	buf, status := newWorkbuf(workbufSize)
	if status != Success {
		return nil, status
	}
	return &Context{
		flags:   flags,
		workbuf: buf,
	}, Success
}

func (c *Context) HasFlag(f ContextFlag) bool { return c.flags&f != 0 }
func (c *Context) SetFlag(f ContextFlag)      { c.flags |= f }
func (c *Context) ClearFlag(f ContextFlag)    { c.flags &^= f }

// Debugf records a debug message distinct from any Status/RecoveryReason
// (spec.md §7: "Debug messages accompany every failure ... A production
// build may compile them out without affecting semantics"). It never
// affects control flow.
func (c *Context) Debugf(format string, args ...any) {
	c.debugLog = append(c.debugLog, fmt.Sprintf(format, args...))
}

// DebugLog returns every message recorded so far, oldest first.
func (c *Context) DebugLog() []string { return append([]string(nil), c.debugLog...) }
