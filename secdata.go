package vb2

// secdataFwSize/secdataKernelSize are the on-disk sizes of the two
// TPM-backed monotonic counters. Each is a struct version byte, a CRC,
// and a handful of payload bytes — small by design, since every write
// costs a TPM NV round trip.
const (
	secdataFwSize     = 10
	secdataKernelSize = 13
)

const secdataStructVersion = 2

// SecdataFirmware holds the monotonic composite firmware version plus the
// dev-mode flag bits spec.md §3 assigns to it.
type SecdataFirmware struct {
	initialized bool

	Versions    CompositeVersion
	DevMode     bool
	LastBootDev bool
}

// SecdataKernel holds the monotonic composite kernel version.
type SecdataKernel struct {
	initialized bool

	Versions CompositeVersion
}

// SecdataFWMP holds firmware management parameters: a policy hash plus
// flag bits. It may legitimately be absent (spec.md §3); FlagNoSecdataFWMP
// on the Context signals that to every phase that would otherwise try to
// read it.
type SecdataFWMP struct {
	Hash  [32]byte
	Flags uint32
}

// InitSecdataFirmware parses raw from the TPM-backed store. An absent or
// corrupt blob is not itself fatal — callers are expected to fall back to
// CreateSecdataFirmware — but a caller that skips that step and reads
// before init gets zero values per §4.3.
func (c *Context) InitSecdataFirmware(raw []byte) Status {
	sd, status := parseSecdataFirmware(raw)
	if status != Success {
		return status
	}
	sd.initialized = true
	c.secdataFW = sd
	c.SD.Set(StatusSecdataFWInit)
	return Success
}

// CreateSecdataFirmware emits a default blob (composite version 0) for a
// factory-fresh or explicitly-reset store (spec.md §4.3: "create ... emits
// a default blob").
func (c *Context) CreateSecdataFirmware() {
	c.secdataFW = SecdataFirmware{initialized: true}
	c.SetFlag(flagSecdataFWDirty)
	c.SD.Set(StatusSecdataFWInit)
}

func (c *Context) SecdataFirmware() SecdataFirmware { return c.secdataFW }

func (c *Context) SetSecdataFirmwareVersions(v CompositeVersion) {
	c.secdataFW.Versions = v
	c.secdataFW.initialized = true
	c.SetFlag(flagSecdataFWDirty)
}

func parseSecdataFirmware(raw []byte) (SecdataFirmware, Status) {
	if len(raw) < secdataFwSize {
		return SecdataFirmware{}, StatusSecdataVersion
	}
	if raw[0] != secdataStructVersion {
		return SecdataFirmware{}, StatusSecdataVersion
	}
	if crc8(raw[:secdataFwSize-1]) != raw[secdataFwSize-1] {
		return SecdataFirmware{}, StatusSecdataCRC
	}
	versions := CompositeVersion(
		uint32(raw[2]) | uint32(raw[3])<<8 | uint32(raw[4])<<16 | uint32(raw[5])<<24,
	)
	return SecdataFirmware{
		Versions:    versions,
		DevMode:     raw[1]&0x01 != 0,
		LastBootDev: raw[1]&0x02 != 0,
	}, Success
}

func (sd SecdataFirmware) serialize() []byte {
	out := make([]byte, secdataFwSize)
	out[0] = secdataStructVersion
	var flags byte
	if sd.DevMode {
		flags |= 0x01
	}
	if sd.LastBootDev {
		flags |= 0x02
	}
	out[1] = flags
	v := uint32(sd.Versions)
	out[2], out[3], out[4], out[5] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	out[secdataFwSize-1] = crc8(out[:secdataFwSize-1])
	return out
}

// InitSecdataKernel parses raw the same way InitSecdataFirmware does.
func (c *Context) InitSecdataKernel(raw []byte) Status {
	sd, status := parseSecdataKernel(raw)
	if status != Success {
		return status
	}
	sd.initialized = true
	c.secdataKernel = sd
	c.SD.Set(StatusSecdataKernelInit)
	return Success
}

func (c *Context) CreateSecdataKernel() {
	c.secdataKernel = SecdataKernel{initialized: true}
	c.SetFlag(flagSecdataKernelDirty)
	c.SD.Set(StatusSecdataKernelInit)
}

func (c *Context) SecdataKernel() SecdataKernel { return c.secdataKernel }

func (c *Context) SetSecdataKernelVersions(v CompositeVersion) {
	c.secdataKernel.Versions = v
	c.secdataKernel.initialized = true
	c.SetFlag(flagSecdataKernelDirty)
}

func parseSecdataKernel(raw []byte) (SecdataKernel, Status) {
	if len(raw) < secdataKernelSize {
		return SecdataKernel{}, StatusSecdataVersion
	}
	if raw[0] != secdataStructVersion {
		return SecdataKernel{}, StatusSecdataVersion
	}
	if crc8(raw[:secdataKernelSize-1]) != raw[secdataKernelSize-1] {
		return SecdataKernel{}, StatusSecdataCRC
	}
	versions := CompositeVersion(
		uint32(raw[1]) | uint32(raw[2])<<8 | uint32(raw[3])<<16 | uint32(raw[4])<<24,
	)
	return SecdataKernel{Versions: versions}, Success
}

func (sd SecdataKernel) serialize() []byte {
	out := make([]byte, secdataKernelSize)
	out[0] = secdataStructVersion
	v := uint32(sd.Versions)
	out[1], out[2], out[3], out[4] = byte(v), byte(v>>8), byte(v>>16), byte(v>>24)
	out[secdataKernelSize-1] = crc8(out[:secdataKernelSize-1])
	return out
}

// InitSecdataFWMP parses the firmware management parameters store if the
// host supplies one. Passing a nil raw leaves secdataFWMP absent, which
// is a valid state (spec.md §3) distinct from a parse failure.
func (c *Context) InitSecdataFWMP(raw []byte) Status {
	if raw == nil {
		c.secdataFWMPSet = false
		return Success
	}
	if len(raw) < 37 {
		return StatusSecdataVersion
	}
	if crc8(raw[:36]) != raw[36] {
		return StatusSecdataCRC
	}
	var fwmp SecdataFWMP
	copy(fwmp.Hash[:], raw[0:32])
	fwmp.Flags = uint32(raw[32]) | uint32(raw[33])<<8 | uint32(raw[34])<<16 | uint32(raw[35])<<24
	c.secdataFWMP = fwmp
	c.secdataFWMPSet = true
	c.SD.Set(StatusSecdataFWMPInit)
	return Success
}

func (c *Context) SecdataFWMP() (SecdataFWMP, bool) { return c.secdataFWMP, c.secdataFWMPSet }
