package vb2

// nvdataSize is the on-disk size of the CMOS-backed nvdata blob. vboot2
// keeps this tiny deliberately — nvdata round-trips through firmware NVRAM
// on every boot.
const nvdataSize = 16

// NVData holds the boot-intent flags spec.md §3 names: try-count,
// try-next, recovery-request, display-request, diag-request,
// dev-boot-usb/legacy, battery-cutoff-request. It is CRC-protected and RW
// at any time (§4.3).
type NVData struct {
	initialized bool

	TryCount             uint8
	TryNext              FwSlot
	FwTried              FwSlot // slot actually attempted on the boot PrevResult describes
	PrevResult           BootResult
	RecoveryRequest      RecoveryReason
	DisplayRequest       bool
	DiagRequest          bool
	DevBootUSB           bool
	DevBootLegacy        bool
	DevBootFastbootFull  bool
	BatteryCutoffRequest bool
	TryRoSync            bool
}

// InitNVData parses raw (as read from CMOS by the host) into ctx.nvdata,
// verifying its CRC. A blank/corrupt blob is replaced with zeroed
// defaults rather than failing the boot — nvdata corruption is not fatal
// on its own, only a subsequent *write* failure is (spec.md §7).
func (c *Context) InitNVData(raw []byte) Status {
	nv, status := parseNVData(raw)
	if status != Success {
		nv = NVData{}
		c.Debugf("nvdata: %s, resetting to defaults", status)
	}
	nv.initialized = true
	c.nvdata = nv
	c.SD.Set(StatusNVInit)
	return Success
}

// NVData returns the current nvdata snapshot. Reading before InitNVData
// returns the zero value without marking anything dirty, per spec.md
// §4.3 ("reads before init return 0 and set no dirty flag").
func (c *Context) NVData() NVData { return c.nvdata }

// SetNVData replaces the nvdata snapshot and marks it dirty for the next
// Commit (spec.md §4.3: "set marks the store dirty").
func (c *Context) SetNVData(nv NVData) {
	nv.initialized = true
	c.nvdata = nv
	c.SetFlag(flagNVDataDirty)
}

func parseNVData(raw []byte) (NVData, Status) {
	if len(raw) < nvdataSize {
		return NVData{}, StatusNVDataTooSmall
	}
	if crc8(raw[:nvdataSize-1]) != raw[nvdataSize-1] {
		return NVData{}, StatusNVDataCRC
	}
	b := raw[0]
	return NVData{
		TryCount:             raw[1],
		TryNext:              FwSlot(b & 0x01),
		FwTried:              FwSlot(raw[3]>>1) & 0x01,
		PrevResult:           BootResult((b >> 1) & 0x03),
		RecoveryRequest:      RecoveryReason(raw[2]),
		DisplayRequest:       b&0x08 != 0,
		DiagRequest:          b&0x10 != 0,
		DevBootUSB:           b&0x20 != 0,
		DevBootLegacy:        b&0x40 != 0,
		BatteryCutoffRequest: b&0x80 != 0,
		TryRoSync:            raw[3]&0x01 != 0,
	}, Success
}

// serialize packs nv back into the on-disk nvdataSize-byte blob with a
// trailing CRC-8, the form Commit hands to the host's nvdata write
// callback.
func (nv NVData) serialize() []byte {
	out := make([]byte, nvdataSize)
	var b byte
	if nv.TryNext == SlotB {
		b |= 0x01
	}
	b |= byte(nv.PrevResult&0x03) << 1
	if nv.DisplayRequest {
		b |= 0x08
	}
	if nv.DiagRequest {
		b |= 0x10
	}
	if nv.DevBootUSB {
		b |= 0x20
	}
	if nv.DevBootLegacy {
		b |= 0x40
	}
	if nv.BatteryCutoffRequest {
		b |= 0x80
	}
	out[0] = b
	out[1] = nv.TryCount
	out[2] = byte(nv.RecoveryRequest)
	var byte3 byte
	if nv.TryRoSync {
		byte3 |= 0x01
	}
	if nv.FwTried == SlotB {
		byte3 |= 0x02
	}
	out[3] = byte3
	out[nvdataSize-1] = crc8(out[:nvdataSize-1])
	return out
}

// crc8 is the same small polynomial checksum vboot uses to guard nvdata
// and secdata blobs against torn CMOS/TPM writes: not cryptographic,
// just tamper-evidence against partial writes.
func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ 0x07
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
