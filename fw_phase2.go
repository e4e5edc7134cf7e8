package vb2

// FwPhase2 chooses a firmware slot and applies the try-count state
// machine (spec.md §4.4, state SLOT_CHOSEN):
//
//	read last_slot (FwTried) and last_result (PrevResult) from nvdata;
//	if last_result==TRYING, last_slot==try_next, and try_count==0, flip
//	to the other slot (we used up our last try). Otherwise use try_next.
//	Then, if try_count > 0, mark this boot RESULT_TRYING and decrement
//	try_count unless NOFAIL_BOOT is set.
func FwPhase2(ctx *Context) FwSlot {
	nv := ctx.NVData()

	slot := nv.TryNext
	if nv.PrevResult == ResultTrying && nv.FwTried == nv.TryNext && nv.TryCount == 0 {
		slot = nv.TryNext.Other()
	}

	ctx.SD.FwSlot = slot
	ctx.SD.PrevFwSlot = nv.FwTried
	ctx.SD.PrevFwResult = nv.PrevResult
	ctx.SD.Set(StatusChoseSlot)

	nv.FwTried = slot
	if nv.TryCount > 0 {
		nv.PrevResult = ResultTrying
		if !ctx.HasFlag(FlagNoFailBoot) {
			nv.TryCount--
		}
	} else {
		nv.PrevResult = ResultSuccess
	}
	ctx.SetNVData(nv)

	return slot
}
