package vb2

// HashFwBody verifies the firmware body the host just loaded for the
// chosen slot against the signature pinned in the preamble during
// FwPhase3 (spec.md §4.4, state BODY_VERIFIED). dataKey is the same key
// FwPhase3 unpacked and left sitting in the workbuf at ctx.SD.DataKey.
// body is what the host read off disk for that slot, which may be
// compressed per the preamble's own tag (Preamble.CompressionFormat) —
// it is decompressed here before the signature check, never after.
//
// The preamble pinned at ctx.SD.Preamble was already authoritatively
// verified once, in FwPhase3; VerifyDigest destroys preamble_signature's
// bytes in place as it does so (§8 invariant 3), and that destroyed copy
// is what's sitting in the workbuf here. Re-reading BodySignature/
// BodyVersion must go through the non-destructive field parser, not
// VerifyFwPreamble, or this would spuriously fail on its own prior work.
func HashFwBody(ctx *Context, body []byte, dataKey PublicKey) Status {
	if !ctx.SD.Preamble.Valid(ctx) {
		return StatusPreambleSize
	}
	preamble, status := ParseFwPreambleFields(ctx.SD.Preamble.Bytes(ctx))
	if status != Success {
		return status
	}
	body, status = preamble.DecompressBody(body)
	if status != Success {
		return status
	}
	if uint64(len(body)) != preamble.BodySizeFromSignature() {
		return StatusFWBodyHashMismatch
	}

	alg, status := dataKey.Algorithm.DigestAlgorithm()
	if status != Success {
		return status
	}
	sigBuf, status := sliceSignature(preamble.Raw, preamble.BodySignature)
	if status != Success {
		return StatusFWBodyHashMismatch
	}
	sigCopy := append([]byte(nil), sigBuf...)
	if status := VerifyDigestInWorkbuf(FromCtx(ctx), dataKey, sigCopy, alg, body); status != Success {
		return StatusFWBodyHashMismatch
	}
	return Success
}
