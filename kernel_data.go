package vb2

// VerifyKernelData verifies a candidate kernel body against the preamble
// LoadKernelVblock already authenticated (spec.md §4.5, state
// KERNEL_DATA_VERIFIED). Like the firmware body (HashFwBody), the kernel
// body is itself RSA-signed — body_signature here is a real signature,
// not a precomputed digest, so this calls straight through VerifyDigestInWorkbuf
// rather than a bare HashBuffer comparison (design note §9: "kernel body
// stays signed, not merely hashed"). body is decompressed per the
// preamble's compression tag, same as HashFwBody, before the check.
func VerifyKernelData(wb *Workbuf, dataKey PublicKey, preamble Preamble, body []byte) Status {
	body, status := preamble.DecompressBody(body)
	if status != Success {
		return status
	}
	if uint64(len(body)) != preamble.BodySizeFromSignature() {
		return StatusKernelDataSize
	}

	alg, status := dataKey.Algorithm.DigestAlgorithm()
	if status != Success {
		return status
	}
	sigBuf, status := sliceSignature(preamble.Raw, preamble.BodySignature)
	if status != Success {
		return StatusKernelDataSigInvalid
	}
	sigCopy := append([]byte(nil), sigBuf...)
	if status := VerifyDigestInWorkbuf(wb, dataKey, sigCopy, alg, body); status != Success {
		return StatusKernelDataSigInvalid
	}
	return Success
}
