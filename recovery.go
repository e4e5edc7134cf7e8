package vb2

// RecoveryReason is the single-byte namespace of spec.md §6 covering every
// failure class that can gate the device into recovery mode. It is
// write-once per boot (§7, §8 invariant 4): RequestRecovery never
// overwrites a reason that is already set.
type RecoveryReason uint8

const (
	RecoveryNotRequested RecoveryReason = 0

	RecoveryROUnspecified RecoveryReason = 1 // no specific cause recorded
	RecoveryROManual      RecoveryReason = 2

	RecoveryROInvalidRWGBB   RecoveryReason = 10
	RecoveryROFWVerification RecoveryReason = 11
	RecoveryROSharedDataInit RecoveryReason = 12
	RecoveryRONoSlotsLeft    RecoveryReason = 13
	RecoveryROFWKeyRollback  RecoveryReason = 14
	RecoveryROFWRollback     RecoveryReason = 15

	RecoveryRWKernelKeyVerify RecoveryReason = 30
	RecoveryRWNoKernel        RecoveryReason = 31
	RecoveryRWInvalidKernel   RecoveryReason = 32
	RecoveryRWKernelRollback  RecoveryReason = 33
	RecoveryRWNoDisk          RecoveryReason = 34

	RecoveryECUnknownImage RecoveryReason = 50
	RecoveryECHashFailed   RecoveryReason = 51
	RecoveryECHashSize     RecoveryReason = 52
	RecoveryECExpectedHash RecoveryReason = 53
	RecoveryECUpdate       RecoveryReason = 54
	RecoveryECJumpRW       RecoveryReason = 55
	RecoveryECProtect      RecoveryReason = 56

	RecoveryTrainAndReboot RecoveryReason = 70
	RecoveryRWTPMWError    RecoveryReason = 71
	RecoveryTPMClear       RecoveryReason = 72

	RecoveryAltFWHashFailed RecoveryReason = 80
)

var recoveryReasonNames = map[RecoveryReason]string{
	RecoveryNotRequested:      "not requested",
	RecoveryROUnspecified:     "unspecified",
	RecoveryROManual:          "manual recovery button",
	RecoveryROInvalidRWGBB:    "invalid GBB",
	RecoveryROFWVerification:  "firmware verification failed",
	RecoveryROSharedDataInit:  "shared data init failed",
	RecoveryRONoSlotsLeft:     "no firmware slots left to try",
	RecoveryROFWKeyRollback:   "firmware keyblock version rollback",
	RecoveryROFWRollback:      "firmware preamble version rollback",
	RecoveryRWKernelKeyVerify: "kernel key verification failed",
	RecoveryRWNoKernel:        "no bootable kernel found",
	RecoveryRWInvalidKernel:   "invalid kernel",
	RecoveryRWKernelRollback:  "kernel version rollback",
	RecoveryRWNoDisk:          "no bootable disk found",
	RecoveryECUnknownImage:    "ec: could not determine running image",
	RecoveryECHashFailed:      "ec: hash comparison failed",
	RecoveryECHashSize:        "ec: hash size mismatch",
	RecoveryECExpectedHash:    "ec: expected hash unavailable",
	RecoveryECUpdate:          "ec: update did not converge",
	RecoveryECJumpRW:          "ec: jump to RW failed",
	RecoveryECProtect:         "ec: protect (lock) failed",
	RecoveryTrainAndReboot:    "memory retraining required",
	RecoveryRWTPMWError:       "secdata write error",
	RecoveryTPMClear:          "tpm clear requested",
	RecoveryAltFWHashFailed:   "alternate firmware hash check failed",
}

func (r RecoveryReason) String() string {
	if r == RecoveryNotRequested {
		return "none"
	}
	if name, ok := recoveryReasonNames[r]; ok {
		return name
	}
	return "unknown recovery reason"
}
