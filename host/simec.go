package host

import "fmt"

// SimEC is an in-memory stand-in for vb2.EC, for tests and cmd/vb2tool
// devtools that need to drive EcSync without real embedded-controller
// firmware. RO/RW are addressed by the same bool convention vb2.EC uses
// (true = RW).
type SimEC struct {
	running    [2][]byte // index 0 = RO, 1 = RW
	expected   [2][]byte
	runningRW  bool
	jumped     bool
	jumpLocked bool
	protected  [2]bool
	doneCalled int
	trusted    bool
}

// NewSimEC seeds both regions with matching current/expected hashes (the
// already-in-sync case) and marks the EC as trusted; tests change that
// state through SetExpected/SetRunning/SetRunningRW/SetTrusted to
// exercise mismatch/failure paths.
func NewSimEC(roHash, rwHash []byte) *SimEC {
	ro := append([]byte(nil), roHash...)
	rw := append([]byte(nil), rwHash...)
	return &SimEC{
		running:  [2][]byte{ro, rw},
		expected: [2][]byte{append([]byte(nil), ro...), append([]byte(nil), rw...)},
		trusted:  true,
	}
}

func idx(rw bool) int {
	if rw {
		return 1
	}
	return 0
}

func (e *SimEC) SetExpected(rw bool, hash []byte) { e.expected[idx(rw)] = hash }
func (e *SimEC) SetRunning(rw bool, hash []byte)  { e.running[idx(rw)] = hash }
func (e *SimEC) SetRunningRW(rw bool)             { e.runningRW = rw }
func (e *SimEC) SetTrusted(t bool)                { e.trusted = t }

func (e *SimEC) RunningRW() (bool, error) { return e.runningRW, nil }

func (e *SimEC) HashImage(rw bool) ([]byte, error) { return e.running[idx(rw)], nil }

func (e *SimEC) ExpectedHash(rw bool) ([]byte, error) {
	if e.expected[idx(rw)] == nil {
		return nil, fmt.Errorf("host: no expected hash set for region")
	}
	return e.expected[idx(rw)], nil
}

func (e *SimEC) UpdateImage(rw bool) error {
	e.running[idx(rw)] = append([]byte(nil), e.expected[idx(rw)]...)
	return nil
}

func (e *SimEC) JumpToRW() error {
	if e.jumpLocked {
		return fmt.Errorf("host: jump disabled")
	}
	e.jumped = true
	e.runningRW = true
	return nil
}

func (e *SimEC) DisableJump() error {
	e.jumpLocked = true
	return nil
}

func (e *SimEC) Protect(rw bool) error {
	e.protected[idx(rw)] = true
	return nil
}

func (e *SimEC) VbootDone() error {
	e.doneCalled++
	return nil
}

func (e *SimEC) Trusted() (bool, error) { return e.trusted, nil }

// DoneCalls reports how many times VbootDone actually ran, for asserting
// the "exactly once per boot" invariant.
func (e *SimEC) DoneCalls() int { return e.doneCalled }
