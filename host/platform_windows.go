//go:build windows

package host

import (
	"fmt"
	"os"
)

// BlockDeviceGeometry has no portable ioctl equivalent wired up on
// Windows; callers on this platform must supply geometry out of band
// (e.g. from a disk image's own header) rather than probing the handle.
func BlockDeviceGeometry(f *os.File) (bytesPerLBA, lbaCount uint64, err error) {
	return 0, 0, fmt.Errorf("host: BlockDeviceGeometry not supported on windows")
}
