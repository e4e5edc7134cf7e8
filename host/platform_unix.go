//go:build !windows

package host

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// BlockDeviceGeometry probes an open block device's logical sector size
// and total sector count via the same unix ioctls the teacher's
// stub/unix_stub.go reaches for (BLKSSZGET, BLKGETSIZE64), adapted here
// for disk geometry discovery instead of device-node major/minor lookup.
func BlockDeviceGeometry(f *os.File) (bytesPerLBA, lbaCount uint64, err error) {
	fd := int(f.Fd())

	sz, err := unix.IoctlGetInt(fd, unix.BLKSSZGET)
	if err != nil {
		return 0, 0, fmt.Errorf("host: BLKSSZGET: %w", err)
	}
	if sz <= 0 {
		return 0, 0, fmt.Errorf("host: BLKSSZGET returned non-positive size %d", sz)
	}

	totalBytes, err := unix.IoctlGetUint64(fd, unix.BLKGETSIZE64)
	if err != nil {
		return 0, 0, fmt.Errorf("host: BLKGETSIZE64: %w", err)
	}

	bytesPerLBA = uint64(sz)
	lbaCount = totalBytes / bytesPerLBA
	return bytesPerLBA, lbaCount, nil
}
