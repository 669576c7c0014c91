//go:build !windows

package preflight

import "syscall"

// freeDiskSpace returns the bytes available to unprivileged callers on the
// filesystem containing path. Bavail rather than Bfree, so blocks reserved
// for root do not count.
func freeDiskSpace(path string) (int64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
