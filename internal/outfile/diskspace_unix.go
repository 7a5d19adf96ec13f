//go:build unix

package outfile

import "golang.org/x/sys/unix"

// availableSpace returns available disk space in bytes for Unix systems
func availableSpace(path string) (int64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return int64(stat.Bavail) * int64(stat.Bsize), nil
}
