//go:build !linux && !darwin && !freebsd && !windows

package timesource

import (
	"io/fs"
	"time"
)

// accessTime is unsupported on this platform; callers fall back to modification time.
func accessTime(_ string, _ fs.FileInfo) (time.Time, bool) {
	return time.Time{}, false
}
