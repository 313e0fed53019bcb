//go:build linux || darwin || freebsd

package timesource

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

// accessTime returns the access time of a file using stat(2).
func accessTime(path string, _ fs.FileInfo) (time.Time, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return time.Time{}, false
	}

	sec, nsec := st.Atim.Unix()
	if sec == 0 && nsec == 0 {
		return time.Time{}, false
	}
	return time.Unix(sec, nsec), true
}
