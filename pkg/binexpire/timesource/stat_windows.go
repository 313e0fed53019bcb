//go:build windows

package timesource

import (
	"io/fs"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

// accessTime returns the last access time via GetFileAttributesExW.
// NTFS may disable or delay these updates, hence the opt-in policy.
func accessTime(path string, _ fs.FileInfo) (time.Time, bool) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return time.Time{}, false
	}

	var data windows.Win32FileAttributeData
	if err := windows.GetFileAttributesEx(p, windows.GetFileExInfoStandard, (*byte)(unsafe.Pointer(&data))); err != nil {
		return time.Time{}, false
	}

	return filetimeToTime(data.LastAccessTime)
}

// filetimeToTime converts a FILETIME, rejecting unset values and values before the Unix epoch.
func filetimeToTime(ft windows.Filetime) (time.Time, bool) {
	if ft.HighDateTime == 0 && ft.LowDateTime == 0 {
		return time.Time{}, false
	}
	ns := ft.Nanoseconds()
	if ns <= 0 {
		return time.Time{}, false
	}
	return time.Unix(0, ns), true
}
