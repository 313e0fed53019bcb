package timesource

import (
	"io/fs"
)

// Read collects the raw timestamps for the file at path.
// info must describe the same file (typically from os.Stat); its ModTime
// supplies the modification time and the platform-specific accessTime
// supplies the access time when the OS exposes one.
func Read(path string, info fs.FileInfo) Times {
	var t Times
	if info != nil {
		t.Modified = info.ModTime()
	}
	if accessed, ok := accessTime(path, info); ok {
		t.Accessed = accessed
	}
	return t
}
