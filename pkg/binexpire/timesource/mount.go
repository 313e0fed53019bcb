package timesource

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// procMounts is the mount table consulted for access-time mount options.
var procMounts = "/proc/mounts"

// AccessTimeWarning returns a warning when dir sits on a filesystem mounted
// with noatime or relatime, where access times understate real usage.
// It returns "" when the mount table is unavailable (non-Linux) or the mount is fine.
func AccessTimeWarning(dir string) string {
	f, err := os.Open(procMounts)
	if err != nil {
		return ""
	}
	defer func() { _ = f.Close() }()

	target := dir
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		target = resolved
	}

	mountpoint, opts, ok := mountOptions(f, target)
	if !ok {
		return ""
	}

	for _, opt := range strings.Split(opts, ",") {
		if opt == "noatime" || opt == "relatime" {
			return fmt.Sprintf("%s is on %s mounted with %q; access times may be inaccurate", dir, mountpoint, opt)
		}
	}
	return ""
}

// mountOptions finds the most specific mountpoint containing target in a
// /proc/mounts style table and returns it with its option string.
func mountOptions(r io.Reader, target string) (mountpoint, opts string, ok bool) {
	best := -1
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		// format: <src> <mountpoint> <fstype> <opts> <dump> <pass>
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		mp := strings.ReplaceAll(fields[1], `\040`, " ")
		// Later lines win ties: they are mounted over earlier ones.
		if !containsPath(mp, target) || len(mp) < best {
			continue
		}
		best = len(mp)
		mountpoint = mp
		opts = fields[3]
		ok = true
	}
	return mountpoint, opts, ok
}

// containsPath reports whether target is mountpoint or lies beneath it.
func containsPath(mountpoint, target string) bool {
	if mountpoint == "/" || mountpoint == target {
		return true
	}
	return strings.HasPrefix(target, mountpoint+"/")
}
