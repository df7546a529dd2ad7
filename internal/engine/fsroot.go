package engine

import (
	"os"
	"syscall"
)

// statDev resolves path's st_dev for --include-fs/--exclude-fs, the same
// Stat_t field walk.fileInputSource reads off discovered files.
func statDev(path string) (uint64, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return uint64(st.Dev), true
}

// multiSource reports whether this run searches more than one file, which
// controls the -H/-h "auto" default: false for stdin or a single plain-file
// root, true for more than one root or a single root that's a directory
// (which can expand to many files under traversal).
func multiSource(roots []string) bool {
	if len(roots) != 1 {
		return len(roots) > 1
	}
	info, err := os.Stat(roots[0])
	if err != nil {
		return false
	}
	return info.IsDir()
}
