package capability

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	unixExact = []string{
		"/bin", "/sbin", "/usr", "/lib", "/lib64", "/opt", "/var", "/tmp",
		"/home", "/root", "/srv", "/mnt", "/media", "/run",
		"/System", "/Library", "/Applications", "/Users", "/Volumes",
		"/private", "/private/var", "/private/tmp",
	}
	unixTree = []string{"/proc", "/sys", "/dev", "/etc", "/boot", "/private/etc"}

	windowsExact = []string{
		`C:\Program Files`, `C:\Program Files (x86)`, `C:\ProgramData`, `C:\Users`,
	}
	windowsTree = []string{`C:\Windows`}
)

// IsProtected reports whether path is a folder the user may not grant:
// a filesystem root, the home directory itself, or an OS system folder.
// path must be absolute and clean.
func IsProtected(path string) bool {
	if filepath.Dir(path) == path {
		return true
	}
	if home, err := os.UserHomeDir(); err == nil && samePath(path, filepath.Clean(home)) {
		return true
	}

	exact, tree := unixExact, unixTree
	if runtime.GOOS == "windows" {
		exact, tree = windowsExact, windowsTree
	}
	for _, p := range exact {
		if samePath(path, p) {
			return true
		}
	}
	for _, p := range tree {
		if samePath(path, p) || isUnder(path, p) {
			return true
		}
	}
	return false
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func isUnder(path, dir string) bool {
	prefix := dir + string(filepath.Separator)
	if runtime.GOOS == "windows" {
		return len(path) > len(prefix) && strings.EqualFold(path[:len(prefix)], prefix)
	}
	return strings.HasPrefix(path, prefix)
}
