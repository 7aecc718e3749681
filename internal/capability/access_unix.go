//go:build !windows

package capability

import "golang.org/x/sys/unix"

// checkAccess reports whether the current user can list, read and write in dir.
func checkAccess(dir string) error {
	return unix.Access(dir, unix.R_OK|unix.W_OK|unix.X_OK)
}
