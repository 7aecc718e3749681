//go:build windows

package capability

import "os"

// checkAccess reports whether the current user can create files in dir.
// Windows ACLs are not reflected in mode bits, so we probe with a real file.
func checkAccess(dir string) error {
	f, err := os.CreateTemp(dir, ".prompthive-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
