package cachedir

import "os"

// Ownership is not checked on Windows; the per-user profile directories are
// already ACL protected.
func ownedBy(os.FileInfo, int) bool {
	return true
}

func currentUID() int {
	return os.Getpid()
}
