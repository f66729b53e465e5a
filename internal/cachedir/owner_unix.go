//go:build !windows

package cachedir

import (
	"os"
	"syscall"
)

func ownedBy(info os.FileInfo, uid int) bool {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return false
	}
	return int(st.Uid) == uid
}

func currentUID() int {
	return os.Getuid()
}
