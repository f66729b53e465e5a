//go:build !windows

package prstatus

import (
	"os/exec"
	"syscall"
)

const scriptSupported = true

// spawnDetached starts sh on the script in its own session with no stdio
// and does not wait for it.
func spawnDetached(scriptPath string) error {
	cmd := exec.Command("sh", scriptPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}
