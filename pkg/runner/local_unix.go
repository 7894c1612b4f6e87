//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// setCancel makes cancellation reach the command's children. sudo relays
// SIGTERM to the program it runs; anything else is started in its own
// process group and the whole group is killed.
func setCancel(c *exec.Cmd, sudo bool) {
	if sudo {
		c.Cancel = func() error { return c.Process.Signal(syscall.SIGTERM) }
		return
	}
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if err := syscall.Kill(-c.Process.Pid, syscall.SIGKILL); err == nil {
			return nil
		}
		return c.Process.Kill()
	}
}
