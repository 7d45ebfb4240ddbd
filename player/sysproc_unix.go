//go:build !windows

package player

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// mpv runs in its own process group so its ytdl helpers die with it.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	groupErr := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	if errors.Is(groupErr, syscall.ESRCH) {
		return nil
	}
	return groupErr
}
