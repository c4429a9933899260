// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package supervise

import "syscall"

// sysProcAttr puts the server into its own process group so that teardown
// reaches any children it forks.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// killProcess terminates the whole process group.
func killProcess(pid int) error {
	return syscall.Kill(-pid, syscall.SIGTERM)
}
