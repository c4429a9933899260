// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package supervise

import (
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// startPTY starts the server under a pseudo-terminal and streams its output
// into logFile. Some servers only print their readiness banner on a TTY.
func startPTY(cmd *exec.Cmd, logFile *os.File) (func(), error) {
	// pty.Start sets Setsid, which already gives the child its own process
	// group. Setpgid on top of it fails at exec time.
	cmd.SysProcAttr = nil

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, err
	}

	copied := make(chan struct{})
	go func() {
		defer close(copied)
		// The copy ends with EIO once the child exits; that is normal for
		// a PTY master.
		io.Copy(logFile, ptmx)
	}()

	return func() {
		ptmx.Close()
		<-copied
	}, nil
}
