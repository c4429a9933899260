// SPDX-License-Identifier: MPL-2.0

//go:build windows

package supervise

import (
	"os"
	"os/exec"
)

// startPTY falls back to plain pipes on Windows, where creack/pty has no
// ConPTY backend.
func startPTY(cmd *exec.Cmd, logFile *os.File) (func(), error) {
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return func() {}, nil
}
