// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package probe

import (
	"io/fs"
	"syscall"
)

// fileOwner reports the owning uid of a file, when the platform exposes one.
func fileOwner(info fs.FileInfo) (int, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, false
	}
	return int(st.Uid), true
}
