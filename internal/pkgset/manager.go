// SPDX-License-Identifier: MPL-2.0

package pkgset

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/charmbracelet/log"
)

// Manager applies install/remove actions. The harness is the only mutator of
// the installed version set; implementations do not need to be safe for
// concurrent use.
type Manager interface {
	// InstallFiles installs the given package files, in order.
	InstallFiles(ctx context.Context, files []string) error
	// Remove removes the given package names. Names that are not currently
	// installed must not be treated as an error by the caller contract;
	// eopkg handles them with a warning.
	Remove(ctx context.Context, names []string) error
}

// Eopkg drives the Solus package manager.
type Eopkg struct {
	// Sudo is the elevation command prefixed to every invocation.
	// Empty runs eopkg directly (e.g. when the harness runs as root).
	Sudo string
	// Stdout and Stderr receive the package manager's output.
	Stdout io.Writer
	// Stderr receives the package manager's error output.
	Stderr io.Writer

	logger *log.Logger
}

// NewEopkg creates an eopkg-backed Manager.
func NewEopkg(sudo string, stdout, stderr io.Writer) *Eopkg {
	return &Eopkg{
		Sudo:   sudo,
		Stdout: stdout,
		Stderr: stderr,
		logger: log.NewWithOptions(stderr, log.Options{Prefix: "pkgset"}),
	}
}

// InstallFiles installs package files with `eopkg it`.
func (e *Eopkg) InstallFiles(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return fmt.Errorf("no packages found to install")
	}
	e.logger.Info("installing packages", "count", len(files))
	return e.run(ctx, append([]string{"it"}, files...))
}

// Remove removes packages with `eopkg remove`.
func (e *Eopkg) Remove(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	e.logger.Info("removing packages", "count", len(names))
	return e.run(ctx, append([]string{"remove"}, names...))
}

func (e *Eopkg) run(ctx context.Context, args []string) error {
	name := "eopkg"
	if e.Sudo != "" {
		args = append([]string{name}, args...)
		name = e.Sudo
	}

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("eopkg invocation failed: %w", err)
	}
	return nil
}
