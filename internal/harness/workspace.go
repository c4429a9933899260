// SPDX-License-Identifier: MPL-2.0

package harness

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/charmbracelet/log"
)

// Workspace is the checkout holding the sample solution. Every phase starts
// from a clean state so build outputs cannot leak between phases.
type Workspace struct {
	// Dir is the workspace root.
	Dir string
	// Keep skips the reset, for debugging a failed phase in place.
	Keep bool

	logger *log.Logger
}

// NewWorkspace creates a workspace rooted at dir.
func NewWorkspace(dir string, keep bool, stderr io.Writer) *Workspace {
	return &Workspace{
		Dir:    dir,
		Keep:   keep,
		logger: log.NewWithOptions(stderr, log.Options{Prefix: "workspace"}),
	}
}

// Reset removes every untracked file and build artifact from the workspace.
func (w *Workspace) Reset(ctx context.Context) error {
	if w.Keep {
		w.logger.Debug("keeping workspace, reset skipped", "dir", w.Dir)
		return nil
	}

	w.logger.Info("resetting workspace", "dir", w.Dir)
	cmd := exec.CommandContext(ctx, "git", "-C", w.Dir, "clean", "-xfd")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git clean in %s: %w\n%s", w.Dir, err, out)
	}
	return nil
}
