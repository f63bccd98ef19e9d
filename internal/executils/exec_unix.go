//go:build !windows

package executils

import (
	"context"
	"os/exec"
)

// NewCommand creates a standard *exec.Cmd for non-Windows platforms.
func NewCommand(name string, arg ...string) *exec.Cmd {
	return exec.Command(name, arg...)
}

// CommandContext creates an *exec.Cmd bound to ctx, for timeouts/cancellation.
func CommandContext(ctx context.Context, name string, arg ...string) *exec.Cmd {
	return exec.CommandContext(ctx, name, arg...)
}
