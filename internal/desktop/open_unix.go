//go:build !windows && !darwin

package desktop

import (
	"context"
	"os/exec"
)

func openCommand(_ context.Context, target string) *exec.Cmd {
	return exec.Command("xdg-open", target)
}

func killCommand(ctx context.Context, name string) *exec.Cmd {
	return exec.CommandContext(ctx, "pkill", "-x", name)
}
