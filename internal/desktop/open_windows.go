//go:build windows

package desktop

import (
	"context"
	"os/exec"
)

func openCommand(_ context.Context, target string) *exec.Cmd {
	return exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
}

func killCommand(ctx context.Context, name string) *exec.Cmd {
	return exec.CommandContext(ctx, "taskkill", "/f", "/im", name)
}
