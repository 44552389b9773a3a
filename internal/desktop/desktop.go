// Package desktop launches browsers, folders and applications and
// terminates processes on the local machine.
package desktop

import (
	"context"
	"fmt"
	log "log/slog"
	"os"
	"os/exec"
)

type Desktop struct{}

func New() *Desktop { return &Desktop{} }

func (d *Desktop) OpenURL(ctx context.Context, url string) error {
	return detach(openCommand(ctx, url))
}

func (d *Desktop) OpenPath(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	return detach(openCommand(ctx, path))
}

// StartApp launches the executable and does not wait for it.
func (d *Desktop) StartApp(_ context.Context, path string) error {
	return detach(exec.Command(path))
}

// KillProcess force-terminates every process with the given image name.
func (d *Desktop) KillProcess(ctx context.Context, name string) error {
	cmd := killCommand(ctx, name)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w (%s)", cmd.Path, err, out)
	}
	return nil
}

func (d *Desktop) Exists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// detach starts cmd and reaps it in the background so launched programs
// outlive the request that started them.
func detach(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("Launched process exited", "cmd", cmd.Path, "err", err)
		}
	}()
	return nil
}
