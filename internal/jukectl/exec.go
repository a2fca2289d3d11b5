package jukectl

import (
	"context"
	"os/exec"
	"time"
)

// runCapture runs a command and returns its combined output.
func runCapture(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	return string(out), err
}
