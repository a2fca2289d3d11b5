package extractor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/wader/goutubedl"
)

// Version runs `yt-dlp --version` and returns the reported version.
// binary may be empty to use the configured goutubedl path.
func Version(ctx context.Context, binary string) (string, error) {
	if binary == "" {
		binary = goutubedl.Path
	}
	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("yt-dlp version probe: %w", err)
	}
	v := strings.TrimSpace(string(out))
	if v == "" {
		return "", fmt.Errorf("yt-dlp version probe: empty output")
	}
	return v, nil
}
