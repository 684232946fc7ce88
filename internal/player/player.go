// Package player hands a media URL to an external player. Playback itself
// is entirely the player's business.
package player

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
)

var candidates = []string{"vlc", "mpv", "ffplay"}

// Find returns the first available player binary.
func Find() (string, error) {
	for _, bin := range candidates {
		if path, err := exec.LookPath(bin); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no media player found in PATH (tried %v)", candidates)
}

// Play starts playback of url and blocks until the player exits or ctx is
// cancelled.
func Play(ctx context.Context, url string) error {
	bin, err := Find()
	if err != nil {
		return err
	}

	slog.Info("starting playback", "player", bin, "url", url)
	cmd := exec.CommandContext(ctx, bin, url)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("player exited with error: %w", err)
	}
	return nil
}
