//go:build !windows

package window

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
)

const macTitleScript = `tell application "System Events" to get name of first application process whose frontmost is true`

func activeTitle(ctx context.Context) (string, error) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "osascript", "-e", macTitleScript)
	default:
		cmd = exec.CommandContext(ctx, "xdotool", "getactivewindow", "getwindowname")
	}
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrQueryUnavailable, err)
	}
	title := strings.TrimSpace(string(out))
	if title == "" {
		return "", fmt.Errorf("%w: empty window title", apperrors.ErrQueryUnavailable)
	}
	return title, nil
}
