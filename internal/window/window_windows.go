//go:build windows

package window

import (
	"context"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
)

var (
	user32                   = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow  = user32.NewProc("GetForegroundWindow")
	procGetWindowTextLengthW = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW       = user32.NewProc("GetWindowTextW")
)

func activeTitle(_ context.Context) (string, error) {
	if err := user32.Load(); err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrQueryUnavailable, err)
	}
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return "", fmt.Errorf("%w: no foreground window", apperrors.ErrQueryUnavailable)
	}
	length, _, _ := procGetWindowTextLengthW.Call(hwnd)
	if length == 0 {
		return "", fmt.Errorf("%w: empty window title", apperrors.ErrQueryUnavailable)
	}
	buf := make([]uint16, length+1)
	procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf), nil
}
