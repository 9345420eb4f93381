// Package window queries the title of the foreground window.
package window

import "context"

// Source returns the current foreground window title.
type Source interface {
	ActiveTitle(ctx context.Context) (string, error)
}

// System queries the desktop the process runs on.
type System struct{}

// ActiveTitle implements Source. Failures wrap ErrQueryUnavailable.
func (System) ActiveTitle(ctx context.Context) (string, error) {
	return activeTitle(ctx)
}
