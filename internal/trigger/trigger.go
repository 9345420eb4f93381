// Package trigger proposes starting a focus session when a trigger app is in front.
package trigger

import (
	"context"
	"strings"
	"time"

	"github.com/verte-zerg/ikiflow/internal/clock"
	"github.com/verte-zerg/ikiflow/internal/window"
)

const (
	DefaultCooldown     = 5 * time.Minute
	DefaultPollInterval = 5 * time.Second
	DefaultFocusMinutes = 30
	DefaultBreakMinutes = 5
)

// Prefs reads last-used durations and persists cooldown stamps.
type Prefs interface {
	IntOr(ctx context.Context, key string, fallback int) int
	LoadCooldowns(ctx context.Context) (map[string]time.Time, error)
	SaveCooldown(ctx context.Context, app string, at time.Time) error
}

// Options configures a Trigger.
type Options struct {
	Apps     []string
	Cooldown time.Duration
	FocusKey string
	BreakKey string
	Clock    clock.Clock
	Source   window.Source
	Prefs    Prefs
}

// Proposal is a quick-start suggestion.
type Proposal struct {
	App          string
	Title        string
	FocusMinutes int
	BreakMinutes int
}

// Trigger matches foreground titles against trigger apps with a per-app cooldown.
type Trigger struct {
	apps     []string
	cooldown time.Duration
	focusKey string
	breakKey string
	clock    clock.Clock
	source   window.Source
	prefs    Prefs
	last     map[string]time.Time
}

// New builds a trigger and loads persisted cooldown stamps when prefs are set.
func New(ctx context.Context, opts Options) *Trigger {
	t := &Trigger{
		cooldown: opts.Cooldown,
		focusKey: opts.FocusKey,
		breakKey: opts.BreakKey,
		clock:    opts.Clock,
		source:   opts.Source,
		prefs:    opts.Prefs,
		last:     map[string]time.Time{},
	}
	if t.cooldown <= 0 {
		t.cooldown = DefaultCooldown
	}
	if t.clock == nil {
		t.clock = clock.System{}
	}
	for _, app := range opts.Apps {
		app = strings.TrimSpace(app)
		if app != "" {
			t.apps = append(t.apps, app)
		}
	}
	if t.prefs != nil {
		if stamps, err := t.prefs.LoadCooldowns(ctx); err == nil {
			for app, at := range stamps {
				t.last[strings.ToLower(app)] = at
			}
		}
	}
	return t
}

// Poll checks the foreground window once. It never proposes while a session
// is active or the timer UI itself is focused. A failed query yields nothing.
func (t *Trigger) Poll(ctx context.Context, active, focused bool) (Proposal, bool) {
	if active || focused || len(t.apps) == 0 || t.source == nil {
		return Proposal{}, false
	}
	title, err := t.source.ActiveTitle(ctx)
	if err != nil || title == "" {
		return Proposal{}, false
	}
	lower := strings.ToLower(title)
	now := t.clock.Now()
	for _, app := range t.apps {
		if !strings.Contains(lower, strings.ToLower(app)) {
			continue
		}
		if at, ok := t.last[strings.ToLower(app)]; ok && now.Sub(at) < t.cooldown {
			continue
		}
		return Proposal{
			App:          app,
			Title:        title,
			FocusMinutes: t.intPref(ctx, t.focusKey, DefaultFocusMinutes),
			BreakMinutes: t.intPref(ctx, t.breakKey, DefaultBreakMinutes),
		}, true
	}
	return Proposal{}, false
}

// Accept records the cooldown for the proposal's app.
func (t *Trigger) Accept(ctx context.Context, p Proposal) error {
	return t.mark(ctx, p.App)
}

// Decline records the cooldown too, so the app does not re-prompt at once.
func (t *Trigger) Decline(ctx context.Context, p Proposal) error {
	return t.mark(ctx, p.App)
}

// CoolingDown reports whether app triggered within the cooldown window.
func (t *Trigger) CoolingDown(app string) bool {
	at, ok := t.last[strings.ToLower(app)]
	return ok && t.clock.Now().Sub(at) < t.cooldown
}

func (t *Trigger) mark(ctx context.Context, app string) error {
	if app == "" {
		return nil
	}
	now := t.clock.Now()
	t.last[strings.ToLower(app)] = now
	if t.prefs == nil {
		return nil
	}
	return t.prefs.SaveCooldown(ctx, strings.ToLower(app), now)
}

func (t *Trigger) intPref(ctx context.Context, key string, fallback int) int {
	if t.prefs == nil || key == "" {
		return fallback
	}
	v := t.prefs.IntOr(ctx, key, fallback)
	if v <= 0 {
		return fallback
	}
	return v
}
