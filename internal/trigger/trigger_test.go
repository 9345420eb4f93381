package trigger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
	"github.com/verte-zerg/ikiflow/internal/prefs"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSource struct {
	title string
	err   error
	calls int
}

func (f *fakeSource) ActiveTitle(context.Context) (string, error) {
	f.calls++
	return f.title, f.err
}

func openPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	st, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open prefs: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func newTestTrigger(t *testing.T, st *prefs.Store, src *fakeSource, clk *fakeClock) *Trigger {
	t.Helper()
	opts := Options{
		Apps:     []string{"Figma", "Visual Studio Code"},
		FocusKey: prefs.KeyLastFocus,
		BreakKey: prefs.KeyLastBreak,
		Clock:    clk,
		Source:   src,
	}
	if st != nil {
		opts.Prefs = st
	}
	return New(context.Background(), opts)
}

func TestPollProposesWithPresets(t *testing.T) {
	ctx := context.Background()
	st := openPrefs(t)
	if err := st.SetInt(ctx, prefs.KeyLastFocus, 45); err != nil {
		t.Fatalf("set focus: %v", err)
	}
	src := &fakeSource{title: "Landing page - figma"}
	clk := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	tr := newTestTrigger(t, st, src, clk)

	p, ok := tr.Poll(ctx, false, false)
	if !ok {
		t.Fatalf("expected a proposal")
	}
	if p.App != "Figma" || p.FocusMinutes != 45 || p.BreakMinutes != DefaultBreakMinutes {
		t.Fatalf("unexpected proposal: %+v", p)
	}
}

func TestPollSkipsWhenActiveOrFocused(t *testing.T) {
	src := &fakeSource{title: "Figma"}
	tr := newTestTrigger(t, nil, src, &fakeClock{now: time.Now()})
	if _, ok := tr.Poll(context.Background(), true, false); ok {
		t.Fatalf("no proposal while a session is active")
	}
	if _, ok := tr.Poll(context.Background(), false, true); ok {
		t.Fatalf("no proposal while the timer is focused")
	}
	if src.calls != 0 {
		t.Fatalf("window must not be queried, got %d calls", src.calls)
	}
}

func TestPollIgnoresQueryFailureAndMismatch(t *testing.T) {
	src := &fakeSource{err: apperrors.ErrQueryUnavailable}
	tr := newTestTrigger(t, nil, src, &fakeClock{now: time.Now()})
	if _, ok := tr.Poll(context.Background(), false, false); ok {
		t.Fatalf("query failure must not propose")
	}
	src.err = nil
	src.title = "Inbox - Mail"
	if _, ok := tr.Poll(context.Background(), false, false); ok {
		t.Fatalf("unrelated title must not propose")
	}
}

func TestDeclineStartsCooldown(t *testing.T) {
	ctx := context.Background()
	st := openPrefs(t)
	src := &fakeSource{title: "main.go - Visual Studio Code"}
	clk := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	tr := newTestTrigger(t, st, src, clk)

	p, ok := tr.Poll(ctx, false, false)
	if !ok {
		t.Fatalf("expected a proposal")
	}
	if err := tr.Decline(ctx, p); err != nil {
		t.Fatalf("decline: %v", err)
	}
	clk.advance(4 * time.Minute)
	if _, ok := tr.Poll(ctx, false, false); ok {
		t.Fatalf("app must not re-prompt within the cooldown")
	}
	if !tr.CoolingDown("visual studio code") {
		t.Fatalf("expected cooldown to be case-insensitive")
	}
	clk.advance(time.Minute)
	if _, ok := tr.Poll(ctx, false, false); !ok {
		t.Fatalf("expected a proposal once the cooldown elapsed")
	}
}

func TestCooldownSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	st := openPrefs(t)
	src := &fakeSource{title: "Figma"}
	clk := &fakeClock{now: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	first := newTestTrigger(t, st, src, clk)
	p, _ := first.Poll(ctx, false, false)
	if err := first.Accept(ctx, p); err != nil {
		t.Fatalf("accept: %v", err)
	}

	clk.advance(time.Minute)
	second := newTestTrigger(t, st, src, clk)
	if _, ok := second.Poll(ctx, false, false); ok {
		t.Fatalf("persisted cooldown must suppress the prompt")
	}
}

type failingPrefs struct{}

func (failingPrefs) IntOr(_ context.Context, _ string, fallback int) int { return fallback }

func (failingPrefs) LoadCooldowns(context.Context) (map[string]time.Time, error) {
	return nil, apperrors.ErrIO
}

func (failingPrefs) SaveCooldown(context.Context, string, time.Time) error {
	return apperrors.ErrIO
}

func TestCooldownKeptInMemoryWhenPrefsFail(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	tr := New(ctx, Options{Apps: []string{"Figma"}, Clock: clk, Source: &fakeSource{title: "Figma"}, Prefs: failingPrefs{}})
	p, ok := tr.Poll(ctx, false, false)
	if !ok || p.FocusMinutes != DefaultFocusMinutes {
		t.Fatalf("unexpected proposal: %+v %v", p, ok)
	}
	if err := tr.Decline(ctx, p); !errors.Is(err, apperrors.ErrIO) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, ok := tr.Poll(ctx, false, false); ok {
		t.Fatalf("in-memory cooldown must still apply")
	}
}
