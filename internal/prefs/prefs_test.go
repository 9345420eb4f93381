package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestGetMissingKey(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.Get(context.Background(), "nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIntRoundTripAndOverwrite(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if got := st.IntOr(ctx, KeyLastFocus, 30); got != 30 {
		t.Fatalf("expected fallback 30, got %d", got)
	}
	if err := st.SetInt(ctx, KeyLastFocus, 45); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.SetInt(ctx, KeyLastFocus, 50); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := st.IntOr(ctx, KeyLastFocus, 30); got != 50 {
		t.Fatalf("expected 50, got %d", got)
	}
	if err := st.Set(ctx, KeyLastBreak, "soon"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := st.IntOr(ctx, KeyLastBreak, 5); got != 5 {
		t.Fatalf("expected fallback for malformed int, got %d", got)
	}
}

func TestCooldowns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := st.SaveCooldown(ctx, "Figma", at); err != nil {
		t.Fatalf("save cooldown: %v", err)
	}
	if err := st.SetInt(ctx, KeyLastFocus, 25); err != nil {
		t.Fatalf("set: %v", err)
	}
	cooldowns, err := st.LoadCooldowns(ctx)
	if err != nil {
		t.Fatalf("load cooldowns: %v", err)
	}
	if len(cooldowns) != 1 {
		t.Fatalf("expected 1 cooldown, got %v", cooldowns)
	}
	if !cooldowns["Figma"].Equal(at) {
		t.Fatalf("unexpected cooldown time: %v", cooldowns["Figma"])
	}
}
