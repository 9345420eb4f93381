package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/ikiflow/internal/config"
	"github.com/verte-zerg/ikiflow/internal/model"
)

func TestValidateConfig(t *testing.T) {
	ok := model.Config{FocusMinutes: 25, BreakMinutes: 0, ExtendMinutes: 5, PollInterval: 5 * time.Second}
	if err := validateConfig(ok); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := []model.Config{
		{FocusMinutes: 0, BreakMinutes: 5, ExtendMinutes: 5},
		{FocusMinutes: 25, BreakMinutes: -1, ExtendMinutes: 5},
		{FocusMinutes: 25, BreakMinutes: 5, ExtendMinutes: 0},
		{FocusMinutes: 25, BreakMinutes: 5, ExtendMinutes: 5, ContextEnabled: true, PollInterval: 100 * time.Millisecond},
	}
	for i, cfg := range bad {
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("case %d: expected an error for %+v", i, cfg)
		}
	}
}

func TestDefaultConfigTemplateDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write template: %v", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("template must decode: %v", err)
	}
	if cfg.Timer.Focus != nil || len(cfg.Apps.Rules) != 0 {
		t.Fatalf("template values must be commented out: %+v", cfg)
	}
}

func TestWriteSummary(t *testing.T) {
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.Local)
	records := []model.SessionRecord{
		{Date: "2026-03-17", FocusPlanned: 25, FocusActual: 25, Status: model.StatusCompleted, AppUsage: map[string]int{"Slack": 600}},
		{Date: "2026-03-18", FocusPlanned: 25, FocusActual: 35, Status: model.StatusCompleted, AppUsage: map[string]int{"VS Code": 1500}},
	}
	var buf bytes.Buffer
	if err := writeSummary(&buf, records, now, 5, 60); err != nil {
		t.Fatalf("write summary: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Streak: 2 days", "Total: 1.0 hrs", "Consistency: 29%", "March 2026", "Top Apps", "VS Code"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	if err := writeSummary(&buf, nil, now, 5, 60); err != nil {
		t.Fatalf("write empty summary: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No sessions recorded yet." {
		t.Fatalf("unexpected empty summary: %q", buf.String())
	}
}
