package statsui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
	"github.com/verte-zerg/ikiflow/internal/model"
)

var fixedNow = time.Date(2026, 3, 18, 12, 0, 0, 0, time.Local)

type fixedClock struct{}

func (fixedClock) Now() time.Time { return fixedNow }

type fakeRecords struct {
	records []model.SessionRecord
	err     error
}

func (f fakeRecords) Load(context.Context) ([]model.SessionRecord, error) {
	return f.records, f.err
}

func sampleRecords() []model.SessionRecord {
	return []model.SessionRecord{
		{Date: "2026-03-17", Timestamp: "2026-03-17T09:00:00Z", FocusPlanned: 25, FocusActual: 25, BreakSelected: 5, Status: model.StatusCompleted, AppUsage: map[string]int{"VS Code": 1200, "Slack": 300}},
		{Date: "2026-03-18", Timestamp: "2026-03-18T10:00:00Z", FocusPlanned: 25, FocusActual: 10, BreakSelected: 5, Status: model.StatusSkipped, AppUsage: map[string]int{"Slack": 600}},
		{Date: "2026-02-10", Timestamp: "2026-02-10T10:00:00Z", FocusPlanned: 50, FocusActual: 50, BreakSelected: 10, Status: model.StatusCompleted, AppUsage: map[string]int{}},
	}
}

func newSizedModel(t *testing.T, records Records) *Model {
	t.Helper()
	m := NewModel(records, fixedClock{})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestOverviewShowsSummary(t *testing.T) {
	m := newSizedModel(t, fakeRecords{records: sampleRecords()})
	view := m.View()
	for _, want := range []string{"Overview", "Streak", "2 days", "1.4 hrs", "Sessions"} {
		if !strings.Contains(view, want) {
			t.Fatalf("overview missing %q:\n%s", want, view)
		}
	}
}

func TestMonthNavigation(t *testing.T) {
	m := newSizedModel(t, fakeRecords{records: sampleRecords()})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabMonth {
		t.Fatalf("expected month tab, got %d", m.activeTab)
	}
	view := m.View()
	if !strings.Contains(view, "March 2026") || !strings.Contains(view, "[17]") || !strings.Contains(view, "(18)") {
		t.Fatalf("unexpected month view:\n%s", view)
	}
	m.Update(key("["))
	view = m.View()
	if !strings.Contains(view, "February 2026") || !strings.Contains(view, "[10]") {
		t.Fatalf("expected previous month:\n%s", view)
	}
	m.Update(key("t"))
	if m.month != time.March {
		t.Fatalf("expected reset to current month, got %s", m.month)
	}
}

func TestWeekNavigation(t *testing.T) {
	m := newSizedModel(t, fakeRecords{records: sampleRecords()})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if !strings.Contains(m.View(), "Week of 2026-03-16") {
		t.Fatalf("expected the current week:\n%s", m.View())
	}
	m.Update(key("["))
	if !strings.Contains(m.View(), "Week of 2026-03-09") {
		t.Fatalf("expected the previous week:\n%s", m.View())
	}
}

func TestAppsTable(t *testing.T) {
	m := newSizedModel(t, fakeRecords{records: sampleRecords()})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabApps {
		t.Fatalf("expected apps tab, got %d", m.activeTab)
	}
	rows := m.appTable.Rows()
	if len(rows) != 2 || rows[0][1] != "VS Code" || rows[1][1] != "Slack" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	if rows[0][3] != "57.1%" {
		t.Fatalf("unexpected share: %v", rows[0])
	}
}

func TestDayJump(t *testing.T) {
	m := newSizedModel(t, fakeRecords{records: sampleRecords()})
	m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if m.activeTab != tabDay {
		t.Fatalf("expected day tab, got %d", m.activeTab)
	}
	m.Update(key("/"))
	if !m.dateMode {
		t.Fatalf("expected date input mode")
	}
	m.dateInput.SetValue("2026-03-17")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	view := m.View()
	if !strings.Contains(view, "Sessions on 2026-03-17") || !strings.Contains(view, "DEEP FOCUS") {
		t.Fatalf("expected the chosen day:\n%s", view)
	}

	m.Update(key("/"))
	m.dateInput.SetValue("03/17")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "invalid date") {
		t.Fatalf("expected an invalid date notice:\n%s", m.View())
	}
}

func TestLoadErrorShownInFooter(t *testing.T) {
	m := newSizedModel(t, fakeRecords{err: apperrors.ErrParse})
	view := m.View()
	if !strings.Contains(view, "No sessions recorded yet.") || !strings.Contains(view, apperrors.ErrParse.Error()) {
		t.Fatalf("expected empty view with error:\n%s", view)
	}
}
