package history

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
	"github.com/verte-zerg/ikiflow/internal/model"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "history.json")
	st, err := Open(path, fixedClock{now: time.Date(2026, 3, 14, 9, 30, 0, 0, time.Local)})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestOpenCreatesEmptyArray(t *testing.T) {
	st := openTestStore(t)
	raw, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	if strings.TrimSpace(string(raw)) != "[]" {
		t.Fatalf("expected empty array, got %q", raw)
	}
	records, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no records, got %d", len(records))
	}
}

func TestSaveSessionRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	usage := map[string]int{"VS Code": 1200, "Chrome": 300}
	saved, err := st.SaveSession(ctx, 25, 25, 5, model.StatusCompleted, usage)
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	if saved.Date != "2026-03-14" {
		t.Fatalf("unexpected date %q", saved.Date)
	}
	second, err := st.SaveSession(ctx, 25, 3, 5, model.StatusSkipped, nil)
	if err != nil {
		t.Fatalf("save second session: %v", err)
	}

	records, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0], saved) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", records[0], saved)
	}
	if !reflect.DeepEqual(records[1], second) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", records[1], second)
	}
}

func TestSaveSessionCopiesUsage(t *testing.T) {
	st := openTestStore(t)
	usage := map[string]int{"Slack": 10}
	saved, err := st.SaveSession(context.Background(), 25, 25, 5, model.StatusCompleted, usage)
	if err != nil {
		t.Fatalf("save session: %v", err)
	}
	usage["Slack"] = 99
	if saved.AppUsage["Slack"] != 10 {
		t.Fatalf("record shares the caller's map")
	}
}

func TestLoadClassifiesErrors(t *testing.T) {
	dir := t.TempDir()
	st := &Store{path: filepath.Join(dir, "missing.json"), clock: fixedClock{}}
	if _, err := st.Load(context.Background()); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	cases := map[string]string{
		"object":  `{"date": "2026-01-01"}`,
		"garbage": `not json`,
		"broken":  `[{"date": `,
		"types":   `[{"focus_actual": "ten"}]`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name+".json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		st := &Store{path: path, clock: fixedClock{}}
		if _, err := st.Load(context.Background()); !errors.Is(err, apperrors.ErrParse) {
			t.Fatalf("%s: expected ErrParse, got %v", name, err)
		}
		if got := st.LoadOrEmpty(context.Background()); len(got) != 0 {
			t.Fatalf("%s: expected empty fallback, got %d records", name, len(got))
		}
	}
}

func TestLoadDefaultsMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	body := `[{"date": "2026-01-02", "focus_actual": 20}]`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	st := &Store{path: path, clock: fixedClock{}}
	records, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if records[0].Status != model.StatusSkipped {
		t.Fatalf("expected default status Skipped, got %q", records[0].Status)
	}
	if records[0].AppUsage == nil || len(records[0].AppUsage) != 0 {
		t.Fatalf("expected empty app usage, got %v", records[0].AppUsage)
	}
}

func TestSaveSessionRecoversCorruptFile(t *testing.T) {
	st := openTestStore(t)
	if err := os.WriteFile(st.Path(), []byte("{oops"), 0o644); err != nil {
		t.Fatalf("corrupt file: %v", err)
	}
	if _, err := st.SaveSession(context.Background(), 25, 25, 5, model.StatusCompleted, nil); err != nil {
		t.Fatalf("save session: %v", err)
	}
	records, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected corrupt history to be replaced by one record, got %d", len(records))
	}
}

func TestSaveSessionReportsWriteFailure(t *testing.T) {
	st := openTestStore(t)
	if err := os.Remove(st.Path()); err != nil {
		t.Fatalf("remove history: %v", err)
	}
	// A non-empty directory in place of the file makes the rename fail.
	if err := os.MkdirAll(filepath.Join(st.Path(), "blocker"), 0o755); err != nil {
		t.Fatalf("create blocker: %v", err)
	}
	_, err := st.SaveSession(context.Background(), 25, 25, 5, model.StatusCompleted, nil)
	if !errors.Is(err, apperrors.ErrIO) {
		t.Fatalf("expected ErrIO, got %v", err)
	}
}

func TestSessionsForDate(t *testing.T) {
	records := []model.SessionRecord{
		{Date: "2026-01-01", FocusActual: 10},
		{Date: "2026-01-02", FocusActual: 20},
		{Date: "2026-01-01", FocusActual: 30},
	}
	got := SessionsForDate(records, "2026-01-01")
	if len(got) != 2 || got[0].FocusActual != 10 || got[1].FocusActual != 30 {
		t.Fatalf("unexpected sessions: %+v", got)
	}
}

func TestExportYAML(t *testing.T) {
	records := []model.SessionRecord{{
		Date:         "2026-01-01",
		Timestamp:    "2026-01-01T10:00:00Z",
		FocusPlanned: 25,
		FocusActual:  25,
		Status:       model.StatusCompleted,
		AppUsage:     map[string]int{"Terminal": 60},
	}}
	var buf bytes.Buffer
	if err := Export(&buf, records, FormatYAML); err != nil {
		t.Fatalf("export: %v", err)
	}
	var decoded []model.SessionRecord
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("decode yaml: %v", err)
	}
	if !reflect.DeepEqual(decoded, records) {
		t.Fatalf("yaml export mismatch: %+v", decoded)
	}
	if err := Export(&buf, records, "csv"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
