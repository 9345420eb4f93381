// Package history persists focus sessions in a JSON log.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
	"github.com/verte-zerg/ikiflow/internal/clock"
	"github.com/verte-zerg/ikiflow/internal/model"
)

// Store is an append-only session log backed by a single JSON array file.
// Every save rewrites the whole file.
type Store struct {
	path  string
	clock clock.Clock
}

// Open returns a store for path, creating the file with an empty array if absent.
func Open(path string, clk clock.Clock) (*Store, error) {
	if clk == nil {
		clk = clock.System{}
	}
	s := &Store{path: path, clock: clk}
	if err := s.EnsureFile(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// EnsureFile creates the parent directory and an empty history if missing.
func (s *Store) EnsureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: create history dir: %v", apperrors.ErrIO, err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("%w: stat history: %v", apperrors.ErrIO, err)
	}
	return s.write([]model.SessionRecord{})
}

// Load reads every record. Absent, unreadable and malformed files are
// reported as ErrNotFound, ErrIO and ErrParse respectively.
func (s *Store) Load(_ context.Context) ([]model.SessionRecord, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: read history: %v", apperrors.ErrIO, err)
	}
	return decode(raw)
}

// LoadOrEmpty reads every record and treats any failure as an empty history.
func (s *Store) LoadOrEmpty(ctx context.Context) []model.SessionRecord {
	records, err := s.Load(ctx)
	if err != nil {
		return []model.SessionRecord{}
	}
	return records
}

// SaveSession appends a record stamped with the current time and rewrites the file.
func (s *Store) SaveSession(ctx context.Context, planned, actual, breakMinutes int, status model.Status, appUsage map[string]int) (model.SessionRecord, error) {
	if actual < 0 {
		actual = 0
	}
	usage := make(map[string]int, len(appUsage))
	for name, sec := range appUsage {
		usage[name] = sec
	}
	now := s.clock.Now()
	record := model.SessionRecord{
		Date:          now.Format(model.DateLayout),
		Timestamp:     now.Format(time.RFC3339Nano),
		FocusPlanned:  planned,
		FocusActual:   actual,
		BreakSelected: breakMinutes,
		Status:        status,
		AppUsage:      usage,
	}

	records := s.LoadOrEmpty(ctx)
	records = append(records, record)
	if err := s.write(records); err != nil {
		return model.SessionRecord{}, err
	}
	return record, nil
}

func (s *Store) write(records []model.SessionRecord) error {
	payload, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: encode history: %v", apperrors.ErrIO, err)
	}
	dir := filepath.Dir(s.path)
	tmpFile, err := os.CreateTemp(dir, "history-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temp history: %v", apperrors.ErrIO, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("%w: write history: %v", apperrors.ErrIO, err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("%w: close history: %v", apperrors.ErrIO, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("%w: replace history: %v", apperrors.ErrIO, err)
	}
	return nil
}

func decode(raw []byte) ([]model.SessionRecord, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: history is not a JSON array", apperrors.ErrParse)
	}
	var records []model.SessionRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: decode history: %v", apperrors.ErrParse, err)
	}
	if records == nil {
		records = []model.SessionRecord{}
	}
	for i := range records {
		if records[i].Status == "" {
			records[i].Status = model.StatusSkipped
		}
		if records[i].AppUsage == nil {
			records[i].AppUsage = map[string]int{}
		}
	}
	return records, nil
}

// SessionsForDate returns the records saved on date (YYYY-MM-DD), in save order.
func SessionsForDate(records []model.SessionRecord, date string) []model.SessionRecord {
	out := []model.SessionRecord{}
	for _, r := range records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out
}
