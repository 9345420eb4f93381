// Package model defines shared data structures.
package model

import "time"

// DateLayout is the calendar-day format used for record dates.
const DateLayout = "2006-01-02"

// Status is the outcome of a focus period.
type Status string

const (
	StatusCompleted Status = "Completed"
	StatusSkipped   Status = "Skipped"
)

// SessionRecord is one persisted focus period.
type SessionRecord struct {
	Date          string         `json:"date" yaml:"date"`
	Timestamp     string         `json:"timestamp" yaml:"timestamp"`
	FocusPlanned  int            `json:"focus_planned" yaml:"focus_planned"`
	FocusActual   int            `json:"focus_actual" yaml:"focus_actual"`
	BreakSelected int            `json:"break_selected" yaml:"break_selected"`
	Status        Status         `json:"status" yaml:"status"`
	AppUsage      map[string]int `json:"app_usage" yaml:"app_usage"`
}

// Config defines timer settings resolved from flags and the config file.
type Config struct {
	FocusMinutes  int
	BreakMinutes  int
	ExtendMinutes int

	ContextEnabled  bool
	TriggerApps     []string
	TriggerCooldown time.Duration
	PollInterval    time.Duration
}

// DayStatus classifies a calendar day in the month view.
type DayStatus string

const (
	DayEmpty   DayStatus = "empty"
	DayOutline DayStatus = "outline"
	DayFilled  DayStatus = "filled"
)

// WeekDay carries the focus minutes of one day in a week series.
type WeekDay struct {
	Date    time.Time
	Minutes int
}

// AppTotal is the accumulated foreground time of one application.
type AppTotal struct {
	Name    string
	Seconds int
}

// Summary bundles the headline analytics.
type Summary struct {
	Streak       int
	TotalHours   float64
	DailyAverage int
	Consistency  int
	Sessions     int
}
