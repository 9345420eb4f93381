// Package stats contains statistics calculations and reporting.
package stats

import (
	"math"
	"time"

	"github.com/verte-zerg/ikiflow/internal/model"
)

// streakTarget is the streak length that maps to a full consistency score.
const streakTarget = 7

// Quality badges for a single session.
const (
	QualityDistracted = "DISTRACTED"
	QualityGood       = "GOOD"
	QualityDeepFocus  = "DEEP FOCUS"
)

// DailyTotals sums focus minutes per record date.
func DailyTotals(records []model.SessionRecord) map[string]int {
	daily := make(map[string]int)
	for _, r := range records {
		daily[r.Date] += r.FocusActual
	}
	return daily
}

// Streak counts consecutive days with focus time walking back from now.
// An empty today does not break the chain.
func Streak(records []model.SessionRecord, now time.Time) int {
	daily := DailyTotals(records)
	day := startOfDay(now)
	if daily[day.Format(model.DateLayout)] <= 0 {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for daily[day.Format(model.DateLayout)] > 0 {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// TotalMinutes sums focus minutes across all records.
func TotalMinutes(records []model.SessionRecord) int {
	total := 0
	for _, r := range records {
		total += r.FocusActual
	}
	return total
}

// TotalHours returns total focus time in hours rounded to one decimal.
func TotalHours(records []model.SessionRecord) float64 {
	return math.Round(float64(TotalMinutes(records))/60*10) / 10
}

// DailyAverage divides total minutes by the number of distinct record dates.
func DailyAverage(records []model.SessionRecord) int {
	days := len(DailyTotals(records))
	if days == 0 {
		return 0
	}
	return TotalMinutes(records) / days
}

// Consistency maps a streak onto 0-100 against a seven day target.
func Consistency(streak int) int {
	if streak <= 0 {
		return 0
	}
	score := int(math.Round(float64(streak) / streakTarget * 100))
	if score > 100 {
		return 100
	}
	return score
}

// Summarize computes the headline numbers for the dashboard.
func Summarize(records []model.SessionRecord, now time.Time) model.Summary {
	streak := Streak(records, now)
	return model.Summary{
		Streak:       streak,
		TotalHours:   TotalHours(records),
		DailyAverage: DailyAverage(records),
		Consistency:  Consistency(streak),
		Sessions:     len(records),
	}
}

// MonthMap classifies each day of a month that has records. Days absent
// from the map are empty.
func MonthMap(records []model.SessionRecord, year int, month time.Month) map[int]model.DayStatus {
	statuses := map[int]model.DayStatus{}
	for _, r := range records {
		day, err := time.ParseInLocation(model.DateLayout, r.Date, time.Local)
		if err != nil {
			continue
		}
		if day.Year() != year || day.Month() != month {
			continue
		}
		if r.Status == model.StatusCompleted {
			statuses[day.Day()] = model.DayFilled
			continue
		}
		if statuses[day.Day()] != model.DayFilled {
			statuses[day.Day()] = model.DayOutline
		}
	}
	return statuses
}

// WeekSeries returns Monday-first focus minutes for the ISO week holding anchor.
func WeekSeries(records []model.SessionRecord, anchor time.Time) []model.WeekDay {
	daily := DailyTotals(records)
	start := WeekStart(anchor)
	series := make([]model.WeekDay, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		series = append(series, model.WeekDay{Date: day, Minutes: daily[day.Format(model.DateLayout)]})
	}
	return series
}

// WeekStart returns local midnight of the Monday on or before t.
func WeekStart(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeekInsight describes a week by its total focus minutes.
func WeekInsight(series []model.WeekDay) string {
	total := 0
	for _, d := range series {
		total += d.Minutes
	}
	switch {
	case total == 0:
		return "Low focus week"
	case total < 300:
		return "Building momentum"
	default:
		return "Strong focus rhythm"
	}
}

// Quality rates a session by how much of the planned time was focused.
func Quality(r model.SessionRecord) string {
	if r.FocusPlanned <= 0 {
		return QualityDistracted
	}
	ratio := float64(r.FocusActual) / float64(r.FocusPlanned)
	switch {
	case ratio < 0.6:
		return QualityDistracted
	case ratio >= 1.0:
		return QualityDeepFocus
	default:
		return QualityGood
	}
}

// Heatmap returns weeks columns of seven intensity levels (0-3), oldest
// first, ending on the day of anchor.
func Heatmap(records []model.SessionRecord, anchor time.Time, weeks int) [][]int {
	if weeks <= 0 {
		return nil
	}
	daily := DailyTotals(records)
	end := startOfDay(anchor)
	grid := make([][]int, weeks)
	for w := 0; w < weeks; w++ {
		grid[w] = make([]int, 7)
		for d := 0; d < 7; d++ {
			offset := (weeks-1-w)*7 + (6 - d)
			day := end.AddDate(0, 0, -offset)
			grid[w][d] = intensity(daily[day.Format(model.DateLayout)])
		}
	}
	return grid
}

func intensity(minutes int) int {
	switch {
	case minutes <= 0:
		return 0
	case minutes < 30:
		return 1
	case minutes < 60:
		return 2
	default:
		return 3
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
