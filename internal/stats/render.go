package stats

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/verte-zerg/ikiflow/internal/model"
)

const (
	barChar             = "█"
	minBarWidth         = 10
	terminalWidthBackup = 80
	weekLabelWidth      = len("Mon 01-02 ") + len(" 9999m")
)

var heatChars = []string{"·", "░", "▒", "█"}

// RenderSummary prints the headline cards as text.
func RenderSummary(w io.Writer, s model.Summary) error {
	if s.Sessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions recorded yet.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Streak: %d days", s.Streak),
		fmt.Sprintf("Total: %.1f hrs", s.TotalHours),
		fmt.Sprintf("Average: %d m/day", s.DailyAverage),
		fmt.Sprintf("Consistency: %d%%", s.Consistency),
		fmt.Sprintf("Sessions: %d", s.Sessions),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderWeek prints a horizontal bar per day. A width of 0 uses the terminal width.
func RenderWeek(w io.Writer, series []model.WeekDay, width int) error {
	if len(series) == 0 {
		return nil
	}
	if width <= 0 {
		width = terminalWidth()
	}
	barWidth := width - weekLabelWidth
	if barWidth < minBarWidth {
		barWidth = minBarWidth
	}
	maxMinutes := 0
	for _, d := range series {
		if d.Minutes > maxMinutes {
			maxMinutes = d.Minutes
		}
	}
	start, end := series[0].Date, series[len(series)-1].Date
	if _, err := fmt.Fprintf(w, "Week %s - %s: %s\n", start.Format("Jan 02"), end.Format("Jan 02"), WeekInsight(series)); err != nil {
		return err
	}
	for _, d := range series {
		n := 0
		if maxMinutes > 0 {
			n = d.Minutes * barWidth / maxMinutes
		}
		if d.Minutes > 0 && n == 0 {
			n = 1
		}
		if _, err := fmt.Fprintf(w, "%s %s %dm\n", d.Date.Format("Mon 01-02"), strings.Repeat(barChar, n), d.Minutes); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderMonth prints a Monday-first calendar where [d] is filled, (d) outline.
func RenderMonth(w io.Writer, year int, month time.Month, statuses map[int]model.DayStatus) error {
	if _, err := fmt.Fprintf(w, "%s %d\n", month, year); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, " Mo   Tu   We   Th   Fr   Sa   Su"); err != nil {
		return err
	}
	for _, week := range MonthGrid(year, month) {
		cells := make([]string, len(week))
		for i, day := range week {
			cells[i] = monthCell(day, statuses[day])
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, " "), " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// MonthGrid lays the days of a month into Monday-first weeks; 0 pads.
func MonthGrid(year int, month time.Month) [][]int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	days := first.AddDate(0, 1, -1).Day()
	lead := (int(first.Weekday()) + 6) % 7
	var grid [][]int
	week := make([]int, 7)
	col := lead
	for day := 1; day <= days; day++ {
		week[col] = day
		col++
		if col == 7 {
			grid = append(grid, week)
			week = make([]int, 7)
			col = 0
		}
	}
	if col > 0 {
		grid = append(grid, week)
	}
	return grid
}

func monthCell(day int, status model.DayStatus) string {
	if day == 0 {
		return "    "
	}
	switch status {
	case model.DayFilled:
		return fmt.Sprintf("[%2d]", day)
	case model.DayOutline:
		return fmt.Sprintf("(%2d)", day)
	default:
		return fmt.Sprintf(" %2d ", day)
	}
}

// RenderHeatmap prints weekday rows of intensity characters, oldest week left.
func RenderHeatmap(w io.Writer, grid [][]int) error {
	if len(grid) == 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "Consistency (%d weeks)\n", len(grid)); err != nil {
		return err
	}
	for d := 0; d < 7; d++ {
		var b strings.Builder
		for wk := range grid {
			level := grid[wk][d]
			if level < 0 || level >= len(heatChars) {
				level = 0
			}
			b.WriteString(heatChars[level])
			b.WriteByte(' ')
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTopApps prints the ranking of applications by foreground time.
func RenderTopApps(w io.Writer, apps []model.AppTotal) error {
	if len(apps) == 0 {
		_, err := fmt.Fprintln(w, "No app data recorded yet.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Top Apps"); err != nil {
		return err
	}
	total := 0
	for _, a := range apps {
		total += a.Seconds
	}
	rows := make([][]string, 0, len(apps))
	for i, a := range apps {
		share := 0.0
		if total > 0 {
			share = float64(a.Seconds) / float64(total) * 100
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d.", i+1),
			a.Name,
			fmt.Sprintf("%d min", a.Seconds/60),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	tbl := textTable{
		headers:    []string{"#", "App", "Time", "Share"},
		rows:       rows,
		rightAlign: map[int]bool{0: true, 2: true, 3: true},
		underline:  true,
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderDay lists the sessions of one day with their quality badge.
func RenderDay(w io.Writer, date string, records []model.SessionRecord) error {
	if _, err := fmt.Fprintf(w, "Sessions on %s\n", date); err != nil {
		return err
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No sessions.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		at := r.Timestamp
		if ts, err := time.Parse(time.RFC3339Nano, r.Timestamp); err == nil {
			at = ts.Format("03:04 PM")
		}
		skipped := "No"
		if r.Status == model.StatusSkipped {
			skipped = "Yes"
		}
		rows = append(rows, []string{
			at,
			Quality(r),
			fmt.Sprintf("%dm", r.FocusPlanned),
			fmt.Sprintf("%dm", r.FocusActual),
			fmt.Sprintf("%dm", r.BreakSelected),
			skipped,
		})
	}
	tbl := textTable{
		headers:    []string{"Time", "Quality", "Timer", "Actual", "Break", "Skip"},
		rows:       rows,
		rightAlign: map[int]bool{2: true, 3: true, 4: true},
	}
	for _, line := range tbl.lines() {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
