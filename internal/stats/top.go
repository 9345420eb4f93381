package stats

import (
	"sort"

	"github.com/verte-zerg/ikiflow/internal/model"
)

// TopApps sums app usage across records and returns the n largest.
func TopApps(records []model.SessionRecord, n int) []model.AppTotal {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	totals := map[string]int{}
	for _, r := range records {
		for name, sec := range r.AppUsage {
			totals[name] += sec
		}
	}
	items := make([]model.AppTotal, 0, len(totals))
	for name, sec := range totals {
		items = append(items, model.AppTotal{Name: name, Seconds: sec})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Seconds == items[j].Seconds {
			return items[i].Name < items[j].Name
		}
		return items[i].Seconds > items[j].Seconds
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
