package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// maxCellWidth caps free-form cells such as app names.
const maxCellWidth = 32

type textTable struct {
	headers    []string
	rows       [][]string
	rightAlign map[int]bool
	underline  bool
}

func (t textTable) lines() []string {
	colCount := len(t.headers)
	for _, row := range t.rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range t.headers {
		widths[i] = displayWidth(header)
	}
	for _, row := range t.rows {
		for i := 0; i < colCount && i < len(row); i++ {
			if w := displayWidth(fitCell(row[i])); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(t.rows)+2)
	if len(t.headers) > 0 {
		header := t.formatRow(t.headers, widths)
		lines = append(lines, header)
		if t.underline {
			lines = append(lines, strings.Repeat("-", displayWidth(header)))
		}
	}
	for _, row := range t.rows {
		lines = append(lines, t.formatRow(row, widths))
	}
	return lines
}

func (t textTable) formatRow(row []string, widths []int) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = fitCell(row[i])
		}
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(padCell(cell, widths[i], t.rightAlign[i]))
	}
	return strings.TrimRight(b.String(), " ")
}

func fitCell(value string) string {
	if displayWidth(value) <= maxCellWidth {
		return value
	}
	return runewidth.Truncate(value, maxCellWidth, "…")
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := displayWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
