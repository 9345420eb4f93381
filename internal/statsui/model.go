// Package statsui provides the Bubble Tea stats dashboard.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ikiflow/internal/clock"
	"github.com/verte-zerg/ikiflow/internal/history"
	"github.com/verte-zerg/ikiflow/internal/model"
	"github.com/verte-zerg/ikiflow/internal/stats"
)

const (
	tabOverview = iota
	tabWeek
	tabMonth
	tabApps
	tabDay
)

const (
	heatmapWeeks = 12
	topAppsLimit = 20
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Records loads the session history.
type Records interface {
	Load(ctx context.Context) ([]model.SessionRecord, error)
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	records Records
	clock   clock.Clock

	history []model.SessionRecord
	errMsg  string

	tabs      []string
	activeTab int
	viewports []viewport.Model
	appTable  table.Model

	weekAnchor time.Time
	monthYear  int
	month      time.Month
	day        time.Time

	width  int
	height int

	dateMode  bool
	dateInput textinput.Model
	dateError string
}

// NewModel constructs a stats UI model.
func NewModel(records Records, clk clock.Clock) *Model {
	if clk == nil {
		clk = clock.System{}
	}
	now := clk.Now()
	m := &Model{
		records:    records,
		clock:      clk,
		tabs:       []string{"Overview", "Week", "Month", "Apps", "Day"},
		weekAnchor: now,
		monthYear:  now.Year(),
		month:      now.Month(),
		day:        now,
	}
	m.initDateInput()
	m.initViewports()
	m.appTable = buildAppTable(nil, 0, 1)
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderTabContents()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.dateMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.dateMode {
			return m.updateDateInput(msg)
		}
		if m.activeTab == tabApps {
			m.appTable.Focus()
		} else {
			m.appTable.Blur()
		}
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "[":
			m.shift(-1)
			return m, nil
		case "]":
			m.shift(1)
			return m, nil
		case "t":
			m.resetAnchors()
			return m, nil
		case "r":
			m.refresh()
			return m, nil
		case "/":
			if m.activeTab == tabDay {
				return m.startDateInput()
			}
			return m, nil
		case "g", "home":
			if m.activeTab == tabApps {
				m.appTable.GotoTop()
			} else {
				m.viewports[m.activeTab].GotoTop()
			}
			return m, nil
		case "G", "end":
			if m.activeTab == tabApps {
				m.appTable.GotoBottom()
			} else {
				m.viewports[m.activeTab].GotoBottom()
			}
			return m, nil
		default:
			if m.activeTab == tabApps {
				var cmd tea.Cmd
				m.appTable, cmd = m.appTable.Update(msg)
				return m, cmd
			}
			vp := m.viewports[m.activeTab]
			var cmd tea.Cmd
			vp, cmd = vp.Update(msg)
			m.viewports[m.activeTab] = vp
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(bodyHeight), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initViewports() {
	m.viewports = make([]viewport.Model, len(m.tabs))
	for i := range m.viewports {
		m.viewports[i] = viewport.New(0, 0)
	}
}

func (m *Model) initDateInput() {
	input := textinput.New()
	input.Prompt = "Date (YYYY-MM-DD): "
	input.Placeholder = m.day.Format(model.DateLayout)
	input.CharLimit = len(model.DateLayout)
	input.Cursor.SetMode(cursor.CursorBlink)
	m.dateInput = input
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if m.errMsg != "" || m.dateError != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, vpHeight, _ := m.layoutHeights()
	for i := range m.viewports {
		m.viewports[i].Width = m.width
		m.viewports[i].Height = vpHeight
	}
	m.appTable.SetWidth(m.width)
	m.appTable.SetHeight(maxInt(1, vpHeight-1))
	m.dateInput.Width = maxInt(10, m.width-lipgloss.Width(m.dateInput.Prompt)-2)
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	if count == 0 {
		return
	}
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	if m.activeTab == tabApps {
		m.appTable.Focus()
	} else {
		m.appTable.Blur()
	}
}

// shift moves the anchor of the active tab by one week, month or day.
func (m *Model) shift(delta int) {
	switch m.activeTab {
	case tabWeek:
		m.weekAnchor = m.weekAnchor.AddDate(0, 0, 7*delta)
	case tabMonth:
		first := time.Date(m.monthYear, m.month, 1, 0, 0, 0, 0, time.Local).AddDate(0, delta, 0)
		m.monthYear, m.month = first.Year(), first.Month()
	case tabDay:
		m.day = m.day.AddDate(0, 0, delta)
	default:
		return
	}
	m.renderTabContents()
}

func (m *Model) resetAnchors() {
	now := m.clock.Now()
	m.weekAnchor = now
	m.monthYear, m.month = now.Year(), now.Month()
	m.day = now
	m.renderTabContents()
}

func (m *Model) refresh() {
	records, err := m.records.Load(context.Background())
	if err != nil {
		m.errMsg = err.Error()
		records = []model.SessionRecord{}
	} else {
		m.errMsg = ""
	}
	m.history = records
	width := m.width
	if width <= 0 {
		width = 80
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.appTable = buildAppTable(stats.TopApps(m.history, topAppsLimit), width, bodyHeight)
	m.renderTabContents()
}

func (m *Model) renderTabContents() {
	if len(m.viewports) == 0 {
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.viewports[tabOverview].SetContent(m.renderOverview(width))
	m.viewports[tabWeek].SetContent(m.renderWeek(width))
	m.viewports[tabMonth].SetContent(m.renderMonth())
	m.viewports[tabDay].SetContent(m.renderDay())
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	tabs := padLines(m.renderTabs(), m.width)
	anchor := padLines(m.renderAnchorSummary(), m.width)
	return tabs + "\n" + anchor
}

func (m *Model) renderAnchorSummary() string {
	var summary string
	switch m.activeTab {
	case tabWeek:
		start := stats.WeekStart(m.weekAnchor)
		summary = fmt.Sprintf("Week of %s", start.Format(model.DateLayout))
	case tabMonth:
		summary = fmt.Sprintf("%s %d", m.month, m.monthYear)
	case tabDay:
		summary = fmt.Sprintf("Day %s", m.day.Format(model.DateLayout))
	default:
		summary = fmt.Sprintf("%d sessions recorded", len(m.history))
	}
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down/pgup/pgdn  Reload: r  Quit: q"
	switch m.activeTab {
	case tabWeek, tabMonth:
		help = "Nav: left/right  Prev/next: [/]  Today: t  Reload: r  Quit: q"
	case tabDay:
		help = "Nav: left/right  Prev/next: [/]  Date: /  Today: t  Reload: r  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.dateMode {
		return headerStyle.Render("enter: apply  esc: cancel")
	}
	help := m.renderHelp()
	if m.dateError != "" {
		return help + "\n" + errorStyle.Render(m.dateError)
	}
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody(height int) string {
	if m.dateMode {
		return fitLines("Jump to day\n"+m.dateInput.View(), m.width, height)
	}
	if m.activeTab == tabApps {
		if len(m.appTable.Rows()) == 0 {
			return fitLines("No app data recorded yet.", m.width, height)
		}
		return fitLines(tableMutedStyle.Render(m.appTable.View()), m.width, height)
	}
	return fitLines(m.viewports[m.activeTab].View(), m.width, height)
}

func (m *Model) renderOverview(width int) string {
	if len(m.history) == 0 {
		return "No sessions recorded yet."
	}
	now := m.clock.Now()
	summary := stats.Summarize(m.history, now)
	cards := []string{
		metricCard("Streak", fmt.Sprintf("%d days", summary.Streak)),
		metricCard("Total", fmt.Sprintf("%.1f hrs", summary.TotalHours)),
		metricCard("Average", fmt.Sprintf("%d m/day", summary.DailyAverage)),
		metricCard("Consistency", fmt.Sprintf("%d%%", summary.Consistency)),
		metricCard("Sessions", fmt.Sprintf("%d", summary.Sessions)),
	}
	var row string
	if width < 80 {
		row = strings.Join(cards, "\n")
	} else {
		row = lipgloss.JoinHorizontal(lipgloss.Top, cards...)
	}
	var buf bytes.Buffer
	if err := stats.RenderHeatmap(&buf, stats.Heatmap(m.history, now, heatmapWeeks)); err != nil {
		return row
	}
	return strings.TrimRight(row+"\n\n"+buf.String(), "\n")
}

func (m *Model) renderWeek(width int) string {
	var buf bytes.Buffer
	if err := stats.RenderWeek(&buf, stats.WeekSeries(m.history, m.weekAnchor), width); err != nil {
		return fmt.Sprintf("Failed to render week: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func (m *Model) renderMonth() string {
	var buf bytes.Buffer
	statuses := stats.MonthMap(m.history, m.monthYear, m.month)
	if err := stats.RenderMonth(&buf, m.monthYear, m.month, statuses); err != nil {
		return fmt.Sprintf("Failed to render month: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n") + "\n\n" + headerStyle.Render("[dd] completed  (dd) skipped only")
}

func (m *Model) renderDay() string {
	var buf bytes.Buffer
	date := m.day.Format(model.DateLayout)
	if err := stats.RenderDay(&buf, date, history.SessionsForDate(m.history, date)); err != nil {
		return fmt.Sprintf("Failed to render day: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func buildAppTable(apps []model.AppTotal, width, height int) table.Model {
	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "App", Width: 24},
		{Title: "Minutes", Width: 8},
		{Title: "Share", Width: 7},
	}
	total := 0
	for _, a := range apps {
		total += a.Seconds
	}
	rows := make([]table.Row, 0, len(apps))
	for i, a := range apps {
		share := 0.0
		if total > 0 {
			share = float64(a.Seconds) / float64(total) * 100
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", i+1),
			a.Name,
			fmt.Sprintf("%d", a.Seconds/60),
			fmt.Sprintf("%.1f%%", share),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(appTableStyles())
	return t
}

func appTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startDateInput() (tea.Model, tea.Cmd) {
	m.dateMode = true
	m.dateError = ""
	m.dateInput.SetValue(m.day.Format(model.DateLayout))
	m.dateInput.CursorEnd()
	return m, m.dateInput.Focus()
}

func (m *Model) updateDateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.dateMode = false
		m.dateInput.Blur()
		return m, nil
	case "enter":
		value := strings.TrimSpace(m.dateInput.Value())
		day, err := time.ParseInLocation(model.DateLayout, value, time.Local)
		m.dateMode = false
		m.dateInput.Blur()
		if err != nil {
			m.dateError = fmt.Sprintf("invalid date %q", value)
			return m, nil
		}
		m.dateError = ""
		m.day = day
		m.renderTabContents()
		return m, nil
	}
	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
