// Package tui provides the Bubble Tea focus timer interface.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/ikiflow/internal/clock"
	"github.com/verte-zerg/ikiflow/internal/model"
	"github.com/verte-zerg/ikiflow/internal/session"
	statsPkg "github.com/verte-zerg/ikiflow/internal/stats"
	"github.com/verte-zerg/ikiflow/internal/trigger"
)

const (
	focusStep       = 5
	minFocusMinutes = 5
	maxFocusMinutes = 180
)

var breakOptions = []int{5, 10, 15, 20, 30}

// Presets stores the last used durations.
type Presets interface {
	SetInt(ctx context.Context, key string, value int) error
}

// Records loads the history for the footer.
type Records interface {
	LoadOrEmpty(ctx context.Context) []model.SessionRecord
}

// Options wires the timer UI to its collaborators. Trigger, Presets and
// Records may be nil.
type Options struct {
	Config   model.Config
	Machine  *session.Machine
	Trigger  *trigger.Trigger
	Presets  Presets
	Records  Records
	FocusKey string
	BreakKey string
	Clock    clock.Clock
}

type tickMsg struct{}

type pollMsg struct{}

// Model implements the Bubble Tea timer UI.
type Model struct {
	config   model.Config
	machine  *session.Machine
	trigger  *trigger.Trigger
	presets  Presets
	records  Records
	focusKey string
	breakKey string
	clock    clock.Clock

	focusMinutes int
	breakMinutes int

	width   int
	height  int
	focused bool
	ticking bool

	proposal *trigger.Proposal
	status   string

	todayMinutes int
	streak       int
	sessions     int
	history      []model.SessionRecord

	bar  progress.Model
	help help.Model
	keys keyMap
}

type keyMap struct {
	Start   key.Binding
	Longer  key.Binding
	Shorter key.Binding
	Break   key.Binding
	Pause   key.Binding
	Stop    key.Binding
	TakeBrk key.Binding
	Extend  key.Binding
	Dismiss key.Binding
	Accept  key.Binding
	Decline key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Start:   key.NewBinding(key.WithKeys("enter", "s"), key.WithHelp("enter", "start")),
		Longer:  key.NewBinding(key.WithKeys("up", "k", "+"), key.WithHelp("↑", "longer")),
		Shorter: key.NewBinding(key.WithKeys("down", "j", "-"), key.WithHelp("↓", "shorter")),
		Break:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "break length")),
		Pause:   key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		TakeBrk: key.NewBinding(key.WithKeys("b", "enter"), key.WithHelp("b", "take break")),
		Extend:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "extend")),
		Dismiss: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
		Accept:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start")),
		Decline: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "not now")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

var (
	timeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	phaseStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	breakStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#4FB0C6"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#C89A3A")).Padding(0, 1)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// NewModel constructs a timer TUI model and subscribes it to machine events.
func NewModel(opts Options) *Model {
	m := &Model{
		config:       opts.Config,
		machine:      opts.Machine,
		trigger:      opts.Trigger,
		presets:      opts.Presets,
		records:      opts.Records,
		focusKey:     opts.FocusKey,
		breakKey:     opts.BreakKey,
		clock:        opts.Clock,
		focusMinutes: opts.Config.FocusMinutes,
		breakMinutes: opts.Config.BreakMinutes,
		focused:      true,
		bar:          progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		help:         help.New(),
		keys:         defaultKeys(),
	}
	if m.clock == nil {
		m.clock = clock.System{}
	}
	if m.focusMinutes <= 0 {
		m.focusMinutes = trigger.DefaultFocusMinutes
	}
	if m.breakMinutes < 0 {
		m.breakMinutes = trigger.DefaultBreakMinutes
	}
	m.machine.Subscribe(m.onEvent)
	m.loadFooterStats()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.pollCmd()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = progressWidth(msg.Width)
		return m, nil
	case tea.FocusMsg:
		m.focused = true
		return m, nil
	case tea.BlurMsg:
		m.focused = false
		return m, nil
	case tickMsg:
		m.ticking = false
		m.machine.Tick(context.Background())
		return m, m.tickCmd()
	case pollMsg:
		m.poll()
		return m, m.pollCmd()
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	if key.Matches(msg, m.keys.Quit) {
		if m.machine.Active() {
			m.report(m.machine.Stop(ctx))
		}
		return m, tea.Quit
	}
	if m.proposal != nil && m.trigger != nil && !m.machine.Active() {
		switch {
		case key.Matches(msg, m.keys.Accept):
			p := *m.proposal
			m.proposal = nil
			if err := m.trigger.Accept(ctx, p); err != nil {
				logErrf("failed to save trigger cooldown: %v\n", err)
			}
			m.focusMinutes = p.FocusMinutes
			m.breakMinutes = p.BreakMinutes
			return m, m.start(ctx)
		case key.Matches(msg, m.keys.Decline), key.Matches(msg, m.keys.Dismiss):
			p := *m.proposal
			m.proposal = nil
			if err := m.trigger.Decline(ctx, p); err != nil {
				logErrf("failed to save trigger cooldown: %v\n", err)
			}
			return m, nil
		}
	}

	switch m.machine.Phase() {
	case session.Idle:
		switch {
		case key.Matches(msg, m.keys.Start):
			return m, m.start(ctx)
		case key.Matches(msg, m.keys.Longer):
			m.focusMinutes = clampFocus(m.focusMinutes + focusStep)
		case key.Matches(msg, m.keys.Shorter):
			m.focusMinutes = clampFocus(m.focusMinutes - focusStep)
		case key.Matches(msg, m.keys.Break):
			m.breakMinutes = nextBreak(m.breakMinutes)
		}
	case session.Focusing, session.Paused:
		switch {
		case key.Matches(msg, m.keys.Pause):
			m.report(m.machine.TogglePause())
			return m, m.tickCmd()
		case key.Matches(msg, m.keys.Stop):
			m.report(m.machine.Stop(ctx))
		}
	case session.AwaitingCheckIn:
		switch {
		case key.Matches(msg, m.keys.TakeBrk):
			m.report(m.machine.ConfirmBreak(ctx))
			return m, m.tickCmd()
		case key.Matches(msg, m.keys.Extend):
			m.report(m.machine.Extend(m.extendMinutes()))
			return m, m.tickCmd()
		case key.Matches(msg, m.keys.Dismiss), key.Matches(msg, m.keys.Stop):
			m.report(m.machine.DismissCheckIn(ctx))
		}
	case session.OnBreak:
		if key.Matches(msg, m.keys.Stop) {
			m.report(m.machine.Stop(ctx))
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderBody()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + footer
	}
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderBody() string {
	snap := m.machine.Snapshot()
	lines := []string{}
	switch snap.Phase {
	case session.Idle:
		lines = append(lines,
			phaseStyle.Render("Ready"),
			timeStyle.Render(formatClock(m.focusMinutes*60)),
			pendingStyle.Render(fmt.Sprintf("%dm focus · %dm break", m.focusMinutes, m.breakMinutes)),
		)
	case session.AwaitingCheckIn:
		lines = append(lines,
			phaseStyle.Render("Focus period complete"),
			timeStyle.Render(formatClock(0)),
			pendingStyle.Render(fmt.Sprintf("Take a %dm break or extend by %dm?", snap.BreakMinutes, m.extendMinutes())),
		)
	default:
		label := phaseStyle.Render(phaseLabel(snap.Phase))
		if snap.Phase == session.OnBreak {
			label = breakStyle.Render(phaseLabel(snap.Phase))
		}
		lines = append(lines, label, timeStyle.Render(formatClock(snap.TimeLeft)), m.bar.ViewAs(elapsedRatio(snap)))
	}
	if m.proposal != nil && snap.Phase == session.Idle {
		msg := fmt.Sprintf("%s is in front. Start a %dm focus session with a %dm break?", m.proposal.App, m.proposal.FocusMinutes, m.proposal.BreakMinutes)
		lines = append(lines, "", promptStyle.Render(wrapText(msg, m.promptWidth())))
	}
	if m.status != "" {
		lines = append(lines, "", errorStyle.Render(wrapText(m.status, m.promptWidth())))
	}
	lines = append(lines, "", m.help.ShortHelpView(m.bindings(snap.Phase)))
	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

func (m *Model) renderFooter() string {
	segments := []string{fmt.Sprintf("Today %dm", m.todayMinutes)}
	if m.streak > 0 {
		segments = append(segments, fmt.Sprintf("Streak %d days", m.streak))
	}
	segments = append(segments, fmt.Sprintf("Sessions %d", m.sessions))
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) bindings(phase session.Phase) []key.Binding {
	if m.proposal != nil && phase == session.Idle {
		return []key.Binding{m.keys.Accept, m.keys.Decline, m.keys.Quit}
	}
	switch phase {
	case session.Idle:
		return []key.Binding{m.keys.Start, m.keys.Longer, m.keys.Shorter, m.keys.Break, m.keys.Quit}
	case session.Focusing, session.Paused:
		return []key.Binding{m.keys.Pause, m.keys.Stop, m.keys.Quit}
	case session.AwaitingCheckIn:
		return []key.Binding{m.keys.TakeBrk, m.keys.Extend, m.keys.Dismiss}
	default:
		return []key.Binding{m.keys.Stop, m.keys.Quit}
	}
}

func (m *Model) start(ctx context.Context) tea.Cmd {
	if err := m.machine.Start(m.focusMinutes, m.breakMinutes); err != nil {
		m.report(err)
		return nil
	}
	m.status = ""
	m.proposal = nil
	if m.presets != nil {
		if m.focusKey != "" {
			if err := m.presets.SetInt(ctx, m.focusKey, m.focusMinutes); err != nil {
				logErrf("failed to save last focus: %v\n", err)
			}
		}
		if m.breakKey != "" {
			if err := m.presets.SetInt(ctx, m.breakKey, m.breakMinutes); err != nil {
				logErrf("failed to save last break: %v\n", err)
			}
		}
	}
	return m.tickCmd()
}

// tickCmd schedules the next second while the machine runs. At most one
// tick is in flight.
func (m *Model) tickCmd() tea.Cmd {
	if m.ticking || !m.machine.Running() {
		return nil
	}
	m.ticking = true
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func (m *Model) pollCmd() tea.Cmd {
	if m.trigger == nil || !m.config.ContextEnabled {
		return nil
	}
	interval := m.config.PollInterval
	if interval <= 0 {
		interval = trigger.DefaultPollInterval
	}
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return pollMsg{}
	})
}

func (m *Model) poll() {
	if m.proposal != nil {
		return
	}
	p, ok := m.trigger.Poll(context.Background(), m.machine.Active(), m.focused)
	if ok {
		m.proposal = &p
	}
}

func (m *Model) onEvent(ev session.Event) {
	switch ev.Kind {
	case session.EventSaveFailed:
		m.status = fmt.Sprintf("Could not save session: %v", ev.Err)
		logErrf("failed to save session: %v\n", ev.Err)
	case session.EventSessionSaved:
		m.status = ""
		m.history = append(m.history, ev.Record)
		m.recomputeFooter()
	}
}

func (m *Model) report(err error) {
	if err != nil {
		m.status = err.Error()
	}
}

func (m *Model) loadFooterStats() {
	if m.records == nil {
		return
	}
	m.history = m.records.LoadOrEmpty(context.Background())
	m.recomputeFooter()
}

func (m *Model) recomputeFooter() {
	now := m.clock.Now()
	m.todayMinutes = statsPkg.DailyTotals(m.history)[now.Format(model.DateLayout)]
	m.streak = statsPkg.Streak(m.history, now)
	m.sessions = len(m.history)
}

func (m *Model) extendMinutes() int {
	if m.config.ExtendMinutes > 0 {
		return m.config.ExtendMinutes
	}
	return session.DefaultExtendMinutes
}

func (m *Model) promptWidth() int {
	if m.width <= 0 {
		return 0
	}
	w := int(float64(m.width) * 0.70)
	if w < 20 {
		w = 20
	}
	return w
}

func phaseLabel(p session.Phase) string {
	switch p {
	case session.Focusing:
		return "Focus"
	case session.Paused:
		return "Paused"
	case session.OnBreak:
		return "Break"
	default:
		return p.String()
	}
}

func elapsedRatio(s session.Snapshot) float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Total-s.TimeLeft) / float64(s.Total)
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func progressWidth(width int) int {
	w := width / 2
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	return w
}

func clampFocus(minutes int) int {
	if minutes < minFocusMinutes {
		return minFocusMinutes
	}
	if minutes > maxFocusMinutes {
		return maxFocusMinutes
	}
	return minutes
}

func nextBreak(current int) int {
	for i, opt := range breakOptions {
		if opt == current {
			return breakOptions[(i+1)%len(breakOptions)]
		}
	}
	return breakOptions[0]
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
