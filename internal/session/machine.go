// Package session drives the focus, check-in and break cycle.
package session

import (
	"context"
	"fmt"

	"github.com/verte-zerg/ikiflow/internal/apperrors"
	"github.com/verte-zerg/ikiflow/internal/model"
)

// DefaultExtendMinutes is the extension offered at check-in.
const DefaultExtendMinutes = 5

// minSkipSeconds is the least focus time a stopped session needs to be saved.
const minSkipSeconds = 60

// Phase is a state of the session lifecycle.
type Phase int

const (
	Idle Phase = iota
	Focusing
	Paused
	AwaitingCheckIn
	OnBreak
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Focusing:
		return "focusing"
	case Paused:
		return "paused"
	case AwaitingCheckIn:
		return "check-in"
	case OnBreak:
		return "break"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Saver persists finished focus periods.
type Saver interface {
	SaveSession(ctx context.Context, planned, actual, breakMinutes int, status model.Status, appUsage map[string]int) (model.SessionRecord, error)
}

// Sampler accumulates foreground-app seconds for the running period.
type Sampler interface {
	Sample(ctx context.Context) string
	Reset()
	Snapshot() map[string]int
}

// EventKind identifies an Event.
type EventKind int

const (
	EventTick EventKind = iota
	EventPhaseChanged
	EventSessionSaved
	EventSaveFailed
)

// Event is delivered to subscribers after the machine changes.
type Event struct {
	Kind     EventKind
	Phase    Phase
	Previous Phase
	TimeLeft int
	Total    int
	Record   model.SessionRecord
	Err      error
}

// Snapshot is a read-only view of the machine.
type Snapshot struct {
	Phase        Phase
	TimeLeft     int
	Total        int
	Elapsed      int
	FocusMinutes int
	BreakMinutes int
}

// Machine is the session state machine. Times are in seconds. It is driven
// from a single dispatch loop and is not safe for concurrent use.
type Machine struct {
	saver   Saver
	sampler Sampler

	phase        Phase
	focusMinutes int
	breakMinutes int
	total        int
	timeLeft     int
	elapsed      int

	listeners []func(Event)
}

// New returns an idle machine. sampler may be nil.
func New(saver Saver, sampler Sampler) *Machine {
	return &Machine{saver: saver, sampler: sampler}
}

// Subscribe registers fn for every subsequent event.
func (m *Machine) Subscribe(fn func(Event)) {
	if fn != nil {
		m.listeners = append(m.listeners, fn)
	}
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() Snapshot {
	return Snapshot{
		Phase:        m.phase,
		TimeLeft:     m.timeLeft,
		Total:        m.total,
		Elapsed:      m.elapsed,
		FocusMinutes: m.focusMinutes,
		BreakMinutes: m.breakMinutes,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Running reports whether the one-second tick source should run.
func (m *Machine) Running() bool {
	return m.phase == Focusing || m.phase == OnBreak
}

// Active reports whether a session is in progress in any phase.
func (m *Machine) Active() bool {
	return m.phase != Idle
}

// Start begins a focus period of focusMinutes followed by breakMinutes of break.
func (m *Machine) Start(focusMinutes, breakMinutes int) error {
	if m.phase != Idle {
		return m.invalid("start")
	}
	if focusMinutes <= 0 {
		return fmt.Errorf("focus minutes must be > 0")
	}
	if breakMinutes < 0 {
		return fmt.Errorf("break minutes must be >= 0")
	}
	m.focusMinutes = focusMinutes
	m.breakMinutes = breakMinutes
	m.beginFocus()
	return nil
}

// TogglePause pauses a running focus period or resumes a paused one.
func (m *Machine) TogglePause() error {
	switch m.phase {
	case Focusing:
		m.setPhase(Paused)
	case Paused:
		m.setPhase(Focusing)
	default:
		return m.invalid("pause")
	}
	return nil
}

// Tick advances the clock by one second. Outside Focusing and OnBreak it does nothing.
func (m *Machine) Tick(ctx context.Context) {
	switch m.phase {
	case Focusing:
		m.timeLeft--
		m.elapsed++
		if m.sampler != nil {
			m.sampler.Sample(ctx)
		}
		m.emit(Event{Kind: EventTick, Phase: m.phase, TimeLeft: m.timeLeft, Total: m.total})
		if m.timeLeft <= 0 {
			m.timeLeft = 0
			m.setPhase(AwaitingCheckIn)
		}
	case OnBreak:
		m.timeLeft--
		m.emit(Event{Kind: EventTick, Phase: m.phase, TimeLeft: m.timeLeft, Total: m.total})
		if m.timeLeft <= 0 {
			m.beginFocus()
		}
	}
}

// ConfirmBreak completes the period at check-in, saves it and starts the break.
// A failed save is reported through EventSaveFailed; the break starts regardless.
func (m *Machine) ConfirmBreak(ctx context.Context) error {
	if m.phase != AwaitingCheckIn {
		return m.invalid("confirm break")
	}
	m.save(ctx, m.total/60, model.StatusCompleted)
	if m.breakMinutes == 0 {
		m.beginFocus()
		return nil
	}
	m.total = m.breakMinutes * 60
	m.timeLeft = m.total
	m.setPhase(OnBreak)
	return nil
}

// Extend adds minutes to the period at check-in and resumes focusing.
func (m *Machine) Extend(minutes int) error {
	if m.phase != AwaitingCheckIn {
		return m.invalid("extend")
	}
	if minutes <= 0 {
		return fmt.Errorf("extension must be > 0 minutes")
	}
	m.timeLeft += minutes * 60
	m.total += minutes * 60
	m.setPhase(Focusing)
	return nil
}

// Stop ends the session. A focus period with at least a minute elapsed is
// saved as Skipped; a break is ended without saving.
func (m *Machine) Stop(ctx context.Context) error {
	switch m.phase {
	case Focusing, Paused, AwaitingCheckIn:
		if m.elapsed >= minSkipSeconds {
			m.save(ctx, m.elapsed/60, model.StatusSkipped)
		}
	case OnBreak:
	default:
		return m.invalid("stop")
	}
	m.total = 0
	m.timeLeft = 0
	m.elapsed = 0
	m.setPhase(Idle)
	return nil
}

// DismissCheckIn closes the check-in prompt without a choice, which stops the session.
func (m *Machine) DismissCheckIn(ctx context.Context) error {
	if m.phase != AwaitingCheckIn {
		return m.invalid("dismiss check-in")
	}
	return m.Stop(ctx)
}

func (m *Machine) beginFocus() {
	m.total = m.focusMinutes * 60
	m.timeLeft = m.total
	m.elapsed = 0
	if m.sampler != nil {
		m.sampler.Reset()
	}
	m.setPhase(Focusing)
}

// save records the current period; planned is always the configured focus length.
func (m *Machine) save(ctx context.Context, actual int, status model.Status) {
	if m.saver == nil {
		return
	}
	var appUsage map[string]int
	if m.sampler != nil {
		appUsage = m.sampler.Snapshot()
	}
	record, err := m.saver.SaveSession(ctx, m.focusMinutes, actual, m.breakMinutes, status, appUsage)
	if err != nil {
		m.emit(Event{Kind: EventSaveFailed, Phase: m.phase, Err: err})
		return
	}
	m.emit(Event{Kind: EventSessionSaved, Phase: m.phase, Record: record})
}

func (m *Machine) setPhase(next Phase) {
	prev := m.phase
	m.phase = next
	m.emit(Event{Kind: EventPhaseChanged, Phase: next, Previous: prev, TimeLeft: m.timeLeft, Total: m.total})
}

func (m *Machine) emit(ev Event) {
	for _, fn := range m.listeners {
		fn(ev)
	}
}

func (m *Machine) invalid(op string) error {
	return fmt.Errorf("%w: cannot %s while %s", apperrors.ErrInvalidTransition, op, m.phase)
}
