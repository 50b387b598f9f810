package controller

import (
	"strings"
	"time"

	"auctionpauser/internal/core/model"
)

// Phase is the pause controller's position in its cycle.
type Phase int

const (
	// PhaseArmed may issue a new pause.
	PhaseArmed Phase = iota
	// PhasePauseInFlight has issued a pause and is waiting for its outcome,
	// or for the retry delay after a failed attempt.
	PhasePauseInFlight
	// PhaseDisarmedWaitingResume has paused the timer and waits for a human
	// to resume it.
	PhaseDisarmedWaitingResume
)

func (phase Phase) String() string {
	switch phase {
	case PhaseArmed:
		return "armed"
	case PhasePauseInFlight:
		return "pause_in_flight"
	case PhaseDisarmedWaitingResume:
		return "waiting_resume"
	default:
		return "unknown"
	}
}

// ClickKind is how a control click was counted.
type ClickKind int

const (
	ClickIgnored ClickKind = iota
	ClickPause
	ClickLive
)

// Counters are per-nominee click statistics. ManualPauses doubles as the
// auto-pause suppression flag.
type Counters struct {
	PauseAttempts int
	ManualPauses  int
	LiveClicks    int
}

// Snapshot is a read-only view of the controller state.
type Snapshot struct {
	Phase         Phase
	Counters      Counters
	Nominee       string
	CycleID       string
	Latched       bool
	LastPauseAt   time.Time
	RetryAt       time.Time
	CooldownUntil time.Time
}

// Classify decides whether a control click paused or resumed the timer.
// Clicks without a textual hint count against the current timer state.
func Classify(click model.ControlClick, timerState model.TimerTextState) ClickKind {
	text := strings.ToLower(click.Text)
	switch {
	case click.PauseHint || strings.Contains(text, "pause"):
		return ClickPause
	case click.LiveHint || strings.Contains(text, "live"):
		return ClickLive
	case timerState == model.TimerLive:
		return ClickPause
	default:
		return ClickLive
	}
}
